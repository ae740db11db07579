package api

import (
	"net/http"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxProductImages = 5

// setupAdminRoutes wires the admin console API behind the admin role claim
func (h *Handler) setupAdminRoutes(v1 *gin.RouterGroup) {
	admin := v1.Group("/admin", requireAdmin())
	{
		admin.POST("/products", h.createProduct)
		admin.DELETE("/products/:id", h.deleteProduct)

		admin.POST("/categories", h.createCategory)
		admin.PUT("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.POST("/offers", h.createOffer)
		admin.DELETE("/offers/:id", h.deleteOffer)

		admin.GET("/orders", h.listAllOrders)
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)

		admin.GET("/users", h.listUsers)

		admin.PUT("/settings", h.applySettings)
	}
}

func (h *Handler) publishCatalogChanged(c *gin.Context, collection, docID, action string) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishCatalogChanged(c.Request.Context(), collection, docID, action); err != nil {
		util.GetLogger().Error("Failed to publish CatalogChanged event",
			zap.String("collection", collection),
			zap.Error(err))
	}
}

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    int             `json:"discount"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
}

// createProduct inserts a product; finalPrice is derived here, at write
// time, and never re-derived on read.
func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Price.IsNegative() || req.Discount < 0 || req.Discount > 100 || req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price, discount and stock must be within valid ranges"})
		return
	}
	if len(req.Images) > maxProductImages {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A product carries at most 5 images"})
		return
	}

	discountFactor := decimal.NewFromInt(int64(100 - req.Discount)).Div(decimal.NewFromInt(100))
	product := &models.Product{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		FinalPrice:  req.Price.Mul(discountFactor),
		Stock:       req.Stock,
		Images:      pq.StringArray(req.Images),
		Category:    req.Category,
	}

	if err := h.store.CreateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionProducts, product.ID, models.CatalogActionCreated)
	c.JSON(http.StatusCreated, product)
}

// deleteProduct removes a product
func (h *Handler) deleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionProducts, id, models.CatalogActionDeleted)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// createCategory inserts a category
func (h *Handler) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	category := &models.Category{ID: uuid.New().String(), Name: req.Name}
	if err := h.store.CreateCategory(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionCategories, category.ID, models.CatalogActionCreated)
	c.JSON(http.StatusCreated, category)
}

// updateCategory renames a category
func (h *Handler) updateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	id := c.Param("id")
	if err := h.store.UpdateCategory(c.Request.Context(), id, req.Name); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionCategories, id, models.CatalogActionUpdated)
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// deleteCategory removes a category; blocked while products reference it
func (h *Handler) deleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionCategories, id, models.CatalogActionDeleted)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type createOfferRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Discount    int    `json:"discount" binding:"required,min=1,max=100"`
	Image       string `json:"image"`
}

// createOffer inserts an offer
func (h *Handler) createOffer(c *gin.Context) {
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	offer := &models.Offer{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Discount:    req.Discount,
		Image:       req.Image,
	}
	if err := h.store.CreateOffer(c.Request.Context(), offer); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionOffers, offer.ID, models.CatalogActionCreated)
	c.JSON(http.StatusCreated, offer)
}

// deleteOffer removes an offer
func (h *Handler) deleteOffer(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteOffer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.publishCatalogChanged(c, models.CollectionOffers, id, models.CatalogActionDeleted)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// listAllOrders serves every order, newest first
func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.store.GetOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatus moves an order to any status; no transition ordering is
// enforced.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	id := c.Param("id")
	if err := h.store.UpdateOrderStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, err)
		return
	}

	if h.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: time.Now(),
			},
			OrderID: id,
			Status:  req.Status,
		}
		if err := h.publisher.PublishOrderStatusChanged(c.Request.Context(), event); err != nil {
			util.GetLogger().Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// listUsers serves all registered accounts
func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.store.GetUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// applySettings merges a patch into the site settings document
func (h *Handler) applySettings(c *gin.Context) {
	var patch map[string]string
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.settings.Apply(c.Request.Context(), patch); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "applied"})
}
