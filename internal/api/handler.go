package api

import (
	"net/http"
	"time"

	"storefront/internal/auth"
	"storefront/internal/broker"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/settings"
	"storefront/internal/store"
	"storefront/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	cache     *catalog.Cache
	carts     *cart.Service
	checkout  *checkout.Service
	auth      *auth.Service
	settings  *settings.Service
	store     *store.Store
	publisher *broker.EventPublisher
}

// NewHandler creates a new HTTP handler
func NewHandler(
	cache *catalog.Cache,
	carts *cart.Service,
	checkoutSvc *checkout.Service,
	authSvc *auth.Service,
	settingsSvc *settings.Service,
	st *store.Store,
	publisher *broker.EventPublisher,
) *Handler {
	return &Handler{
		cache:     cache,
		carts:     carts,
		checkout:  checkoutSvc,
		auth:      authSvc,
		settings:  settingsSvc,
		store:     st,
		publisher: publisher,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(h.identityMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.GET("/categories", h.listCategories)
		v1.GET("/offers", h.listOffers)
		v1.GET("/settings", h.getSettings)

		v1.POST("/auth/signup", h.signUp)
		v1.POST("/auth/login", h.signIn)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addToCart)
		v1.PATCH("/cart/items/:id", h.updateQuantity)
		v1.DELETE("/cart/items/:id", h.removeFromCart)

		authed := v1.Group("", requireAuth())
		{
			authed.POST("/auth/logout", h.signOut)
			authed.GET("/auth/me", h.me)
			authed.PUT("/auth/me", h.updateProfile)
			authed.GET("/orders", h.listOwnOrders)
			authed.POST("/checkout", h.placeOrder)
		}
	}

	h.setupAdminRoutes(v1)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// listProducts serves the catalog with optional search, category filter and
// sort, all answered from the in-memory cache.
func (h *Handler) listProducts(c *gin.Context) {
	var products []models.Product

	if q := c.Query("q"); q != "" {
		products = h.cache.Search(q)
	} else {
		products = h.cache.FilterByCategory(c.Query("category"))
	}

	products = catalog.Sorted(products, c.Query("sort"))

	c.JSON(http.StatusOK, gin.H{
		"products": view.NewProductCards(products),
	})
}

// getProduct serves a single product card from the cache
func (h *Handler) getProduct(c *gin.Context) {
	product, ok := h.cache.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, view.NewProductCard(product))
}

// listCategories serves all categories
func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.store.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// listOffers serves all offers
func (h *Handler) listOffers(c *gin.Context) {
	offers, err := h.store.GetOffers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

// getSettings serves the site customization document
func (h *Handler) getSettings(c *gin.Context) {
	siteSettings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, siteSettings)
}

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// signUp registers a new account
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// signIn verifies credentials and returns a session token
func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	token, user, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// signOut invalidates the session and clears this browsing context's cart
func (h *Handler) signOut(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.auth.SignOut(ctx, bearerToken(c)); err != nil {
		respondError(c, err)
		return
	}
	if err := h.carts.Clear(ctx, sessionID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// me returns the authenticated identity
func (h *Handler) me(c *gin.Context) {
	identity, _ := currentIdentity(c)
	c.JSON(http.StatusOK, identity)
}

type updateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// updateProfile updates the caller's own display name
func (h *Handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	identity, _ := currentIdentity(c)
	if err := h.store.UpdateUserName(c.Request.Context(), identity.UserID, req.Name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// getCart serves the rendered cart for this browsing context
func (h *Handler) getCart(c *gin.Context) {
	items, err := h.carts.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewCart(items))
}

type addToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

// addToCart adds one unit of a product to the cart
func (h *Handler) addToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	items, err := h.carts.Add(c.Request.Context(), sessionID(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"notification": "Product added to cart!",
		"cart":         view.NewCart(items),
	})
}

type updateQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// updateQuantity adjusts a cart line by a signed delta
func (h *Handler) updateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	items, err := h.carts.UpdateQuantity(c.Request.Context(), sessionID(c), c.Param("id"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewCart(items))
}

// removeFromCart drops a product from the cart
func (h *Handler) removeFromCart(c *gin.Context) {
	items, err := h.carts.Remove(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewCart(items))
}

type checkoutRequest struct {
	Shipping      models.ShippingInfo `json:"shippingInfo"`
	PaymentMethod string              `json:"paymentMethod"`
}

// placeOrder submits the shipping form and creates the order
func (h *Handler) placeOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	identity, _ := currentIdentity(c)
	order, err := h.checkout.PlaceOrder(c.Request.Context(), identity, sessionID(c), req.Shipping, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"notification": "Order placed successfully!",
		"order":        view.NewOrderSummary(*order),
	})
}

// listOwnOrders serves the caller's order history
func (h *Handler) listOwnOrders(c *gin.Context) {
	identity, _ := currentIdentity(c)
	orders, err := h.store.GetOrdersByUserID(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	summaries := make([]view.OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, view.NewOrderSummary(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": summaries})
}
