package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "session_id"
	identityKey   = "identity"
)

// sessionID returns the browsing-context id used as the cart key, issuing a
// cookie on first contact. Carts are local to one browsing context; two
// sessions never share a key.
func sessionID(c *gin.Context) string {
	if sid := c.GetString(sessionCookie); sid != "" {
		return sid
	}
	sid, err := c.Cookie(sessionCookie)
	if err != nil || sid == "" {
		sid = uuid.New().String()
		c.SetCookie(sessionCookie, sid, int((90 * 24 * time.Hour).Seconds()), "/", "", false, true)
	}
	c.Set(sessionCookie, sid)
	return sid
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// identityMiddleware resolves the caller's identity when a token is present.
// Anonymous browsing stays allowed; handlers that need auth check the
// context themselves or sit behind requireAuth.
func (h *Handler) identityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			identity, err := h.auth.Identity(c.Request.Context(), token)
			if err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

func currentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// requireAuth aborts with 401 when no authenticated identity is present;
// the client reacts by opening its login flow.
func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentIdentity(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Please login to continue",
			})
			return
		}
		c.Next()
	}
}

// requireAdmin aborts with 403 unless the identity carries the admin role
// claim.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Please login to continue",
			})
			return
		}
		if !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// respondError maps the error taxonomy onto HTTP responses. Validation
// failures keep their message; remote failures surface the underlying
// reason.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, cart.ErrExceedsStock),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingShipping),
		errors.Is(err, checkout.ErrInvalidPaymentMethod):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrNotAuthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, store.ErrEmailTaken),
		errors.Is(err, store.ErrCategoryInUse):
		status = http.StatusConflict
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
