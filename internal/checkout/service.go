package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validation errors; all are raised before the order write is attempted.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrMissingShipping      = errors.New("all shipping fields are required")
	ErrInvalidPaymentMethod = errors.New("a valid payment method must be selected")
)

// OrderWriter is the remote order persistence boundary.
type OrderWriter interface {
	CreateOrder(ctx context.Context, order *models.Order) error
}

// EventPublisher announces acknowledged orders.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// Service turns a cart plus shipping form plus authenticated identity into
// exactly one order record, clearing the cart only after the write is
// acknowledged. No idempotency key is attached: a resubmission after a lost
// acknowledgment can create a duplicate order. Known gap, see DESIGN.md.
type Service struct {
	carts     cart.Store
	orders    OrderWriter
	publisher EventPublisher
	logger    *zap.Logger
}

// NewService creates a new checkout service
func NewService(carts cart.Store, orders OrderWriter, publisher EventPublisher) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// PlaceOrder submits the shipping form for the session's cart. On failure
// the cart is left untouched and the caller must resubmit; no retry is
// attempted here.
func (s *Service) PlaceOrder(
	ctx context.Context,
	identity auth.Identity,
	sessionID string,
	shipping models.ShippingInfo,
	paymentMethod string,
) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Checkout.PlaceOrder")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	items, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("cart_load").Inc()
		return nil, err
	}
	if len(items) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	if identity.UserID == "" {
		util.CheckoutFailedTotal.WithLabelValues("unauthenticated").Inc()
		return nil, auth.ErrNotAuthenticated
	}

	if !shipping.Complete() {
		util.CheckoutFailedTotal.WithLabelValues("missing_shipping").Inc()
		return nil, ErrMissingShipping
	}

	if !models.ValidPaymentMethod(paymentMethod) {
		util.CheckoutFailedTotal.WithLabelValues("payment_method").Inc()
		return nil, fmt.Errorf("payment method %q: %w", paymentMethod, ErrInvalidPaymentMethod)
	}

	// Frozen snapshot: the order owns its own copy of the cart lines.
	snapshot := make(models.CartItems, len(items))
	copy(snapshot, items)

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        identity.UserID,
		UserEmail:     identity.Email,
		Items:         snapshot,
		Total:         cart.Total(items),
		Shipping:      shipping,
		PaymentMethod: paymentMethod,
		Status:        models.OrderStatusPending,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("write_rejected").Inc()
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total", order.Total.String()))

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		// The order is already acknowledged; a lingering cart is an
		// annoyance, not a failure.
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.Error(err))
	}

	if s.publisher != nil {
		event := &models.OrderPlacedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPlaced,
				Timestamp: time.Now(),
			},
			OrderID:   order.ID,
			UserID:    order.UserID,
			Total:     order.Total.String(),
			ItemCount: cart.Count(order.Items),
		}
		if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
		}
	}

	return order, nil
}
