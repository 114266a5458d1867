package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joao-fontenele/digitalshop/internal/address"
	"github.com/joao-fontenele/digitalshop/internal/cart"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/telemetry"
)

// CartSettler is satisfied by cart.Service.
type CartSettler interface {
	Settle(ctx context.Context, userID string, place func(ctx context.Context, state cart.State) error) error
}

type OrderCreator interface {
	Create(ctx context.Context, order *domain.Order) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	carts     CartSettler
	orders    OrderCreator
	publisher EventPublisher
	metrics   *telemetry.ShopMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewService accepts a nil publisher and nil metrics.
func NewService(carts CartSettler, orders OrderCreator, publisher EventPublisher, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Service {
	return &Service{
		carts:     carts,
		orders:    orders,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder assembles and persists an order from the user's cart. The cart
// is cleared only once the order is stored; any storage failure is reported
// as ErrOrderNotPlaced and leaves the cart as it was.
func (s *Service) PlaceOrder(ctx context.Context, user *domain.User, addr domain.ShippingAddress) (*domain.Order, error) {
	if user == nil || user.ID == "" {
		s.metrics.CheckoutFailed(ctx, "unauthenticated")
		return nil, ErrUnauthenticated
	}

	var placed *domain.Order
	err := s.carts.Settle(ctx, user.ID, func(ctx context.Context, state cart.State) error {
		order, err := Assemble(state.Items, addr, user, state.Coupon, s.now())
		if err != nil {
			return err
		}
		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("%w: %v", ErrOrderNotPlaced, err)
		}
		placed = order
		return nil
	})
	if err != nil {
		reason := failureReason(err)
		s.metrics.CheckoutFailed(ctx, reason)
		if reason == "backend" {
			s.logger.Error("checkout failed", "error", err, "user_id", user.ID)
			if !errors.Is(err, ErrOrderNotPlaced) {
				err = fmt.Errorf("%w: %v", ErrOrderNotPlaced, err)
			}
		}
		return nil, err
	}

	s.metrics.OrderPlaced(ctx, placed.TotalAmount, placed.CouponUsed != "")
	s.publish(ctx, placed)
	s.logger.Info("order placed",
		"order_id", placed.ID,
		"user_id", placed.UserID,
		"items", placed.ItemCount(),
		"total", placed.TotalAmount.StringFixed(2),
		"coupon", placed.CouponUsed,
	)
	return placed, nil
}

func (s *Service) publish(ctx context.Context, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	event := domain.NewOrderEvent(domain.OrderEventPlaced, order, order.CreatedAt)
	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order event", "error", err, "order_id", order.ID)
	}
}

func failureReason(err error) string {
	var verr *address.ValidationError
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &verr):
		return "invalid_address"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "backend"
	}
}
