// Package checkout turns a committed cart into a persisted order.
package checkout

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/digitalshop/internal/address"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/pricing"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnauthenticated = errors.New("sign in to place an order")
	ErrOrderNotPlaced  = errors.New("order could not be placed, please retry")
)

// Assemble builds a pending order from a cart snapshot. Checks run in order:
// empty cart, address, identity. The returned order has no id yet.
func Assemble(items []domain.CartLineItem, addr domain.ShippingAddress, user *domain.User, coupon *domain.AppliedCoupon, now time.Time) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := address.Validate(addr); err != nil {
		return nil, err
	}
	if !user.HasIdentity() {
		return nil, ErrUnauthenticated
	}

	snapshot := make([]domain.CartLineItem, len(items))
	copy(snapshot, items)

	subtotal := domain.Subtotal(snapshot).Round(2)
	discount := decimal.Zero
	couponCode := ""
	if coupon != nil {
		discount = coupon.DiscountAmount.Round(2)
		couponCode = coupon.Code
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	created := now.UTC()
	return &domain.Order{
		UserID:          user.ID,
		Email:           user.Email,
		Items:           snapshot,
		Address:         address.Normalize(addr),
		Subtotal:        subtotal,
		DiscountApplied: discount,
		CouponUsed:      couponCode,
		TotalAmount:     pricing.Total(subtotal, discount),
		Status:          domain.OrderStatusPending,
		CreatedAt:       created,
		UpdatedAt:       created,
	}, nil
}
