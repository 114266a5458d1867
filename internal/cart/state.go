// Package cart holds the per-user cart as an explicit state value changed
// only through Reduce, plus the service and HTTP handler around it.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/pricing"
)

type State struct {
	Items  []domain.CartLineItem `json:"items"`
	Coupon *domain.AppliedCoupon `json:"coupon,omitempty"`
}

func (s State) Subtotal() decimal.Decimal {
	return domain.Subtotal(s.Items)
}

func (s State) Discount() decimal.Decimal {
	if s.Coupon == nil {
		return decimal.Zero
	}
	return s.Coupon.DiscountAmount
}

func (s State) Total() decimal.Decimal {
	return pricing.Total(s.Subtotal(), s.Discount())
}

func (s State) Empty() bool {
	return len(s.Items) == 0
}

func (s State) ItemCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

func (s State) indexOf(productID string) int {
	for i, item := range s.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// clone copies everything Reduce may mutate.
func (s State) clone() State {
	out := State{Items: make([]domain.CartLineItem, len(s.Items))}
	copy(out.Items, s.Items)
	if s.Coupon != nil {
		c := *s.Coupon
		out.Coupon = &c
	}
	return out
}

// View is the cart as the client renders it.
type View struct {
	Items     []domain.CartLineItem `json:"items"`
	ItemCount int                   `json:"item_count"`
	Subtotal  decimal.Decimal       `json:"subtotal"`
	Discount  decimal.Decimal       `json:"discount"`
	Total     decimal.Decimal       `json:"total"`
	Coupon    *domain.AppliedCoupon `json:"coupon,omitempty"`
}

func (s State) View() View {
	items := s.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	return View{
		Items:     items,
		ItemCount: s.ItemCount(),
		Subtotal:  s.Subtotal(),
		Discount:  s.Discount(),
		Total:     s.Total(),
		Coupon:    s.Coupon,
	}
}
