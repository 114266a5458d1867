package cart

import "github.com/joao-fontenele/digitalshop/internal/domain"

// Action is a user intent against the cart.
type Action interface {
	Name() string
}

type AddItem struct {
	Product  domain.Product
	Quantity int
}

type IncrementItem struct {
	ProductID string
}

// DecrementItem never takes a line below quantity 1; use RemoveItem.
type DecrementItem struct {
	ProductID string
}

type RemoveItem struct {
	ProductID string
}

type ApplyCoupon struct {
	Code string
}

type RemoveCoupon struct{}

type Clear struct{}

func (AddItem) Name() string       { return "add_item" }
func (IncrementItem) Name() string { return "increment_item" }
func (DecrementItem) Name() string { return "decrement_item" }
func (RemoveItem) Name() string    { return "remove_item" }
func (ApplyCoupon) Name() string   { return "apply_coupon" }
func (RemoveCoupon) Name() string  { return "remove_coupon" }
func (Clear) Name() string         { return "clear" }
