// Package pricing evaluates coupon codes against a cart subtotal.
package pricing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Reason string

const (
	ReasonInvalidCode   Reason = "invalid code"
	ReasonMinimumNotMet Reason = "minimum not met"
)

var hundred = decimal.NewFromInt(100)

// Coupon is one row of the discount table. Codes are stored upper-case.
type Coupon struct {
	Code            string          `json:"code"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	MinimumSubtotal decimal.Decimal `json:"minimum_subtotal"`
}

type Evaluation struct {
	Code            string          `json:"code"`
	Valid           bool            `json:"valid"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Reason          Reason          `json:"reason,omitempty"`
	Message         string          `json:"message,omitempty"`
	MinimumSubtotal decimal.Decimal `json:"minimum_subtotal"`
}

// Table is an immutable set of coupons keyed by normalised code.
type Table struct {
	coupons map[string]Coupon
}

var defaultCoupons = []Coupon{
	{Code: "WELCOME", DiscountPercent: decimal.NewFromInt(1), MinimumSubtotal: decimal.Zero},
	{Code: "SAVE20", DiscountPercent: decimal.NewFromInt(2), MinimumSubtotal: decimal.NewFromInt(1000)},
	{Code: "MEGA30", DiscountPercent: decimal.NewFromInt(3), MinimumSubtotal: decimal.NewFromInt(2000)},
}

// DefaultTable returns the coupons the shop ships with.
func DefaultTable() *Table {
	t, err := NewTable(defaultCoupons)
	if err != nil {
		panic(err)
	}
	return t
}

func NewTable(coupons []Coupon) (*Table, error) {
	t := &Table{coupons: make(map[string]Coupon, len(coupons))}
	for _, c := range coupons {
		code := NormalizeCode(c.Code)
		if code == "" {
			return nil, fmt.Errorf("coupon with empty code")
		}
		if _, dup := t.coupons[code]; dup {
			return nil, fmt.Errorf("duplicate coupon code %s", code)
		}
		if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(hundred) {
			return nil, fmt.Errorf("coupon %s: discount percent %s out of range", code, c.DiscountPercent)
		}
		if c.MinimumSubtotal.IsNegative() {
			return nil, fmt.Errorf("coupon %s: negative minimum subtotal", code)
		}
		c.Code = code
		t.coupons[code] = c
	}
	return t, nil
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t *Table) Lookup(code string) (Coupon, bool) {
	c, ok := t.coupons[NormalizeCode(code)]
	return c, ok
}

// Coupons lists the table sorted by minimum subtotal, then code.
func (t *Table) Coupons() []Coupon {
	out := make([]Coupon, 0, len(t.coupons))
	for _, c := range t.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MinimumSubtotal.Equal(out[j].MinimumSubtotal) {
			return out[i].MinimumSubtotal.LessThan(out[j].MinimumSubtotal)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Evaluate is pure: it never records the coupon anywhere.
func (t *Table) Evaluate(code string, subtotal decimal.Decimal) Evaluation {
	normalized := NormalizeCode(code)
	coupon, ok := t.coupons[normalized]
	if !ok {
		return Evaluation{
			Code:    normalized,
			Reason:  ReasonInvalidCode,
			Message: "coupon code is not valid",
		}
	}

	if subtotal.LessThan(coupon.MinimumSubtotal) {
		return Evaluation{
			Code:            coupon.Code,
			Reason:          ReasonMinimumNotMet,
			Message:         fmt.Sprintf("minimum purchase of %s required", FormatAmount(coupon.MinimumSubtotal)),
			MinimumSubtotal: coupon.MinimumSubtotal,
		}
	}

	return Evaluation{
		Code:            coupon.Code,
		Valid:           true,
		DiscountAmount:  Discount(subtotal, coupon.DiscountPercent),
		MinimumSubtotal: coupon.MinimumSubtotal,
	}
}

// Discount is subtotal * percent / 100 rounded to two places.
func Discount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

// Total never goes below zero.
func Total(subtotal, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

func FormatAmount(amount decimal.Decimal) string {
	return "₹" + amount.StringFixed(2)
}
