package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTable_Evaluate(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name         string
		code         string
		subtotal     string
		wantValid    bool
		wantDiscount string
		wantReason   Reason
	}{
		{name: "save20 over minimum", code: "SAVE20", subtotal: "1500", wantValid: true, wantDiscount: "30.00"},
		{name: "save20 under minimum", code: "SAVE20", subtotal: "500", wantReason: ReasonMinimumNotMet},
		{name: "save20 exactly at minimum", code: "SAVE20", subtotal: "1000", wantValid: true, wantDiscount: "20.00"},
		{name: "lowercase code", code: "save20", subtotal: "1500", wantValid: true, wantDiscount: "30.00"},
		{name: "padded mixed case", code: "  MeGa30 ", subtotal: "2500", wantValid: true, wantDiscount: "75.00"},
		{name: "welcome has no minimum", code: "WELCOME", subtotal: "0", wantValid: true, wantDiscount: "0.00"},
		{name: "welcome rounds to paisa", code: "welcome", subtotal: "123.45", wantValid: true, wantDiscount: "1.23"},
		{name: "unknown code", code: "FREESTUFF", subtotal: "5000", wantReason: ReasonInvalidCode},
		{name: "empty code", code: "", subtotal: "5000", wantReason: ReasonInvalidCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Evaluate(tt.code, d(tt.subtotal))

			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantReason, got.Reason)
			if tt.wantValid {
				assert.True(t, d(tt.wantDiscount).Equal(got.DiscountAmount),
					"discount = %s, want %s", got.DiscountAmount, tt.wantDiscount)
			} else {
				assert.True(t, got.DiscountAmount.IsZero())
			}
		})
	}
}

func TestTable_Evaluate_MinimumMessageCitesAmount(t *testing.T) {
	got := DefaultTable().Evaluate("SAVE20", d("500"))

	require.False(t, got.Valid)
	assert.Contains(t, got.Message, "₹1000.00")
	assert.True(t, d("1000").Equal(got.MinimumSubtotal))
}

func TestTable_Evaluate_DiscountProperty(t *testing.T) {
	table := DefaultTable()
	subtotals := []string{"0", "0.01", "999.99", "1000", "1234.56", "1999.995", "2000", "98765.43"}

	for _, coupon := range table.Coupons() {
		for _, raw := range subtotals {
			s := d(raw)
			got := table.Evaluate(coupon.Code, s)
			if s.LessThan(coupon.MinimumSubtotal) {
				assert.False(t, got.Valid, "%s at %s", coupon.Code, raw)
				continue
			}
			want := s.Mul(coupon.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
			require.True(t, got.Valid, "%s at %s", coupon.Code, raw)
			assert.True(t, want.Equal(got.DiscountAmount), "%s at %s: got %s want %s", coupon.Code, raw, got.DiscountAmount, want)
		}
	}
}

func TestTable_Evaluate_Idempotent(t *testing.T) {
	table := DefaultTable()
	first := table.Evaluate("MEGA30", d("3210.50"))
	second := table.Evaluate("MEGA30", d("3210.50"))

	assert.Equal(t, first, second)
}

func TestNewTable_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		coupons []Coupon
	}{
		{"empty code", []Coupon{{Code: " ", DiscountPercent: d("1")}}},
		{"duplicate ignoring case", []Coupon{{Code: "A", DiscountPercent: d("1")}, {Code: "a", DiscountPercent: d("2")}}},
		{"percent over 100", []Coupon{{Code: "BIG", DiscountPercent: d("101")}}},
		{"negative percent", []Coupon{{Code: "NEG", DiscountPercent: d("-1")}}},
		{"negative minimum", []Coupon{{Code: "MIN", DiscountPercent: d("1"), MinimumSubtotal: d("-5")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.coupons)
			assert.Error(t, err)
		})
	}
}

func TestTotal(t *testing.T) {
	assert.True(t, d("1470").Equal(Total(d("1500"), d("30"))))
	assert.True(t, decimal.Zero.Equal(Total(d("10"), d("25"))))
	assert.True(t, d("500").Equal(Total(d("500"), decimal.Zero)))
}

func TestTable_Coupons_Sorted(t *testing.T) {
	codes := []string{}
	for _, c := range DefaultTable().Coupons() {
		codes = append(codes, c.Code)
	}
	assert.Equal(t, []string{"WELCOME", "SAVE20", "MEGA30"}, codes)
}
