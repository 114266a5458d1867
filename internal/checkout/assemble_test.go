package checkout

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/digitalshop/internal/address"
	"github.com/joao-fontenele/digitalshop/internal/domain"
)

var testNow = time.Date(2025, 4, 14, 9, 30, 0, 0, time.FixedZone("NPT", 5*3600+45*60))

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:           " Asha Gurung ",
		Address:        "Lakeside, Pokhara",
		Country:        "nepal",
		MobileNumber:   "+977 9812345678",
		WhatsappNumber: "+977 9812345678",
	}
}

func customer() *domain.User {
	return &domain.User{ID: "u1", Email: "asha@example.com", Name: "Asha"}
}

func lines(prices ...int64) []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(prices))
	for i, p := range prices {
		out[i] = domain.CartLineItem{
			ProductID: string(rune('a' + i)),
			Title:     "Item",
			UnitPrice: decimal.NewFromInt(p),
			Quantity:  1,
		}
	}
	return out
}

func TestAssemble_WithCoupon(t *testing.T) {
	coupon := &domain.AppliedCoupon{Code: "SAVE20", DiscountAmount: decimal.NewFromInt(30)}

	order, err := Assemble(lines(1000, 500), validAddress(), customer(), coupon, testNow)
	require.NoError(t, err)

	assert.Empty(t, order.ID, "id is assigned by the store")
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1500)))
	assert.True(t, order.DiscountApplied.Equal(decimal.NewFromInt(30)))
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(1470)))
	assert.Equal(t, "SAVE20", order.CouponUsed)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, "asha@example.com", order.Email)
	assert.Equal(t, "Asha Gurung", order.Address.Name)
	assert.Equal(t, "Nepal", order.Address.Country)
	assert.Equal(t, time.UTC, order.CreatedAt.Location())
	assert.True(t, order.CreatedAt.Equal(testNow))
}

func TestAssemble_TotalNeverNegative(t *testing.T) {
	coupon := &domain.AppliedCoupon{Code: "ODD", DiscountAmount: decimal.NewFromInt(5000)}

	order, err := Assemble(lines(100), validAddress(), customer(), coupon, testNow)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.IsZero())
	assert.False(t, order.TotalAmount.IsNegative())
}

func TestAssemble_SnapshotIsIndependent(t *testing.T) {
	items := lines(100, 200)
	order, err := Assemble(items, validAddress(), customer(), nil, testNow)
	require.NoError(t, err)

	items[0].Quantity = 42
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.Empty(t, order.CouponUsed)
	assert.True(t, order.DiscountApplied.IsZero())
}

func TestAssemble_Failures(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartLineItem
		addr  domain.ShippingAddress
		user  *domain.User
		check func(t *testing.T, err error)
	}{
		{
			name:  "empty cart wins over everything",
			items: nil,
			addr:  domain.ShippingAddress{},
			user:  nil,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrEmptyCart) },
		},
		{
			name:  "invalid address lists fields",
			items: lines(100),
			addr:  domain.ShippingAddress{Name: "Asha"},
			user:  customer(),
			check: func(t *testing.T, err error) {
				var verr *address.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Len(t, verr.Fields, 4)
			},
		},
		{
			name:  "missing email",
			items: lines(100),
			addr:  validAddress(),
			user:  &domain.User{ID: "u1"},
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthenticated) },
		},
		{
			name:  "no user",
			items: lines(100),
			addr:  validAddress(),
			user:  nil,
			check: func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrUnauthenticated) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := Assemble(tt.items, tt.addr, tt.user, nil, testNow)
			assert.Nil(t, order)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}
