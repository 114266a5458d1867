package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderEventType string

const (
	OrderEventPlaced        OrderEventType = "order.placed"
	OrderEventStatusChanged OrderEventType = "order.status_changed"
)

type OrderEvent struct {
	Type        OrderEventType  `json:"type"`
	OrderID     string          `json:"order_id"`
	UserID      string          `json:"user_id"`
	Email       string          `json:"email"`
	Name        string          `json:"name"`
	Status      OrderStatus     `json:"status"`
	ItemCount   int             `json:"item_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CouponUsed  string          `json:"coupon_used,omitempty"`
	Timestamp   time.Time       `json:"timestamp"`
}

func NewOrderEvent(t OrderEventType, order *Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:        t,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Email:       order.Email,
		Name:        order.Address.Name,
		Status:      order.Status,
		ItemCount:   order.ItemCount(),
		TotalAmount: order.TotalAmount,
		CouponUsed:  order.CouponUsed,
		Timestamp:   at,
	}
}

func (e OrderEvent) EventType() string {
	return string(e.Type)
}
