package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/pricing"
)

const maxLineQuantity = 99

var (
	ErrItemNotFound    = errors.New("item not in cart")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrUnknownAction   = errors.New("unknown cart action")
)

type NoticeKind string

const (
	NoticeCouponApplied  NoticeKind = "coupon_applied"
	NoticeCouponRejected NoticeKind = "coupon_rejected"
	NoticeCouponRemoved  NoticeKind = "coupon_removed"
)

// Notice is something the client should surface to the shopper.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message"`
}

type Result struct {
	Evaluation *pricing.Evaluation `json:"evaluation,omitempty"`
	Notices    []Notice            `json:"notices,omitempty"`
}

type Evaluator interface {
	Evaluate(code string, subtotal decimal.Decimal) pricing.Evaluation
}

type Reducer struct {
	coupons Evaluator
	now     func() time.Time
}

func NewReducer(coupons Evaluator) *Reducer {
	return &Reducer{coupons: coupons, now: time.Now}
}

// Reduce returns the next state. The input state is never modified, and on
// error the returned state equals the input.
func (r *Reducer) Reduce(s State, action Action) (State, Result, error) {
	next := s.clone()
	var res Result

	switch a := action.(type) {
	case AddItem:
		qty := a.Quantity
		if qty == 0 {
			qty = 1
		}
		if a.Product.ID == "" {
			return s, res, ErrItemNotFound
		}
		if i := next.indexOf(a.Product.ID); i >= 0 {
			qty += next.Items[i].Quantity
			if qty < 1 || qty > maxLineQuantity {
				return s, res, ErrInvalidQuantity
			}
			next.Items[i] = domain.LineItemFromProduct(&a.Product, qty)
		} else {
			if qty < 1 || qty > maxLineQuantity {
				return s, res, ErrInvalidQuantity
			}
			next.Items = append(next.Items, domain.LineItemFromProduct(&a.Product, qty))
		}
		res.Notices = r.reconcile(&next)

	case IncrementItem:
		i := next.indexOf(a.ProductID)
		if i < 0 {
			return s, res, ErrItemNotFound
		}
		if next.Items[i].Quantity >= maxLineQuantity {
			return s, res, ErrInvalidQuantity
		}
		next.Items[i].Quantity++
		res.Notices = r.reconcile(&next)

	case DecrementItem:
		i := next.indexOf(a.ProductID)
		if i < 0 {
			return s, res, ErrItemNotFound
		}
		if next.Items[i].Quantity > 1 {
			next.Items[i].Quantity--
		}
		res.Notices = r.reconcile(&next)

	case RemoveItem:
		i := next.indexOf(a.ProductID)
		if i < 0 {
			return s, res, ErrItemNotFound
		}
		next.Items = append(next.Items[:i], next.Items[i+1:]...)
		res.Notices = r.reconcile(&next)

	case ApplyCoupon:
		ev := r.coupons.Evaluate(a.Code, next.Subtotal())
		res.Evaluation = &ev
		if !ev.Valid {
			res.Notices = []Notice{{Kind: NoticeCouponRejected, Code: ev.Code, Message: ev.Message}}
			return s, res, nil
		}
		appliedAt := r.now().UTC()
		if next.Coupon != nil && next.Coupon.Code == ev.Code {
			appliedAt = next.Coupon.AppliedAt
		}
		next.Coupon = &domain.AppliedCoupon{
			Code:           ev.Code,
			DiscountAmount: ev.DiscountAmount,
			AppliedAt:      appliedAt,
		}
		res.Notices = []Notice{{
			Kind:    NoticeCouponApplied,
			Code:    ev.Code,
			Message: fmt.Sprintf("coupon %s applied: %s off", ev.Code, pricing.FormatAmount(ev.DiscountAmount)),
		}}

	case RemoveCoupon:
		next.Coupon = nil

	case Clear:
		next = State{}

	default:
		return s, res, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}

	return next, res, nil
}

// reconcile re-prices an applied coupon against the current subtotal and
// drops it once the minimum is no longer met.
func (r *Reducer) reconcile(s *State) []Notice {
	if s.Coupon == nil {
		return nil
	}
	ev := r.coupons.Evaluate(s.Coupon.Code, s.Subtotal())
	if ev.Valid {
		s.Coupon.DiscountAmount = ev.DiscountAmount
		return nil
	}
	code := s.Coupon.Code
	s.Coupon = nil
	return []Notice{{
		Kind:    NoticeCouponRemoved,
		Code:    code,
		Message: fmt.Sprintf("coupon %s removed: %s", code, ev.Message),
	}}
}
