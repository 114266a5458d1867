package cart

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
	"github.com/joao-fontenele/digitalshop/internal/pricing"
	"github.com/joao-fontenele/digitalshop/internal/telemetry"
)

type Handler struct {
	service *Service
	coupons Evaluator
	metrics *telemetry.ShopMetrics
	logger  *slog.Logger
}

func NewHandler(service *Service, coupons Evaluator, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		coupons: coupons,
		metrics: metrics,
		logger:  logger,
	}
}

type cartResponse struct {
	Cart       View                `json:"cart"`
	Notices    []Notice            `json:"notices,omitempty"`
	Evaluation *pricing.Evaluation `json:"evaluation,omitempty"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	state, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "cart temporarily unavailable", h.logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, cartResponse{Cart: state.View()}, h.logger)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var req addItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if req.ProductID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "product_id is required", h.logger)
		return
	}

	state, res, err := h.service.AddProduct(r.Context(), user.ID, req.ProductID, req.Quantity)
	h.respond(w, r, user.ID, state, res, err)
}

func (h *Handler) HandleIncrement(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, IncrementItem{ProductID: chi.URLParam(r, "productId")})
}

func (h *Handler) HandleDecrement(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, DecrementItem{ProductID: chi.URLParam(r, "productId")})
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, RemoveItem{ProductID: chi.URLParam(r, "productId")})
}

func (h *Handler) HandleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, RemoveCoupon{})
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

// HandleApplyCoupon answers 200 when the coupon sticks and 422 when it is
// rejected; the cart is returned unchanged in the latter case.
func (h *Handler) HandleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var req applyCouponRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	state, res, err := h.service.Dispatch(r.Context(), user.ID, ApplyCoupon{Code: req.Code})
	if err != nil {
		h.respond(w, r, user.ID, state, res, err)
		return
	}

	if res.Evaluation != nil {
		h.metrics.CouponEvaluated(r.Context(), res.Evaluation.Valid, string(res.Evaluation.Reason))
		if !res.Evaluation.Valid {
			httpx.WriteJSON(w, http.StatusUnprocessableEntity, cartResponse{
				Cart:       state.View(),
				Notices:    res.Notices,
				Evaluation: res.Evaluation,
			}, h.logger)
			return
		}
	}

	h.respond(w, r, user.ID, state, res, nil)
}

// HandleEvaluateCoupon previews a code against a subtotal without touching any cart.
func (h *Handler) HandleEvaluateCoupon(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	subtotal := decimal.Zero
	if raw := r.URL.Query().Get("subtotal"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil || parsed.IsNegative() {
			httpx.WriteError(w, http.StatusBadRequest, "subtotal must be a non-negative amount", h.logger)
			return
		}
		subtotal = parsed
	}

	ev := h.coupons.Evaluate(code, subtotal)
	h.metrics.CouponEvaluated(r.Context(), ev.Valid, string(ev.Reason))
	httpx.WriteJSON(w, http.StatusOK, ev, h.logger)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, action Action) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}
	state, res, err := h.service.Dispatch(r.Context(), user.ID, action)
	h.respond(w, r, user.ID, state, res, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, userID string, state State, res Result, err error) {
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, cartResponse{Cart: state.View(), Notices: res.Notices}, h.logger)
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrProductNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error(), h.logger)
	case errors.Is(err, ErrInvalidQuantity):
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
	default:
		h.logger.Error("cart update failed", "error", err, "user_id", userID, "path", r.URL.Path)
		httpx.WriteError(w, http.StatusServiceUnavailable, "cart temporarily unavailable, please retry", h.logger)
	}
}
