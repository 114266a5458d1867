package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/digitalshop/internal/address"
	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, user *domain.User, addr domain.ShippingAddress) (*domain.Order, error)
}

type Handler struct {
	placer OrderPlacer
	logger *slog.Logger
}

func NewHandler(placer OrderPlacer, logger *slog.Logger) *Handler {
	return &Handler{
		placer: placer,
		logger: logger,
	}
}

type checkoutResponse struct {
	Order *domain.Order `json:"order"`
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var addr domain.ShippingAddress
	if err := httpx.DecodeJSON(w, r, &addr); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	order, err := h.placer.PlaceOrder(r.Context(), user, addr)
	if err != nil {
		var verr *address.ValidationError
		switch {
		case errors.Is(err, ErrEmptyCart):
			httpx.WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		case errors.As(err, &verr):
			httpx.WriteFieldErrors(w, "please fix the highlighted fields", verr.Messages(), h.logger)
		case errors.Is(err, ErrUnauthenticated):
			httpx.WriteError(w, http.StatusUnauthorized, err.Error(), h.logger)
		default:
			httpx.WriteError(w, http.StatusServiceUnavailable, ErrOrderNotPlaced.Error(), h.logger)
		}
		return
	}

	w.Header().Set("Location", "/api/orders/"+order.ID)
	httpx.WriteJSON(w, http.StatusCreated, checkoutResponse{Order: order}, h.logger)
}
