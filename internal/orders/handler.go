// Package orders serves placed orders to their owners and to admins, and
// announces status changes on the order event stream.
package orders

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
	"github.com/joao-fontenele/digitalshop/internal/invoice"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// EventPublisher is satisfied by messaging.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	repo      Repository
	publisher EventPublisher
	invoices  invoice.Options
	logger    *slog.Logger
}

// NewHandler accepts a nil publisher, in which case no events are sent.
func NewHandler(repo Repository, publisher EventPublisher, invoices invoice.Options, logger *slog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		publisher: publisher,
		invoices:  invoices,
		logger:    logger,
	}
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	orders, err := h.repo.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "orders temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("orders listed", "count", len(orders), "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusOK, orders, h.logger)
}

// loadVisible fetches an order the caller may see. Other users' orders are
// reported as missing.
func (h *Handler) loadVisible(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return nil, false
	}

	id := chi.URLParam(r, "id")
	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "orders temporarily unavailable", h.logger)
		return nil, false
	}

	if order == nil || (order.UserID != user.ID && !user.IsAdmin()) {
		httpx.WriteError(w, http.StatusNotFound, "order not found", h.logger)
		return nil, false
	}
	return order, true
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	httpx.WriteJSON(w, http.StatusOK, order, h.logger)
}

func (h *Handler) HandleInvoice(w http.ResponseWriter, r *http.Request) {
	order, ok := h.loadVisible(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := invoice.Render(&buf, order, h.invoices); err != nil {
		h.logger.Error("failed to render invoice", "error", err, "order_id", order.ID)
		httpx.WriteError(w, http.StatusInternalServerError, "failed to render invoice", h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename(order)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write invoice", "error", err, "order_id", order.ID)
	}
}

func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	var status domain.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseOrderStatus(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		status = parsed
	}

	orders, err := h.repo.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "status", status)
		httpx.WriteError(w, http.StatusServiceUnavailable, "orders temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("orders listed", "count", len(orders), "status", status)
	httpx.WriteJSON(w, http.StatusOK, orders, h.logger)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		httpx.WriteFieldErrors(w, "invalid status", map[string]string{"status": err.Error()}, h.logger)
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "orders temporarily unavailable", h.logger)
		return
	}

	if order == nil {
		httpx.WriteError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	h.publish(r.Context(), domain.NewOrderEvent(domain.OrderEventStatusChanged, order, time.Now().UTC()))

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	httpx.WriteJSON(w, http.StatusOK, order, h.logger)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete order", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "orders temporarily unavailable", h.logger)
		return
	}

	if !deleted {
		httpx.WriteError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	h.logger.Info("order deleted", "order_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// publish is best effort; the database row is the source of truth.
func (h *Handler) publish(ctx context.Context, event domain.OrderEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, event.OrderID, event); err != nil {
		h.logger.Error("failed to publish order event", "error", err, "order_id", event.OrderID, "type", event.Type)
	}
}
