package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Query:    r.URL.Query().Get("q"),
		Category: r.URL.Query().Get("category"),
	}

	products, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("products listed", "count", len(products), "q", filter.Query, "category", filter.Category)
	httpx.WriteJSON(w, http.StatusOK, products, h.logger)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable", h.logger)
		return
	}

	if product == nil {
		httpx.WriteError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, product, h.logger)
}

type productRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageRef    string          `json:"image_ref"`
}

func (req productRequest) product(id string) *domain.Product {
	p := &domain.Product{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageRef:    req.ImageRef,
	}
	p.Normalize()
	return p
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request, id string) (*domain.Product, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return nil, false
	}

	p := req.product(id)
	if err := p.Validate(); err != nil {
		field := "title"
		if errors.Is(err, domain.ErrProductNegativePrice) {
			field = "price"
		}
		httpx.WriteFieldErrors(w, "invalid product", map[string]string{field: err.Error()}, h.logger)
		return nil, false
	}
	return p, true
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeProduct(w, r, "")
	if !ok {
		return
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		h.logger.Error("failed to create product", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("product created", "product_id", p.ID, "title", p.Title)
	httpx.WriteJSON(w, http.StatusCreated, p, h.logger)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.decodeProduct(w, r, id)
	if !ok {
		return
	}

	updated, err := h.repo.Update(r.Context(), p)
	if err != nil {
		h.logger.Error("failed to update product", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable", h.logger)
		return
	}

	if updated == nil {
		httpx.WriteError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	h.logger.Info("product updated", "product_id", updated.ID)
	httpx.WriteJSON(w, http.StatusOK, updated, h.logger)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete product", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "catalog temporarily unavailable", h.logger)
		return
	}

	if !deleted {
		httpx.WriteError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}
