package reviews

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type Repository interface {
	Create(ctx context.Context, review *domain.Review) error
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Handler struct {
	repo     Repository
	products ProductLookup
	logger   *slog.Logger
}

func NewHandler(repo Repository, products ProductLookup, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		products: products,
		logger:   logger,
	}
}

func (h *Handler) HandleListForProduct(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "id"))
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "")
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, productID string) {
	reviews, err := h.repo.ListByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to list reviews", "error", err, "product_id", productID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "reviews temporarily unavailable", h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, reviews, h.logger)
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}
	productID := chi.URLParam(r, "id")

	var req createReviewRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	review := &domain.Review{
		ProductID: productID,
		UserID:    user.ID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if err := review.Validate(); err != nil {
		field := "comment"
		if errors.Is(err, domain.ErrReviewRating) {
			field = "rating"
		}
		httpx.WriteFieldErrors(w, "invalid review", map[string]string{field: err.Error()}, h.logger)
		return
	}

	product, err := h.products.GetByID(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to look up product", "error", err, "product_id", productID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "reviews temporarily unavailable", h.logger)
		return
	}
	if product == nil {
		httpx.WriteError(w, http.StatusNotFound, "product not found", h.logger)
		return
	}

	if err := h.repo.Create(r.Context(), review); err != nil {
		h.logger.Error("failed to create review", "error", err, "product_id", productID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "reviews temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("review created", "review_id", review.ID, "product_id", productID, "rating", review.Rating)
	httpx.WriteJSON(w, http.StatusCreated, review, h.logger)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete review", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "reviews temporarily unavailable", h.logger)
		return
	}
	if !deleted {
		httpx.WriteError(w, http.StatusNotFound, "review not found", h.logger)
		return
	}

	h.logger.Info("review deleted", "review_id", id)
	w.WriteHeader(http.StatusNoContent)
}
