package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]domain.User, error)
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
	users, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "users temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("users listed", "count", len(users))
	httpx.WriteJSON(w, http.StatusOK, users, h.logger)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if admin, ok := auth.UserFromContext(r.Context()); ok && admin.ID == id {
		httpx.WriteError(w, http.StatusConflict, "admins cannot delete their own account", h.logger)
		return
	}

	deleted, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete user", "error", err, "id", id)
		httpx.WriteError(w, http.StatusServiceUnavailable, "users temporarily unavailable", h.logger)
		return
	}

	if !deleted {
		httpx.WriteError(w, http.StatusNotFound, "user not found", h.logger)
		return
	}

	h.logger.Info("user deleted", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}
