package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/cart"
	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type UserUpserter interface {
	Upsert(ctx context.Context, user *domain.User) (*domain.User, error)
}

type CartReader interface {
	Get(ctx context.Context, userID string) (cart.State, error)
}

type Handler struct {
	store  Store
	users  UserUpserter
	carts  CartReader
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(store Store, users UserUpserter, carts CartReader, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		users:  users,
		carts:  carts,
		logger: logger,
		now:    time.Now,
	}
}

type sessionResponse struct {
	User        *domain.User `json:"user"`
	Cart        cart.View    `json:"cart"`
	Preferences Preferences  `json:"preferences"`
}

// HandleHydrate records the signed-in user and returns everything the client
// needs to restore its session.
func (h *Handler) HandleHydrate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || !user.HasIdentity() {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	record := *user
	record.LastSeenAt = h.now().UTC()
	stored, err := h.users.Upsert(r.Context(), &record)
	if err != nil {
		h.logger.Error("failed to upsert user", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "session temporarily unavailable, please retry", h.logger)
		return
	}

	state, err := h.carts.Get(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "session temporarily unavailable, please retry", h.logger)
		return
	}

	prefs, err := h.store.LoadPreferences(r.Context(), user.ID)
	if err != nil {
		h.logger.Warn("failed to load preferences, using defaults", "error", err, "user_id", user.ID)
		prefs = DefaultPreferences()
	}

	h.logger.Info("session hydrated", "user_id", user.ID, "cart_items", state.ItemCount())
	httpx.WriteJSON(w, http.StatusOK, sessionResponse{
		User:        stored,
		Cart:        state.View(),
		Preferences: prefs,
	}, h.logger)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	if err := h.store.Clear(r.Context(), user.ID); err != nil {
		h.logger.Error("failed to clear session", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "session temporarily unavailable, please retry", h.logger)
		return
	}

	h.logger.Info("session cleared", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	prefs, err := h.store.LoadPreferences(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load preferences", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "preferences temporarily unavailable", h.logger)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, prefs, h.logger)
}

func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var prefs Preferences
	if err := httpx.DecodeJSON(w, r, &prefs); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}
	if err := prefs.Validate(); err != nil {
		if errors.Is(err, ErrInvalidTheme) {
			httpx.WriteFieldErrors(w, "invalid preferences", map[string]string{"theme": err.Error()}, h.logger)
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}

	if err := h.store.SavePreferences(r.Context(), user.ID, prefs); err != nil {
		h.logger.Error("failed to save preferences", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, "preferences temporarily unavailable", h.logger)
		return
	}

	h.logger.Info("preferences updated", "user_id", user.ID, "theme", prefs.Theme)
	httpx.WriteJSON(w, http.StatusOK, prefs, h.logger)
}
