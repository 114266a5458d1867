package assistant

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
	"github.com/joao-fontenele/digitalshop/internal/telemetry"
)

const (
	maxMessageLength = 2000
	unavailable      = "assistant temporarily unavailable"
)

type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

type Handler struct {
	asker   Asker
	limiter *userLimiter
	metrics *telemetry.ShopMetrics
	logger  *slog.Logger
}

// NewHandler allows each user perMinute requests per minute, with bursts of
// the same size.
func NewHandler(asker Asker, perMinute int, metrics *telemetry.ShopMetrics, logger *slog.Logger) *Handler {
	return &Handler{
		asker:   asker,
		limiter: newUserLimiter(perMinute),
		metrics: metrics,
		logger:  logger,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply  string  `json:"reply"`
	Blocks []Block `json:"blocks"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "authentication required", h.logger)
		return
	}

	var req chatRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" || len(message) > maxMessageLength {
		httpx.WriteFieldErrors(w, "invalid message", map[string]string{
			"message": "Message must be between 1 and 2000 characters",
		}, h.logger)
		return
	}

	if !h.limiter.allow(user.ID) {
		h.metrics.AssistantRequest(r.Context(), "rate_limited")
		w.Header().Set("Retry-After", "60")
		httpx.WriteError(w, http.StatusTooManyRequests, unavailable, h.logger)
		return
	}

	reply, err := h.asker.Ask(r.Context(), message)
	if err != nil {
		h.metrics.AssistantRequest(r.Context(), "error")
		h.logger.Error("assistant request failed", "error", err, "user_id", user.ID)
		httpx.WriteError(w, http.StatusServiceUnavailable, unavailable, h.logger)
		return
	}

	h.metrics.AssistantRequest(r.Context(), "ok")
	httpx.WriteJSON(w, http.StatusOK, chatResponse{Reply: reply, Blocks: Format(reply)}, h.logger)
}

type userLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newUserLimiter(perMinute int) *userLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &userLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *userLimiter) allow(userID string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[userID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
