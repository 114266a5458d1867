package email

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

// Handler accepts outbound mail from the notification worker. Delivery is
// simulated: accepted messages are logged, not relayed.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
	To     string `json:"to"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	fields := map[string]string{}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.To))
	if err != nil {
		fields["to"] = "Recipient must be a valid email address"
	}
	if strings.TrimSpace(req.Subject) == "" {
		fields["subject"] = "Subject is required"
	}
	if len(fields) > 0 {
		httpx.WriteFieldErrors(w, "invalid email", fields, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "email sent", "to", addr.Address, "subject", req.Subject, "body_bytes", len(req.Body))

	httpx.WriteJSON(w, http.StatusOK, sendResponse{Status: "sent", To: addr.Address}, h.logger)
}
