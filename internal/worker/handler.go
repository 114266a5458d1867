package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/joao-fontenele/digitalshop/internal/pricing"
)

// NotificationHandler turns order events into customer emails sent through
// the email service.
type NotificationHandler struct {
	emailServiceURL string
	shopName        string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL, shopName string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: strings.TrimRight(emailServiceURL, "/"),
		shopName:        shopName,
		httpClient:      client,
		logger:          logger,
	}
}

type emailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Handle matches messaging.HandlerFunc. The event-type header wins over the
// type field in the payload; unknown types are acknowledged and ignored.
func (h *NotificationHandler) Handle(ctx context.Context, eventType string, payload []byte) error {
	var event domain.OrderEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order event: %w", err)
	}

	if eventType == "" {
		eventType = string(event.Type)
	}

	var msg emailMessage
	switch domain.OrderEventType(eventType) {
	case domain.OrderEventPlaced:
		msg = h.confirmationEmail(event)
	case domain.OrderEventStatusChanged:
		msg = h.statusEmail(event)
	default:
		h.logger.Debug("ignoring event", "event_type", eventType, "order_id", event.OrderID)
		return nil
	}

	if event.Email == "" {
		h.logger.Warn("order event has no recipient", "event_type", eventType, "order_id", event.OrderID)
		return nil
	}

	if err := h.sendEmail(ctx, msg); err != nil {
		h.logger.Error("failed to send email", "error", err, "event_type", eventType, "order_id", event.OrderID)
		return fmt.Errorf("send %s email: %w", eventType, err)
	}

	h.logger.Info("notification sent", "event_type", eventType, "order_id", event.OrderID)
	return nil
}

func (h *NotificationHandler) confirmationEmail(event domain.OrderEvent) emailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", greetingName(event))
	fmt.Fprintf(&b, "Thank you for shopping with %s. Your order %s has been received.\n\n", h.shopName, event.OrderID)
	fmt.Fprintf(&b, "Items: %d\n", event.ItemCount)
	if event.CouponUsed != "" {
		fmt.Fprintf(&b, "Coupon: %s\n", event.CouponUsed)
	}
	fmt.Fprintf(&b, "Total: %s\n", pricing.FormatAmount(event.TotalAmount))

	return emailMessage{
		To:      event.Email,
		Subject: "Order Confirmation: " + event.OrderID,
		Body:    b.String(),
	}
}

func (h *NotificationHandler) statusEmail(event domain.OrderEvent) emailMessage {
	body := fmt.Sprintf("Hi %s,\n\nYour order %s is now %s.\n", greetingName(event), event.OrderID, event.Status)
	if event.Status == domain.OrderStatusCancelled {
		body += "If you did not request this cancellation, please contact us.\n"
	}

	return emailMessage{
		To:      event.Email,
		Subject: fmt.Sprintf("Order %s: %s", event.OrderID, event.Status),
		Body:    body,
	}
}

func greetingName(event domain.OrderEvent) string {
	if event.Name != "" {
		return event.Name
	}
	return "there"
}

func (h *NotificationHandler) sendEmail(ctx context.Context, msg emailMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
