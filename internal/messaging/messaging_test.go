package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestMessageCarrier_SetReplacesExisting(t *testing.T) {
	msg := &kafka.Message{}
	c := NewMessageCarrier(msg)

	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "k=v")

	assert.Equal(t, "b", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"traceparent", "baggage"}, c.Keys())
}

func TestMessageCarrier_PropagatesTraceContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	prop := propagation.TraceContext{}
	msg := &kafka.Message{}
	prop.Inject(ctx, NewMessageCarrier(msg))

	extracted := trace.SpanContextFromContext(prop.Extract(context.Background(), NewMessageCarrier(msg)))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
}

type typedEvent struct {
	OrderID string `json:"order_id"`
}

func (typedEvent) EventType() string { return "order.placed" }

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage("o1", typedEvent{OrderID: "o1"})
	require.NoError(t, err)

	assert.Equal(t, "o1", string(msg.Key))
	assert.Equal(t, "order.placed", headerValue(&msg, HeaderEventType))
	assert.Equal(t, "application/json", headerValue(&msg, HeaderContentType))

	var decoded typedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "o1", decoded.OrderID)

	plain, err := buildMessage("k", map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Empty(t, headerValue(&plain, HeaderEventType))

	_, err = buildMessage("k", func() {})
	assert.Error(t, err)
}

func TestConsumer_ProcessWithRetry(t *testing.T) {
	c := &Consumer{
		topic:       "order.events",
		maxAttempts: 3,
		backoff:     time.Millisecond,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	msg := kafka.Message{Value: []byte(`{}`)}
	setHeader(&msg, HeaderEventType, "order.placed")

	calls := 0
	err := c.processWithRetry(context.Background(), msg, func(_ context.Context, eventType string, _ []byte) error {
		calls++
		assert.Equal(t, "order.placed", eventType)
		if calls < 2 {
			return errors.New("email service down")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	calls = 0
	err = c.processWithRetry(context.Background(), msg, func(context.Context, string, []byte) error {
		calls++
		return errors.New("still down")
	})
	assert.EqualError(t, err, "still down")
	assert.Equal(t, 3, calls)
}
