package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/domain"
)

func TestFormat(t *testing.T) {
	reply := "**Top picks**\nHere are some options\nfor you.\n\n* Phone under **₹20000**\n- Earbuds\n\nThanks!"

	blocks := Format(reply)

	assert.Equal(t, []Block{
		{Kind: BlockHeading, Text: "Top picks"},
		{Kind: BlockParagraph, Text: "Here are some options for you."},
		{Kind: BlockBullet, Text: "Phone under ₹20000"},
		{Kind: BlockBullet, Text: "Earbuds"},
		{Kind: BlockParagraph, Text: "Thanks!"},
	}, blocks)
}

func TestFormat_InlineBoldIsNotHeading(t *testing.T) {
	blocks := Format("**Note** and **more**")
	require.Len(t, blocks, 1)
	assert.Equal(t, BlockParagraph, blocks[0].Kind)
	assert.Equal(t, "Note and more", blocks[0].Text)
}

func TestFormat_Empty(t *testing.T) {
	assert.NotNil(t, Format(""))
	assert.Empty(t, Format("\n\n"))
}

func TestClient_Ask(t *testing.T) {
	var gotKey string
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/models/flash:generateContent", "secret", "SYSTEM", srv.Client())

	reply, err := c.Ask(context.Background(), "do you ship to Pokhara?")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)
	assert.Equal(t, "secret", gotKey)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	prompt := gotReq.Contents[0].Parts[0].Text
	assert.True(t, strings.HasPrefix(prompt, "SYSTEM"))
	assert.Contains(t, prompt, "do you ship to Pokhara?")
}

func TestClient_AskErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		_, err := NewClient("", "", "", http.DefaultClient).Ask(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("upstream status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k", "", srv.Client()).Ask(context.Background(), "hi")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})

	t.Run("no candidates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k", "", srv.Client()).Ask(context.Background(), "hi")
		assert.ErrorIs(t, err, ErrEmptyReply)
	})
}

type askerFunc func(ctx context.Context, message string) (string, error)

func (f askerFunc) Ask(ctx context.Context, message string) (string, error) {
	return f(ctx, message)
}

func chat(t *testing.T, h *Handler, user *domain.User, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/assistant/chat", strings.NewReader(body))
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.HandleChat(rec, req)
	return rec
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleChat(t *testing.T) {
	user := &domain.User{ID: "u-1", Email: "sita@example.com"}
	asker := askerFunc(func(ctx context.Context, message string) (string, error) {
		return "**Shipping**\n* Kathmandu: 2 days", nil
	})
	h := NewHandler(asker, 5, nil, discardLogger())

	rec := chat(t, h, user, `{"message":"how long is shipping?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "**Shipping**\n* Kathmandu: 2 days", resp.Reply)
	assert.Equal(t, []Block{
		{Kind: BlockHeading, Text: "Shipping"},
		{Kind: BlockBullet, Text: "Kathmandu: 2 days"},
	}, resp.Blocks)
}

func TestHandleChat_Failures(t *testing.T) {
	user := &domain.User{ID: "u-1"}
	ok := askerFunc(func(ctx context.Context, message string) (string, error) { return "fine", nil })
	failing := askerFunc(func(ctx context.Context, message string) (string, error) {
		return "", errors.New("upstream down")
	})

	tests := []struct {
		name       string
		asker      Asker
		user       *domain.User
		body       string
		wantStatus int
		wantError  string
	}{
		{"unauthenticated", ok, nil, `{"message":"hi"}`, http.StatusUnauthorized, "authentication required"},
		{"bad body", ok, user, `nope`, http.StatusBadRequest, "invalid request body"},
		{"blank message", ok, user, `{"message":"   "}`, http.StatusUnprocessableEntity, "invalid message"},
		{"too long", ok, user, `{"message":"` + strings.Repeat("a", maxMessageLength+1) + `"}`, http.StatusUnprocessableEntity, "invalid message"},
		{"upstream failure", failing, user, `{"message":"hi"}`, http.StatusServiceUnavailable, unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := chat(t, NewHandler(tt.asker, 5, nil, discardLogger()), tt.user, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantError, resp["error"])
		})
	}
}

func TestHandleChat_RateLimitedPerUser(t *testing.T) {
	calls := 0
	asker := askerFunc(func(ctx context.Context, message string) (string, error) {
		calls++
		return "ok", nil
	})
	h := NewHandler(asker, 2, nil, discardLogger())
	sita := &domain.User{ID: "sita"}
	ram := &domain.User{ID: "ram"}

	assert.Equal(t, http.StatusOK, chat(t, h, sita, `{"message":"1"}`).Code)
	assert.Equal(t, http.StatusOK, chat(t, h, sita, `{"message":"2"}`).Code)

	limited := chat(t, h, sita, `{"message":"3"}`)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, chat(t, h, ram, `{"message":"1"}`).Code)
	assert.Equal(t, 3, calls)
}
