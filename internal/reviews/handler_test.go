package reviews

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/domain"
)

type fakeRepo struct {
	created []domain.Review
}

func (f *fakeRepo) Create(_ context.Context, review *domain.Review) error {
	review.ID = "r1"
	f.created = append(f.created, *review)
	return nil
}

func (f *fakeRepo) ListByProduct(_ context.Context, productID string) ([]domain.Review, error) {
	out := []domain.Review{}
	for _, r := range f.created {
		if productID == "" || r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) (bool, error) {
	for i, r := range f.created {
		if r.ID == id {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeProducts map[string]bool

func (f fakeProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if !f[id] {
		return nil, nil
	}
	return &domain.Product{ID: id}, nil
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name    string
		product string
		body    string
		want    int
	}{
		{"valid", "p1", `{"rating":5,"comment":" fast delivery "}`, http.StatusCreated},
		{"rating too high", "p1", `{"rating":6}`, http.StatusUnprocessableEntity},
		{"rating missing", "p1", `{"comment":"meh"}`, http.StatusUnprocessableEntity},
		{"comment too long", "p1", `{"rating":3,"comment":"` + strings.Repeat("a", 2001) + `"}`, http.StatusUnprocessableEntity},
		{"unknown product", "p9", `{"rating":4}`, http.StatusNotFound},
		{"malformed", "p1", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			h := NewHandler(repo, fakeProducts{"p1": true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
			r := chi.NewRouter()
			r.Post("/products/{id}/reviews", h.HandleCreate)

			req := httptest.NewRequest(http.MethodPost, "/products/"+tt.product+"/reviews", strings.NewReader(tt.body))
			user := &domain.User{ID: "u1", Email: "asha@example.com", Name: "Asha"}
			req = req.WithContext(auth.WithUser(req.Context(), user))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected status %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if tt.want == http.StatusCreated {
				if len(repo.created) != 1 {
					t.Fatalf("expected 1 review stored, got %d", len(repo.created))
				}
				got := repo.created[0]
				if got.Comment != "fast delivery" || got.UserName != "Asha" || got.ProductID != "p1" {
					t.Errorf("unexpected review stored: %+v", got)
				}
			}
		})
	}
}

func TestHandler_CreateRequiresUser(t *testing.T) {
	h := NewHandler(&fakeRepo{}, fakeProducts{"p1": true}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/products/p1/reviews", strings.NewReader(`{"rating":5}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_Delete(t *testing.T) {
	repo := &fakeRepo{created: []domain.Review{{ID: "r1", ProductID: "p1", Rating: 4}}}
	h := NewHandler(repo, fakeProducts{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Delete("/admin/reviews/{id}", h.HandleDelete)

	for _, want := range []int{http.StatusNoContent, http.StatusNotFound} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/reviews/r1", nil))
		if rec.Code != want {
			t.Errorf("expected status %d, got %d", want, rec.Code)
		}
	}
}
