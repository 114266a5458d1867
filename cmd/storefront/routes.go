package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/joao-fontenele/digitalshop/internal/address"
	"github.com/joao-fontenele/digitalshop/internal/assistant"
	"github.com/joao-fontenele/digitalshop/internal/auth"
	"github.com/joao-fontenele/digitalshop/internal/cart"
	"github.com/joao-fontenele/digitalshop/internal/catalog"
	"github.com/joao-fontenele/digitalshop/internal/checkout"
	"github.com/joao-fontenele/digitalshop/internal/httpx"
	"github.com/joao-fontenele/digitalshop/internal/orders"
	"github.com/joao-fontenele/digitalshop/internal/reviews"
	"github.com/joao-fontenele/digitalshop/internal/session"
	"github.com/joao-fontenele/digitalshop/internal/telemetry"
	"github.com/joao-fontenele/digitalshop/internal/users"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type handlers struct {
	auth      *auth.Authenticator
	health    pinger
	metrics   http.Handler
	catalog   *catalog.Handler
	reviews   *reviews.Handler
	cart      *cart.Handler
	address   *address.Handler
	session   *session.Handler
	checkout  *checkout.Handler
	orders    *orders.Handler
	stats     *orders.StatsHandler
	users     *users.Handler
	assistant *assistant.Handler
}

func newRouter(h handlers, allowedOrigins []string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(telemetry.RouteTagger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(h.health, logger))
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.catalog.HandleList)
		r.Get("/products/{id}", h.catalog.HandleGet)
		r.Get("/products/{id}/reviews", h.reviews.HandleListForProduct)
		r.Get("/coupons/{code}", h.cart.HandleEvaluateCoupon)
		r.Post("/address/validate", h.address.HandleValidate)
		r.Get("/countries", h.address.HandleCountries)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Middleware)

			r.Post("/session", h.session.HandleHydrate)
			r.Delete("/session", h.session.HandleLogout)
			r.Get("/preferences", h.session.HandleGetPreferences)
			r.Put("/preferences", h.session.HandleUpdatePreferences)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.cart.HandleGet)
				r.Post("/items", h.cart.HandleAddItem)
				r.Post("/items/{productId}/increment", h.cart.HandleIncrement)
				r.Post("/items/{productId}/decrement", h.cart.HandleDecrement)
				r.Delete("/items/{productId}", h.cart.HandleRemoveItem)
				r.Post("/coupon", h.cart.HandleApplyCoupon)
				r.Delete("/coupon", h.cart.HandleRemoveCoupon)
			})

			r.Post("/checkout", h.checkout.HandleCheckout)
			r.Get("/orders", h.orders.HandleListMine)
			r.Get("/orders/{id}", h.orders.HandleGet)
			r.Get("/orders/{id}/invoice", h.orders.HandleInvoice)
			r.Post("/products/{id}/reviews", h.reviews.HandleCreate)
			r.Post("/assistant/chat", h.assistant.HandleChat)

			r.Route("/admin", func(r chi.Router) {
				r.Use(h.auth.RequireAdmin)

				r.Post("/products", h.catalog.HandleCreate)
				r.Put("/products/{id}", h.catalog.HandleUpdate)
				r.Delete("/products/{id}", h.catalog.HandleDelete)

				r.Get("/orders", h.orders.HandleAdminList)
				r.Patch("/orders/{id}/status", h.orders.HandleUpdateStatus)
				r.Delete("/orders/{id}", h.orders.HandleDelete)

				r.Get("/users", h.users.HandleList)
				r.Delete("/users/{id}", h.users.HandleDelete)

				r.Get("/reviews", h.reviews.HandleListAll)
				r.Delete("/reviews/{id}", h.reviews.HandleDelete)

				r.Get("/stats", h.stats.HandleStats)
			})
		})
	})

	return r
}

func healthHandler(db pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				logger.Warn("health check failed", "error", err)
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"}, logger)
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	}
}
