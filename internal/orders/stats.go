package orders

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/digitalshop/internal/httpx"
)

type StatsReader interface {
	Stats(ctx context.Context) (*Stats, error)
}

type Counter interface {
	Count(ctx context.Context) (int, error)
}

type StatsHandler struct {
	orders   StatsReader
	products Counter
	users    Counter
	logger   *slog.Logger
}

func NewStatsHandler(orders StatsReader, products, users Counter, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		orders:   orders,
		products: products,
		users:    users,
		logger:   logger,
	}
}

// HandleStats reports dashboard figures. Revenue is summed from the totals
// persisted at checkout, never recomputed from items.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	var (
		stats    *Stats
		products int
		users    int
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		if stats, err = h.orders.Stats(ctx); err != nil {
			return fmt.Errorf("order stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if products, err = h.products.Count(ctx); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if users, err = h.users.Count(ctx); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("failed to compute dashboard stats", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "stats temporarily unavailable", h.logger)
		return
	}

	stats.Products = products
	stats.Users = users
	httpx.WriteJSON(w, http.StatusOK, stats, h.logger)
}
