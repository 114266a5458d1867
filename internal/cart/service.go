package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joao-fontenele/digitalshop/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Store persists cart state per user.
type Store interface {
	LoadCart(ctx context.Context, userID string) (State, error)
	SaveCart(ctx context.Context, userID string, state State) error
}

type ProductLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	store    Store
	products ProductLookup
	reducer  *Reducer
	logger   *slog.Logger
	locks    *userLocks
}

func NewService(store Store, products ProductLookup, reducer *Reducer, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		reducer:  reducer,
		logger:   logger,
		locks:    newUserLocks(),
	}
}

func (s *Service) Get(ctx context.Context, userID string) (State, error) {
	state, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return State{}, fmt.Errorf("load cart: %w", err)
	}
	return state, nil
}

// Dispatch runs one action as load, reduce, save under the user's lock, so
// coupon reconciliation always sees the committed subtotal.
func (s *Service) Dispatch(ctx context.Context, userID string, action Action) (State, Result, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return State{}, Result{}, fmt.Errorf("load cart: %w", err)
	}

	next, res, err := s.reducer.Reduce(current, action)
	if err != nil {
		return current, res, err
	}

	if err := ctx.Err(); err != nil {
		return current, Result{}, err
	}

	if err := s.store.SaveCart(ctx, userID, next); err != nil {
		return current, Result{}, fmt.Errorf("save cart: %w", err)
	}

	for _, n := range res.Notices {
		s.logger.Info("cart notice", "user_id", userID, "kind", n.Kind, "code", n.Code)
	}
	return next, res, nil
}

// AddProduct prices the line from the catalog, never from the client.
func (s *Service) AddProduct(ctx context.Context, userID, productID string, quantity int) (State, Result, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return State{}, Result{}, fmt.Errorf("lookup product: %w", err)
	}
	if product == nil {
		return State{}, Result{}, ErrProductNotFound
	}
	return s.Dispatch(ctx, userID, AddItem{Product: *product, Quantity: quantity})
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	_, _, err := s.Dispatch(ctx, userID, Clear{})
	return err
}

// Settle hands the committed cart to place while holding the user's lock and
// empties the cart only if place succeeds. A failed clear after a successful
// place is logged, not returned: the order exists and must be reported.
func (s *Service) Settle(ctx context.Context, userID string, place func(ctx context.Context, state State) error) error {
	unlock := s.locks.lock(userID)
	defer unlock()

	current, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	if err := place(ctx, current); err != nil {
		return err
	}

	if err := s.store.SaveCart(context.WithoutCancel(ctx), userID, State{}); err != nil {
		s.logger.Error("failed to clear cart after checkout", "error", err, "user_id", userID)
	}
	return nil
}

type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
