// Package session persists per-user state that outlives a request but not
// the login: the cart with its applied coupon, and UI preferences.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joao-fontenele/digitalshop/internal/cart"
)

const DefaultTTL = 7 * 24 * time.Hour

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

var ErrInvalidTheme = errors.New("theme must be one of light, dark, system")

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

type Preferences struct {
	Theme Theme `json:"theme"`
}

func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeSystem}
}

func (p Preferences) Validate() error {
	if !p.Theme.Valid() {
		return ErrInvalidTheme
	}
	return nil
}

// Store is the full session surface. It satisfies cart.Store.
type Store interface {
	cart.Store
	LoadPreferences(ctx context.Context, userID string) (Preferences, error)
	SavePreferences(ctx context.Context, userID string, prefs Preferences) error
	Clear(ctx context.Context, userID string) error
}

func cartKey(userID string) string {
	return fmt.Sprintf("session:%s:cart", userID)
}

func prefsKey(userID string) string {
	return fmt.Sprintf("session:%s:prefs", userID)
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *RedisStore) LoadCart(ctx context.Context, userID string) (cart.State, error) {
	var state cart.State
	found, err := s.get(ctx, cartKey(userID), &state)
	if err != nil || !found {
		return cart.State{}, err
	}
	return state, nil
}

func (s *RedisStore) SaveCart(ctx context.Context, userID string, state cart.State) error {
	if state.Empty() && state.Coupon == nil {
		return s.client.Del(ctx, cartKey(userID)).Err()
	}
	return s.set(ctx, cartKey(userID), state)
}

func (s *RedisStore) LoadPreferences(ctx context.Context, userID string) (Preferences, error) {
	prefs := DefaultPreferences()
	if _, err := s.get(ctx, prefsKey(userID), &prefs); err != nil {
		return DefaultPreferences(), err
	}
	return prefs, nil
}

func (s *RedisStore) SavePreferences(ctx context.Context, userID string, prefs Preferences) error {
	return s.set(ctx, prefsKey(userID), prefs)
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID), prefsKey(userID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// MemoryStore keeps sessions in process. Used when REDIS_URL is unset and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
	prefs map[string]Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string][]byte),
		prefs: make(map[string]Preferences),
	}
}

// LoadCart round-trips through JSON so callers never share slices with the store.
func (m *MemoryStore) LoadCart(_ context.Context, userID string) (cart.State, error) {
	m.mu.Lock()
	data, ok := m.carts[userID]
	m.mu.Unlock()
	if !ok {
		return cart.State{}, nil
	}
	var state cart.State
	if err := json.Unmarshal(data, &state); err != nil {
		return cart.State{}, fmt.Errorf("decode cart: %w", err)
	}
	return state, nil
}

func (m *MemoryStore) SaveCart(_ context.Context, userID string, state cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if state.Empty() && state.Coupon == nil {
		delete(m.carts, userID)
		return nil
	}
	m.carts[userID] = data
	return nil
}

func (m *MemoryStore) LoadPreferences(_ context.Context, userID string) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return DefaultPreferences(), nil
}

func (m *MemoryStore) SavePreferences(_ context.Context, userID string, prefs Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs[userID] = prefs
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	delete(m.prefs, userID)
	return nil
}
