package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/digitalshop/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create writes the order and its item snapshot in one transaction and
// assigns the order id.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	address, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("encode address: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, email, address, subtotal, discount_applied, coupon_used, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, order.UserID, order.Email, string(address), order.Subtotal, order.DiscountApplied,
		sql.NullString{String: order.CouponUsed, Valid: order.CouponUsed != ""},
		order.TotalAmount, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return err
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, title, unit_price, quantity, category, image_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, uuid.New().String(), id, i, item.ProductID, item.Title, item.UnitPrice, item.Quantity, item.Category, item.ImageRef)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	order.ID = id
	return nil
}

const orderColumns = `id, user_id, email, address, subtotal, discount_applied, coupon_used, total_amount, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		order   domain.Order
		address []byte
		coupon  sql.NullString
	)
	if err := row.Scan(&order.ID, &order.UserID, &order.Email, &address, &order.Subtotal, &order.DiscountApplied,
		&coupon, &order.TotalAmount, &order.Status, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(address, &order.Address); err != nil {
		return nil, fmt.Errorf("decode address of order %s: %w", order.ID, err)
	}
	order.CouponUsed = coupon.String
	order.Items = []domain.CartLineItem{}
	return &order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadItems(ctx, map[string]*domain.Order{order.ID: order}, []string{order.ID}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns a shopper's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, `WHERE user_id = $1`, userID)
}

// List returns all orders, or only those in status when it is non-empty.
func (r *OrderRepository) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if status == "" {
		return r.list(ctx, "")
	}
	return r.list(ctx, `WHERE status = $1`, status)
}

func (r *OrderRepository) list(ctx context.Context, where string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		`+where+`
		ORDER BY created_at DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orderMap[order.ID] = order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	if err := r.loadItems(ctx, orderMap, orderIDs); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// loadItems fetches the item snapshots of every order in one query.
func (r *OrderRepository) loadItems(ctx context.Context, orderMap map[string]*domain.Order, orderIDs []string) error {
	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, title, unit_price, quantity, category, image_ref
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.CartLineItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Title, &item.UnitPrice, &item.Quantity, &item.Category, &item.ImageRef); err != nil {
			return err
		}
		if order, ok := orderMap[orderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return itemRows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// Delete removes the order; its items go with it through ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// Stats aggregates persisted totals. Cancelled orders are counted but do
// not contribute revenue.
func (r *OrderRepository) Stats(ctx context.Context) (*Stats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		GROUP BY status
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var perStatus []StatusTotal
	for rows.Next() {
		var st StatusTotal
		if err := rows.Scan(&st.Status, &st.Count, &st.Amount); err != nil {
			return nil, err
		}
		perStatus = append(perStatus, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summarize(perStatus, time.Now().UTC()), nil
}

type StatusTotal struct {
	Status domain.OrderStatus
	Count  int
	Amount decimal.Decimal
}

type Stats struct {
	Orders      int                        `json:"orders"`
	Revenue     decimal.Decimal            `json:"revenue"`
	ByStatus    map[domain.OrderStatus]int `json:"by_status"`
	Products    int                        `json:"products"`
	Users       int                        `json:"users"`
	GeneratedAt time.Time                  `json:"generated_at"`
}

func summarize(perStatus []StatusTotal, at time.Time) *Stats {
	stats := &Stats{
		Revenue:     decimal.Zero,
		ByStatus:    make(map[domain.OrderStatus]int, len(perStatus)),
		GeneratedAt: at,
	}
	for _, s := range domain.OrderStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, st := range perStatus {
		stats.Orders += st.Count
		stats.ByStatus[st.Status] += st.Count
		if st.Status != domain.OrderStatusCancelled {
			stats.Revenue = stats.Revenue.Add(st.Amount)
		}
	}
	stats.Revenue = stats.Revenue.Round(2)
	return stats
}
