// Package users keeps a record of everyone who has signed in, for the admin
// dashboard. Identity itself lives with the token issuer.
package users

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/digitalshop/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the user or refreshes email, name, role and last_seen_at.
// created_at is kept from the first sign-in.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	stored := &domain.User{}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, role, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, name = EXCLUDED.name, role = EXCLUDED.role, last_seen_at = EXCLUDED.last_seen_at
		RETURNING id, email, name, role, created_at, last_seen_at
	`, user.ID, user.Email, user.Name, user.Role, user.LastSeenAt).Scan(
		&stored.ID, &stored.Email, &stored.Name, &stored.Role, &stored.CreatedAt, &stored.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, role, created_at, last_seen_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt, &u.LastSeenAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}
