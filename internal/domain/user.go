package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// HasIdentity reports whether the user carries the id and email an order needs.
func (u *User) HasIdentity() bool {
	return u != nil && u.ID != "" && u.Email != ""
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
