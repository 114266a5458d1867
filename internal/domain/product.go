package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductTitleRequired = errors.New("product title is required")
	ErrProductNegativePrice = errors.New("product price must not be negative")
)

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageRef    string          `json:"image_ref"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Normalize trims text fields and rounds the price to currency precision.
func (p *Product) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageRef = strings.TrimSpace(p.ImageRef)
	p.Price = p.Price.Round(2)
}

func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrProductTitleRequired
	}
	if p.Price.IsNegative() {
		return ErrProductNegativePrice
	}
	return nil
}
