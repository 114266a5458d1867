package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrReviewRating  = errors.New("rating must be between 1 and 5")
	ErrReviewComment = errors.New("comment must not exceed 2000 characters")
)

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return ErrReviewRating
	}
	if len([]rune(strings.TrimSpace(r.Comment))) > 2000 {
		return ErrReviewComment
	}
	return nil
}
