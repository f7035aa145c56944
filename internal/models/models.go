package models

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a book in the library
type Book struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author,omitempty"`
	CoverURL   string     `json:"cover_url,omitempty"`
	IsFavorite bool       `json:"is_favorite"`
	LastReadAt *time.Time `json:"last_read_at,omitempty"` // nil until the book is opened for the first time
	CreatedAt  time.Time  `json:"created_at"`
}

// NewBook holds the user supplied fields of a book being added
type NewBook struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	CoverURL string `json:"cover_url"`
}
