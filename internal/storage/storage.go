package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"studyspace/internal/models"
)

// ErrBookNotFound is returned when an operation targets an unknown book
var ErrBookNotFound = errors.New("book not found")

// Storage defines the interface for data storage operations
type Storage interface {
	// Book operations
	CreateBook(ctx context.Context, book models.Book) error

	// ListBooks returns every book oldest first by CreatedAt. Books with equal
	// CreatedAt may come back in any order; library.Service never creates two
	// books with the same CreatedAt.
	ListBooks(ctx context.Context) ([]models.Book, error)

	// ToggleFavorite flips the favorite flag and returns the new value.
	// Returns ErrBookNotFound if no book has the given ID.
	ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error)

	// SetLastRead records when the book was last opened.
	// Returns ErrBookNotFound if no book has the given ID.
	SetLastRead(ctx context.Context, id uuid.UUID, at time.Time) error

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
