// Package library owns the book collection seen by the presentation layer.
//
// The service caches one snapshot of the store's books. Every mutation made
// through it invalidates the snapshot and bumps Version, and every read
// recomputes the requested view from the snapshot, so a category view can
// never be stale with respect to writes the service performed.
package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
	"studyspace/internal/models"
	"studyspace/internal/storage"
)

// ErrTitleRequired is returned when a book is added without a title
var ErrTitleRequired = errors.New("book title is required")

// Service provides the library operations used by the bot and the HTTP API
type Service struct {
	db     storage.Storage
	logger *zap.Logger
	now    func() time.Time

	mu          sync.Mutex
	snapshot    []models.Book
	valid       bool
	version     uint64
	lastCreated time.Time
}

// NewService creates a library service on top of a store
func NewService(db storage.Storage, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// Version returns a counter that changes every time the collection changes
func (s *Service) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Books returns the whole collection in store order
func (s *Service) Books(ctx context.Context) ([]models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid {
		books, err := s.db.ListBooks(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load books: %w", err)
		}
		s.snapshot = cloneBooks(books)
		s.valid = true
		s.logger.Debug("Library snapshot loaded",
			zap.Int("book_count", len(books)),
			zap.Uint64("version", s.version),
		)
	}
	return cloneBooks(s.snapshot), nil
}

// cloneBooks copies books including their LastReadAt timestamps
func cloneBooks(books []models.Book) []models.Book {
	out := slices.Clone(books)
	for i := range out {
		if t := out[i].LastReadAt; t != nil {
			at := *t
			out[i].LastReadAt = &at
		}
	}
	return out
}

// View returns the books to display for a category
func (s *Service) View(ctx context.Context, category catalog.Category) ([]models.Book, error) {
	books, err := s.Books(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.SelectView(books, category), nil
}

// Book resolves a book by ID. A missing book is reported with ok=false.
func (s *Service) Book(ctx context.Context, id uuid.UUID) (models.Book, bool, error) {
	books, err := s.Books(ctx)
	if err != nil {
		return models.Book{}, false, err
	}
	book, ok := catalog.FindByID(books, id)
	return book, ok, nil
}

// AddBook validates and stores a new book
func (s *Service) AddBook(ctx context.Context, input models.NewBook) (models.Book, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Book{}, ErrTitleRequired
	}

	book := models.Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    strings.TrimSpace(input.Author),
		CoverURL:  strings.TrimSpace(input.CoverURL),
		CreatedAt: s.creationTime(),
	}

	if err := s.db.CreateBook(ctx, book); err != nil {
		return models.Book{}, fmt.Errorf("failed to add book: %w", err)
	}
	s.invalidate()

	s.logger.Info("Book added",
		zap.String("book_id", book.ID.String()),
		zap.String("title", book.Title),
	)
	return book, nil
}

// ToggleFavorite flips the favorite flag of a book and returns the updated book
func (s *Service) ToggleFavorite(ctx context.Context, id uuid.UUID) (models.Book, error) {
	favorite, err := s.db.ToggleFavorite(ctx, id)
	if err != nil {
		return models.Book{}, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	s.invalidate()

	s.logger.Info("Favorite toggled",
		zap.String("book_id", id.String()),
		zap.Bool("is_favorite", favorite),
	)
	return s.mustReload(ctx, id)
}

// OpenBook records that the book was opened now and returns the updated book
func (s *Service) OpenBook(ctx context.Context, id uuid.UUID) (models.Book, error) {
	if err := s.db.SetLastRead(ctx, id, s.timestamp()); err != nil {
		return models.Book{}, fmt.Errorf("failed to open book: %w", err)
	}
	s.invalidate()

	s.logger.Debug("Book opened", zap.String("book_id", id.String()))
	return s.mustReload(ctx, id)
}

// mustReload fetches a book that the store just acknowledged a write for
func (s *Service) mustReload(ctx context.Context, id uuid.UUID) (models.Book, error) {
	book, ok, err := s.Book(ctx, id)
	if err != nil {
		return models.Book{}, err
	}
	if !ok {
		return models.Book{}, storage.ErrBookNotFound
	}
	return book, nil
}

func (s *Service) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
	s.snapshot = nil
	s.version++
}

// creationTime returns a timestamp later than every book created before, so
// stores that order by created_at keep insertion order
func (s *Service) creationTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.timestamp()
	if !at.After(s.lastCreated) {
		at = s.lastCreated.Add(time.Millisecond)
	}
	s.lastCreated = at
	return at
}

// timestamp returns the current time at the precision the stores keep
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
