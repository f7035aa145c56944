package stubs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyspace/internal/models"
	"studyspace/internal/storage"
)

// MockDB is an in-memory implementation of the Storage interface for testing
// and for running without ClickHouse
type MockDB struct {
	mu    sync.RWMutex
	books []models.Book
	index map[uuid.UUID]int
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		books: make([]models.Book, 0),
		index: make(map[uuid.UUID]int),
	}
}

// Initialize does nothing; the mock starts empty
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// CreateBook appends a book, keeping insertion order
func (m *MockDB) CreateBook(ctx context.Context, book models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.index[book.ID]; exists {
		return fmt.Errorf("book %s already exists", book.ID)
	}

	if book.LastReadAt != nil {
		lastRead := *book.LastReadAt
		book.LastReadAt = &lastRead
	}

	m.index[book.ID] = len(m.books)
	m.books = append(m.books, book)
	return nil
}

// ListBooks returns a copy of all books in insertion order
func (m *MockDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, len(m.books))
	copy(books, m.books)
	for i := range books {
		if books[i].LastReadAt != nil {
			lastRead := *books[i].LastReadAt
			books[i].LastReadAt = &lastRead
		}
	}
	return books, nil
}

// ToggleFavorite flips the favorite flag of a book
func (m *MockDB) ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return false, storage.ErrBookNotFound
	}
	m.books[i].IsFavorite = !m.books[i].IsFavorite
	return m.books[i].IsFavorite, nil
}

// SetLastRead stores the last read timestamp of a book
func (m *MockDB) SetLastRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return storage.ErrBookNotFound
	}
	m.books[i].LastReadAt = &at
	return nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
