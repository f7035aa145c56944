package ch

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"studyspace/internal/models"
	"studyspace/internal/storage"
)

// dateTime64Layout matches the DateTime64(3) columns of the books table
const dateTime64Layout = "2006-01-02 15:04:05.000"

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
		DialTimeout: 10 * time.Second,
	}

	if useTLS {
		options.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	return nil
}

// CreateBook inserts a new book
func (db *ClickHouseDB) CreateBook(ctx context.Context, book models.Book) error {
	batch, err := db.conn.PrepareBatch(ctx,
		`INSERT INTO books (id, title, author, cover_url, is_favorite, last_read_at, created_at)`)
	if err != nil {
		return fmt.Errorf("failed to prepare book insert: %w", err)
	}

	if err := batch.Append(
		book.ID,
		book.Title,
		book.Author,
		book.CoverURL,
		book.IsFavorite,
		book.LastReadAt,
		book.CreatedAt,
	); err != nil {
		_ = batch.Abort()
		return fmt.Errorf("failed to append book: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// ListBooks returns all books, oldest first
func (db *ClickHouseDB) ListBooks(ctx context.Context) ([]models.Book, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT id, title, author, cover_url, is_favorite, last_read_at, created_at
		FROM books
		ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		var (
			book     models.Book
			lastRead *time.Time
		)
		if err := rows.Scan(
			&book.ID,
			&book.Title,
			&book.Author,
			&book.CoverURL,
			&book.IsFavorite,
			&lastRead,
			&book.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		book.LastReadAt = lastRead
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// ToggleFavorite flips the favorite flag of a book and returns the new value.
// Two concurrent toggles of the same book may both read the old value.
func (db *ClickHouseDB) ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error) {
	var favorite bool
	err := db.conn.QueryRow(ctx,
		`SELECT is_favorite FROM books WHERE id = toUUID(?) LIMIT 1`, id.String()).Scan(&favorite)
	if errors.Is(err, sql.ErrNoRows) {
		return false, storage.ErrBookNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to read favorite flag: %w", err)
	}

	err = db.conn.Exec(syncMutations(ctx),
		`ALTER TABLE books UPDATE is_favorite = ? WHERE id = toUUID(?)`, !favorite, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return !favorite, nil
}

// SetLastRead stores when a book was last opened
func (db *ClickHouseDB) SetLastRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	exists, err := db.bookExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return storage.ErrBookNotFound
	}

	err = db.conn.Exec(syncMutations(ctx),
		`ALTER TABLE books UPDATE last_read_at = toDateTime64(?, 3, 'UTC') WHERE id = toUUID(?)`,
		at.UTC().Format(dateTime64Layout), id.String())
	if err != nil {
		return fmt.Errorf("failed to set last read: %w", err)
	}
	return nil
}

func (db *ClickHouseDB) bookExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count uint64
	err := db.conn.QueryRow(ctx,
		`SELECT count() FROM books WHERE id = toUUID(?)`, id.String()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up book: %w", err)
	}
	return count > 0, nil
}

// syncMutations makes ALTER ... UPDATE wait until the mutation is applied,
// so the next read observes it
func syncMutations(ctx context.Context) context.Context {
	return clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"mutations_sync": 2,
	}))
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
