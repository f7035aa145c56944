package ch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"

	"studyspace/internal/models"
	"studyspace/internal/storage"
	"studyspace/migrations"
)

// runMigrations applies the up section of the embedded migrations directly
// (goose doesn't work well with ClickHouse in tests)
func runMigrations(ctx context.Context, db *ClickHouseDB) error {
	_ = db.conn.Exec(ctx, "DROP TABLE IF EXISTS books")

	schema, err := migrations.FS.ReadFile("00001_create_books.sql")
	if err != nil {
		return err
	}
	up, _, _ := cutGooseSections(string(schema))
	return db.conn.Exec(ctx, up)
}

// cutGooseSections returns the statements between the goose Up and Down
// markers, without trailing semicolons
func cutGooseSections(src string) (up, down string, ok bool) {
	_, rest, found := strings.Cut(src, "-- +goose Up")
	if !found {
		return "", "", false
	}
	up, down, found = strings.Cut(rest, "-- +goose Down")
	if !found {
		return "", "", false
	}
	return trimStatement(up), trimStatement(down), true
}

func trimStatement(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ";")
}

// setupTestDB creates a test ClickHouse instance using testcontainers
func setupTestDB(t *testing.T) (*ClickHouseDB, func()) {
	if testing.Short() {
		t.Skip("skipping ClickHouse integration test in short mode")
	}

	ctx := context.Background()

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:24.3.3.102-alpine",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword(""),
		clickhouseTC.WithDatabase("default"),
	)
	require.NoError(t, err, "Failed to start ClickHouse container")

	host, err := clickhouseContainer.Host(ctx)
	require.NoError(t, err)

	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	db, err := NewClickHouseDB(host, port.Int(), "default", "default", "", false)
	require.NoError(t, err, "Failed to connect to ClickHouse")

	err = runMigrations(ctx, db)
	require.NoError(t, err, "Failed to run migrations")

	cleanup := func() {
		db.Close()
		clickhouseContainer.Terminate(ctx)
	}

	return db, cleanup
}

func testBook(title string, createdAt time.Time) models.Book {
	return models.Book{
		ID:        uuid.New(),
		Title:     title,
		Author:    "Author of " + title,
		CreatedAt: createdAt,
	}
}

func TestCutGooseSections(t *testing.T) {
	up, down, ok := cutGooseSections("-- +goose Up\nCREATE TABLE t (x UInt8);\n\n-- +goose Down\nDROP TABLE t;\n")
	require.True(t, ok)
	assert.Equal(t, "CREATE TABLE t (x UInt8)", up)
	assert.Equal(t, "DROP TABLE t", down)

	_, _, ok = cutGooseSections("SELECT 1")
	assert.False(t, ok)
}

// TestClickHouseDB_CreateBook tests book creation
func TestClickHouseDB_CreateBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	book := testBook("Harry Potter", time.Now().UTC().Truncate(time.Millisecond))
	require.NoError(t, db.CreateBook(ctx, book))

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, book.ID, books[0].ID)
	assert.Equal(t, "Harry Potter", books[0].Title)
	assert.Equal(t, "Author of Harry Potter", books[0].Author)
	assert.False(t, books[0].IsFavorite)
	assert.Nil(t, books[0].LastReadAt)
	assert.WithinDuration(t, book.CreatedAt, books[0].CreatedAt, time.Millisecond)
}

// TestClickHouseDB_ListBooks tests that books come back in insertion order
func TestClickHouseDB_ListBooks(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Book C", "Book A", "Book B"} {
		require.NoError(t, db.CreateBook(ctx, testBook(title, base.Add(time.Duration(i)*time.Minute))))
	}

	books, err = db.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Book C", books[0].Title)
	assert.Equal(t, "Book A", books[1].Title)
	assert.Equal(t, "Book B", books[2].Title)
}

// TestClickHouseDB_ToggleFavorite tests flipping the favorite flag
func TestClickHouseDB_ToggleFavorite(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	book := testBook("Dune", time.Now().UTC())
	require.NoError(t, db.CreateBook(ctx, book))

	favorite, err := db.ToggleFavorite(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, favorite)

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	assert.True(t, books[0].IsFavorite)

	favorite, err = db.ToggleFavorite(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, favorite)

	_, err = db.ToggleFavorite(ctx, uuid.New())
	assert.True(t, errors.Is(err, storage.ErrBookNotFound))
}

// TestClickHouseDB_SetLastRead tests recording when a book was opened
func TestClickHouseDB_SetLastRead(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	book := testBook("Emma", time.Now().UTC())
	require.NoError(t, db.CreateBook(ctx, book))

	readAt := time.Date(2024, 9, 14, 18, 45, 12, 345_000_000, time.UTC)
	require.NoError(t, db.SetLastRead(ctx, book.ID, readAt))

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	require.NotNil(t, books[0].LastReadAt)
	assert.True(t, readAt.Equal(*books[0].LastReadAt), "expected %v, got %v", readAt, *books[0].LastReadAt)

	err = db.SetLastRead(ctx, uuid.New(), readAt)
	assert.True(t, errors.Is(err, storage.ErrBookNotFound))
}

// TestClickHouseDB_ConcurrentOperations tests concurrent inserts
func TestClickHouseDB_ConcurrentOperations(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	numGoroutines := 10
	done := make(chan bool, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(idx int) {
			book := testBook("Concurrent Book", time.Now().UTC().Add(time.Duration(idx)*time.Minute))
			assert.NoError(t, db.CreateBook(ctx, book))
			done <- true
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	books, err := db.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, numGoroutines)
}

// TestClickHouseDB_Close tests connection closing
func TestClickHouseDB_Close(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	err := db.Close()
	assert.NoError(t, err)
}
