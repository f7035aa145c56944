package catalog

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyspace/internal/models"
)

var baseTime = time.Date(2024, 9, 14, 12, 0, 0, 0, time.UTC)

func readAt(days int) *time.Time {
	t := baseTime.AddDate(0, 0, days)
	return &t
}

func book(title string, favorite bool, lastRead *time.Time) models.Book {
	return models.Book{
		ID:         uuid.New(),
		Title:      title,
		IsFavorite: favorite,
		LastReadAt: lastRead,
	}
}

func titles(books []models.Book) []string {
	result := make([]string, 0, len(books))
	for _, b := range books {
		result = append(result, b.Title)
	}
	return result
}

func TestSelectView_All(t *testing.T) {
	books := []models.Book{
		book("Dune", false, readAt(-3)),
		book("Emma", true, nil),
		book("Ulysses", false, readAt(-1)),
	}

	for _, category := range []Category{All, ""} {
		got := SelectView(books, category)
		if diff := cmp.Diff(books, got); diff != "" {
			t.Errorf("SelectView(%q) mismatch (-want +got):\n%s", category, diff)
		}
	}
}

func TestSelectView_UnknownCategoryBehavesLikeAll(t *testing.T) {
	books := []models.Book{book("A", false, nil), book("B", true, nil)}
	assert.Equal(t, titles(books), titles(SelectView(books, Category("Shelf"))))
}

func TestSelectView_Favorites(t *testing.T) {
	books := []models.Book{
		book("A", true, nil),
		book("B", false, readAt(-1)),
		book("C", true, readAt(-2)),
		book("D", false, nil),
		book("E", true, nil),
	}

	got := SelectView(books, Favorites)
	assert.Equal(t, []string{"A", "C", "E"}, titles(got))
}

func TestSelectView_Recents(t *testing.T) {
	testCases := []struct {
		name     string
		books    []models.Book
		expected []string
	}{
		{
			name: "six books, one never read",
			books: []models.Book{
				book("B1", false, readAt(-6)),
				book("B2", false, readAt(-2)),
				book("B3", false, readAt(-4)),
				book("B4", false, readAt(-1)),
				book("B5", false, readAt(-5)),
				book("B6", false, nil),
			},
			expected: []string{"B4", "B2", "B3", "B5", "B1"},
		},
		{
			name: "fewer than five books",
			books: []models.Book{
				book("A", false, nil),
				book("B", false, readAt(-1)),
			},
			expected: []string{"B", "A"},
		},
		{
			name: "never read books keep input order",
			books: []models.Book{
				book("A", false, nil),
				book("B", false, nil),
				book("C", false, nil),
				book("D", false, nil),
				book("E", false, nil),
				book("F", false, nil),
			},
			expected: []string{"A", "B", "C", "D", "E"},
		},
		{
			name: "equal timestamps keep input order",
			books: []models.Book{
				book("A", false, readAt(-2)),
				book("B", false, readAt(-1)),
				book("C", false, readAt(-2)),
				book("D", false, readAt(-1)),
			},
			expected: []string{"B", "D", "A", "C"},
		},
		{
			name: "most recent book last in input",
			books: []models.Book{
				book("A", false, readAt(-7)),
				book("B", false, readAt(-6)),
				book("C", false, readAt(-5)),
				book("D", false, readAt(-4)),
				book("E", false, readAt(-3)),
				book("F", false, readAt(0)),
			},
			expected: []string{"F", "E", "D", "C", "B"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectView(tc.books, Recents)
			assert.Equal(t, tc.expected, titles(got))
		})
	}
}

func TestSelectView_Empty(t *testing.T) {
	for _, category := range append(Categories(), "") {
		assert.Empty(t, SelectView(nil, category), "category %q", category)
		assert.Empty(t, SelectView([]models.Book{}, category), "category %q", category)
	}
}

func TestSelectView_DoesNotMutateInput(t *testing.T) {
	books := []models.Book{
		book("A", false, readAt(-3)),
		book("B", true, readAt(-1)),
		book("C", false, nil),
	}
	before := titles(books)

	for _, category := range Categories() {
		first := SelectView(books, category)
		second := SelectView(books, category)
		assert.Equal(t, titles(first), titles(second), "category %s is not idempotent", category)
	}
	assert.Equal(t, before, titles(books))
}

// TestSelectView_RandomCollections checks the filter invariants on generated
// collections with a fixed seed.
func TestSelectView_RandomCollections(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))

	for round := 0; round < 200; round++ {
		n := rng.IntN(12)
		books := make([]models.Book, n)
		for i := range books {
			var lastRead *time.Time
			if rng.IntN(4) > 0 {
				lastRead = readAt(-rng.IntN(6))
			}
			books[i] = book(string(rune('a'+i)), rng.IntN(2) == 0, lastRead)
		}

		// All is the identity
		require.Equal(t, titles(books), titles(SelectView(books, All)))

		// Favorites is exactly the favorite subsequence
		var wantFavorites []string
		for _, b := range books {
			if b.IsFavorite {
				wantFavorites = append(wantFavorites, b.Title)
			}
		}
		gotFavorites := SelectView(books, Favorites)
		require.Len(t, gotFavorites, len(wantFavorites))
		if len(wantFavorites) > 0 {
			require.Equal(t, wantFavorites, titles(gotFavorites))
		}

		// Recents has min(5, n) books and dominates every excluded book
		recents := SelectView(books, Recents)
		require.Len(t, recents, min(RecentsLimit, n))
		included := make(map[uuid.UUID]bool, len(recents))
		for _, b := range recents {
			included[b.ID] = true
		}
		for i := 1; i < len(recents); i++ {
			require.False(t, readAfter(recents[i], recents[i-1]), "recents not in descending order")
		}
		for _, excluded := range books {
			if included[excluded.ID] {
				continue
			}
			for _, kept := range recents {
				require.False(t, readAfter(excluded, kept), "excluded %s was read after kept %s", excluded.Title, kept.Title)
			}
		}
	}
}

func TestFindByID(t *testing.T) {
	books := []models.Book{
		book("A", false, nil),
		book("B", true, nil),
	}

	found, ok := FindByID(books, books[1].ID)
	require.True(t, ok)
	assert.Equal(t, "B", found.Title)

	_, ok = FindByID(books, uuid.New())
	assert.False(t, ok)

	_, ok = FindByID(nil, books[0].ID)
	assert.False(t, ok)
}

func TestFindByID_FirstMatchWins(t *testing.T) {
	first := book("First", false, nil)
	second := first
	second.Title = "Second"

	found, ok := FindByID([]models.Book{first, second}, first.ID)
	require.True(t, ok)
	assert.Equal(t, "First", found.Title)
}
