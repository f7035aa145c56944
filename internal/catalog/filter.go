// Package catalog selects which books are shown for a category.
//
// Every function here is pure: the result depends only on the arguments,
// so callers recompute a view whenever the book collection or the selected
// category changes instead of keeping filtered copies around.
package catalog

import (
	"slices"

	"github.com/google/uuid"

	"studyspace/internal/models"
)

// RecentsLimit is the maximum number of books in the Recents view
const RecentsLimit = 5

// SelectView returns the ordered subset of books to display for category.
//
//   - All (and the zero Category) returns the books in their given order.
//   - Favorites keeps the favorite books in their original relative order.
//   - Recents returns up to RecentsLimit books, most recently read first.
//     Books never read sort last; ties keep their original relative order.
func SelectView(books []models.Book, category Category) []models.Book {
	switch category {
	case Recents:
		return mostRecent(books, RecentsLimit)
	case Favorites:
		return favorites(books)
	default:
		return slices.Clone(books)
	}
}

// FindByID returns the first book with the given ID
func FindByID(books []models.Book, id uuid.UUID) (models.Book, bool) {
	i := slices.IndexFunc(books, func(b models.Book) bool { return b.ID == id })
	if i < 0 {
		return models.Book{}, false
	}
	return books[i], true
}

func favorites(books []models.Book) []models.Book {
	result := make([]models.Book, 0, len(books))
	for _, book := range books {
		if book.IsFavorite {
			result = append(result, book)
		}
	}
	return result
}

// mostRecent keeps a sorted window of at most limit books while scanning
// once. A book only moves ahead of books it was read strictly after, which
// keeps ties in input order.
func mostRecent(books []models.Book, limit int) []models.Book {
	top := make([]models.Book, 0, min(limit, len(books)))
	for _, book := range books {
		i := len(top)
		for i > 0 && readAfter(book, top[i-1]) {
			i--
		}
		if i >= limit {
			continue
		}
		if len(top) < limit {
			top = append(top, models.Book{})
		}
		copy(top[i+1:], top[i:len(top)-1])
		top[i] = book
	}
	return top
}

// readAfter reports whether a was last read strictly after b.
// A missing timestamp is older than any recorded one.
func readAfter(a, b models.Book) bool {
	if a.LastReadAt == nil {
		return false
	}
	if b.LastReadAt == nil {
		return true
	}
	return a.LastReadAt.After(*b.LastReadAt)
}
