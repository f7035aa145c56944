package catalog

import "strings"

// Category is the active filter for the book list
type Category string

const (
	Recents   Category = "Recents"
	Favorites Category = "Favorites"
	All       Category = "All"
)

// Categories returns every category in sidebar order
func Categories() []Category {
	return []Category{Recents, Favorites, All}
}

// ParseCategory resolves a category name case-insensitively.
// An empty name is All. Unknown names return All and false.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, true
	}
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return All, false
}

// Title returns the heading shown above the list
func (c Category) Title() string {
	if c == "" {
		return "Library"
	}
	return string(c)
}

// Icon returns the emoji used for the category in menus
func (c Category) Icon() string {
	switch c {
	case Recents:
		return "🕒"
	case Favorites:
		return "⭐"
	default:
		return "📚"
	}
}
