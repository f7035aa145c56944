package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"studyspace/internal/catalog"
	"studyspace/internal/models"
)

// Callback data prefixes for inline keyboard buttons
const (
	callbackCategory  = "category"
	callbackBook      = "book"
	callbackFavorite  = "fav"  // star next to a list entry
	callbackDetailFav = "dfav" // toggle on an open detail card
	callbackBack      = "back"
)

const lastReadLayout = "2006-01-02 15:04"

func callbackData(action, arg string) string {
	if arg == "" {
		return action
	}
	return action + ":" + arg
}

// parseCallbackData splits "action:arg" button data
func parseCallbackData(data string) (action, arg string) {
	action, arg, _ = strings.Cut(data, ":")
	return action, arg
}

// categoryMenu renders the category picker, marking the active category
func categoryMenu(active catalog.Category) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range catalog.Categories() {
		label := fmt.Sprintf("%s %s", c.Icon(), c.Title())
		if c == active {
			label = "• " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, callbackData(callbackCategory, string(c))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// renderList renders a category view. The keyboard is nil when there is
// nothing to pick.
func renderList(category catalog.Category, books []models.Book) (string, *tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	fmt.Fprintf(&text, "%s %s\n\n", category.Icon(), category.Title())

	if len(books) == 0 {
		text.WriteString(emptyListText(category))
		return text.String(), nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, book := range books {
		fmt.Fprintf(&text, "%d. %s\n", i+1, bookLine(book))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(book.Title, callbackData(callbackBook, book.ID.String())),
			tgbotapi.NewInlineKeyboardButtonData(favoriteMark(book), callbackData(callbackFavorite, book.ID.String())),
		))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return text.String(), &keyboard
}

func emptyListText(category catalog.Category) string {
	switch category {
	case catalog.Recents:
		return "You haven't opened any books yet."
	case catalog.Favorites:
		return "No favorites yet. Tap ☆ next to a book to add it."
	default:
		return "Your library is empty. Use /new_book to add a book."
	}
}

// renderDetail renders the detail card of a single book
func renderDetail(book models.Book) (string, tgbotapi.InlineKeyboardMarkup) {
	var text strings.Builder
	fmt.Fprintf(&text, "📖 %s\n", book.Title)
	if book.Author != "" {
		fmt.Fprintf(&text, "✍️ %s\n", book.Author)
	}
	if book.CoverURL != "" {
		fmt.Fprintf(&text, "🖼 %s\n", book.CoverURL)
	}
	text.WriteString("\n")
	if book.LastReadAt != nil {
		fmt.Fprintf(&text, "🕒 Last read: %s\n", book.LastReadAt.Format(lastReadLayout))
	} else {
		text.WriteString("🕒 Never read\n")
	}
	if book.IsFavorite {
		text.WriteString("⭐ In favorites\n")
	}

	toggleLabel := "☆ Add to favorites"
	if book.IsFavorite {
		toggleLabel = "★ Remove from favorites"
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, callbackData(callbackDetailFav, book.ID.String())),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", callbackBack),
		),
	)
	return text.String(), keyboard
}

func bookLine(book models.Book) string {
	line := book.Title
	if book.Author != "" {
		line += " — " + book.Author
	}
	if book.IsFavorite {
		line += " ⭐"
	}
	return line
}

func favoriteMark(book models.Book) string {
	if book.IsFavorite {
		return "★"
	}
	return "☆"
}
