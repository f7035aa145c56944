package bot

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyspace/internal/catalog"
	"studyspace/internal/models"
)

func buttonData(t *testing.T, button tgbotapi.InlineKeyboardButton) string {
	t.Helper()
	require.NotNil(t, button.CallbackData)
	return *button.CallbackData
}

func TestParseCallbackData(t *testing.T) {
	testCases := []struct {
		data   string
		action string
		arg    string
	}{
		{"back", "back", ""},
		{"category:Recents", "category", "Recents"},
		{"fav:0d4c1f7e-8a51-4bcb-9f37-3b4a5c0e6d21", "fav", "0d4c1f7e-8a51-4bcb-9f37-3b4a5c0e6d21"},
		{"", "", ""},
	}

	for _, tc := range testCases {
		action, arg := parseCallbackData(tc.data)
		assert.Equal(t, tc.action, action, tc.data)
		assert.Equal(t, tc.arg, arg, tc.data)
	}
}

func TestCategoryMenu(t *testing.T) {
	menu := categoryMenu(catalog.Favorites)

	require.Len(t, menu.InlineKeyboard, 1)
	row := menu.InlineKeyboard[0]
	require.Len(t, row, 3)

	assert.Equal(t, "🕒 Recents", row[0].Text)
	assert.Equal(t, "• ⭐ Favorites", row[1].Text)
	assert.Equal(t, "📚 All", row[2].Text)
	assert.Equal(t, "category:Recents", buttonData(t, row[0]))
	assert.Equal(t, "category:All", buttonData(t, row[2]))
}

func TestRenderList_Empty(t *testing.T) {
	for _, category := range catalog.Categories() {
		text, keyboard := renderList(category, nil)
		assert.Nil(t, keyboard, "category %s", category)
		assert.True(t, strings.HasPrefix(text, category.Icon()+" "+category.Title()), text)
		assert.Contains(t, text, emptyListText(category))
	}
}

func TestRenderList(t *testing.T) {
	books := []models.Book{
		{ID: uuid.New(), Title: "Dune", Author: "Frank Herbert", IsFavorite: true},
		{ID: uuid.New(), Title: "Emma"},
	}

	text, keyboard := renderList(catalog.All, books)

	assert.Contains(t, text, "1. Dune — Frank Herbert ⭐")
	assert.Contains(t, text, "2. Emma\n")

	require.NotNil(t, keyboard)
	require.Len(t, keyboard.InlineKeyboard, 2)

	first := keyboard.InlineKeyboard[0]
	require.Len(t, first, 2)
	assert.Equal(t, "Dune", first[0].Text)
	assert.Equal(t, "book:"+books[0].ID.String(), buttonData(t, first[0]))
	assert.Equal(t, "★", first[1].Text)
	assert.Equal(t, "fav:"+books[0].ID.String(), buttonData(t, first[1]))

	assert.Equal(t, "☆", keyboard.InlineKeyboard[1][1].Text)
}

func TestRenderList_CallbackDataFitsTelegramLimit(t *testing.T) {
	books := []models.Book{{ID: uuid.New(), Title: strings.Repeat("Long title ", 20)}}

	_, keyboard := renderList(catalog.All, books)
	require.NotNil(t, keyboard)
	for _, button := range keyboard.InlineKeyboard[0] {
		assert.LessOrEqual(t, len(buttonData(t, button)), 64)
	}
}

func TestRenderDetail(t *testing.T) {
	lastRead := time.Date(2024, 9, 14, 18, 30, 0, 0, time.UTC)
	book := models.Book{
		ID:         uuid.New(),
		Title:      "Dune",
		Author:     "Frank Herbert",
		LastReadAt: &lastRead,
	}

	text, keyboard := renderDetail(book)
	assert.Contains(t, text, "📖 Dune")
	assert.Contains(t, text, "✍️ Frank Herbert")
	assert.Contains(t, text, "Last read: 2024-09-14 18:30")
	assert.NotContains(t, text, "In favorites")

	require.Len(t, keyboard.InlineKeyboard, 2)
	assert.Equal(t, "☆ Add to favorites", keyboard.InlineKeyboard[0][0].Text)
	assert.Equal(t, "dfav:"+book.ID.String(), buttonData(t, keyboard.InlineKeyboard[0][0]))
	assert.Equal(t, "back", buttonData(t, keyboard.InlineKeyboard[1][0]))

	book.IsFavorite = true
	book.LastReadAt = nil
	text, keyboard = renderDetail(book)
	assert.Contains(t, text, "Never read")
	assert.Contains(t, text, "In favorites")
	assert.Equal(t, "★ Remove from favorites", keyboard.InlineKeyboard[0][0].Text)
}
