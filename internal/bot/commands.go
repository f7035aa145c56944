package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
	"studyspace/internal/storefront"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to your Study Space library! 📚

Available commands:
/library - Browse your books by category
/recents - Books you opened most recently
/favorites - Your favorite books
/all - Every book in your library
/new_book - Add a book
/shop - Open the book shop`

	b.sendText(message.Chat.ID, text)
}

// handleLibrary shows the category menu followed by the current category.
// "/library favorites" jumps straight to a category.
func (b *Bot) handleLibrary(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	session := b.session(userID)

	if arg := message.CommandArguments(); arg != "" {
		category, ok := catalog.ParseCategory(arg)
		if !ok {
			b.sendText(message.Chat.ID, "Unknown category. Choose one of: Recents, Favorites, All.")
			return
		}
		session.Category = category
	}
	session.SelectedBookID = uuid.Nil

	msg := tgbotapi.NewMessage(message.Chat.ID, "Library")
	msg.ReplyMarkup = categoryMenu(session.Category)
	b.sendMessage(msg)

	b.showList(ctx, message.Chat.ID, userID, 0)
}

// selectCategory switches the user's category and shows it.
// editMessageID replaces an existing message instead of sending a new one.
func (b *Bot) selectCategory(ctx context.Context, chatID, userID int64, category catalog.Category, editMessageID int) {
	session := b.session(userID)
	session.Category = category
	session.SelectedBookID = uuid.Nil

	b.logger.Debug("Category selected",
		zap.Int64("user_id", userID),
		zap.String("category", string(category)),
	)
	b.showList(ctx, chatID, userID, editMessageID)
}

// showList recomputes and sends the user's current category view
func (b *Bot) showList(ctx context.Context, chatID, userID int64, editMessageID int) {
	category := b.session(userID).Category

	books, err := b.library.View(ctx, category)
	if err != nil {
		b.logger.Error("Failed to load library view",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("category", string(category)),
		)
		b.sendText(chatID, "Couldn't load your library. Please try again.")
		return
	}

	text, keyboard := renderList(category, books)
	b.sendOrEdit(chatID, editMessageID, text, keyboard)
}

// sendOrEdit sends a new message, or edits editMessageID when it is set
func (b *Bot) sendOrEdit(chatID int64, editMessageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if editMessageID == 0 {
		msg := tgbotapi.NewMessage(chatID, text)
		if keyboard != nil {
			msg.ReplyMarkup = *keyboard
		}
		b.sendMessage(msg)
		return
	}

	if keyboard != nil {
		b.sendMessage(tgbotapi.NewEditMessageTextAndMarkup(chatID, editMessageID, text, *keyboard))
		return
	}
	b.sendMessage(tgbotapi.NewEditMessageText(chatID, editMessageID, text))
}

// handleNewBookStart initiates the new book conversation
func (b *Bot) handleNewBookStart(message *tgbotapi.Message) {
	userID := message.From.ID
	b.states[userID] = &ConversationState{
		Command: "new_book",
		Step:    1,
		Data:    make(map[string]string),
	}

	b.sendText(message.Chat.ID, "Please enter the book title:")
}

// handleShop sends the storefront link if it is a valid URL
func (b *Bot) handleShop(message *tgbotapi.Message) {
	u, ok := storefront.Parse(b.storefrontURL)
	if !ok {
		b.logger.Warn("Storefront URL is not valid, not offering it",
			zap.String("storefront_url", b.storefrontURL),
		)
		b.sendText(message.Chat.ID, "The book shop is unavailable right now.")
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "🛍 Find your next book in the shop:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Open shop", u.String()),
		),
	)
	b.sendMessage(msg)
}
