package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
	"studyspace/internal/storage"
)

// handleCategoryCallback processes a category menu selection
func (b *Bot) handleCategoryCallback(ctx context.Context, query *tgbotapi.CallbackQuery, arg string) {
	category, ok := catalog.ParseCategory(arg)
	if !ok {
		return
	}
	b.selectCategory(ctx, query.Message.Chat.ID, query.From.ID, category, 0)
}

// handleBookCallback opens the detail card of a book and marks it as read
func (b *Bot) handleBookCallback(ctx context.Context, query *tgbotapi.CallbackQuery, arg string) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID

	id, err := uuid.Parse(arg)
	if err != nil {
		b.logger.Debug("Invalid book id in callback", zap.String("callback_data", query.Data))
		return
	}

	book, err := b.library.OpenBook(ctx, id)
	if errors.Is(err, storage.ErrBookNotFound) {
		b.session(userID).SelectedBookID = uuid.Nil
		b.sendText(chatID, "That book is no longer in your library.")
		b.showList(ctx, chatID, userID, 0)
		return
	}
	if err != nil {
		b.logger.Error("Failed to open book",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("book_id", id.String()),
		)
		b.sendText(chatID, "Couldn't open that book. Please try again.")
		return
	}

	b.session(userID).SelectedBookID = book.ID
	b.showSelection(ctx, chatID, userID, 0)
}

// handleFavoriteCallback toggles a favorite and redraws the message the
// button belongs to, either a detail card or the category list
func (b *Bot) handleFavoriteCallback(ctx context.Context, query *tgbotapi.CallbackQuery, arg string, fromDetail bool) {
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	userID := query.From.ID

	id, err := uuid.Parse(arg)
	if err != nil {
		b.logger.Debug("Invalid book id in callback", zap.String("callback_data", query.Data))
		return
	}

	book, err := b.library.ToggleFavorite(ctx, id)
	if errors.Is(err, storage.ErrBookNotFound) {
		if fromDetail {
			b.session(userID).SelectedBookID = uuid.Nil
		}
		b.sendText(chatID, "That book is no longer in your library.")
		b.showList(ctx, chatID, userID, messageID)
		return
	}
	if err != nil {
		b.logger.Error("Failed to toggle favorite",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("book_id", id.String()),
		)
		b.sendText(chatID, "Couldn't update favorites. Please try again.")
		return
	}

	if fromDetail {
		// The card pressed becomes the selection, even if an older one
		b.session(userID).SelectedBookID = book.ID
		b.showSelection(ctx, chatID, userID, messageID)
		return
	}
	b.showList(ctx, chatID, userID, messageID)
}

// handleBackCallback closes the detail card and returns to the list
func (b *Bot) handleBackCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	b.session(userID).SelectedBookID = uuid.Nil
	b.showList(ctx, query.Message.Chat.ID, userID, query.Message.MessageID)
}

// showSelection draws the detail card of the user's selected book. With no
// selection, or when the selected book is gone, it clears the selection and
// falls back to the category list.
func (b *Bot) showSelection(ctx context.Context, chatID, userID int64, editMessageID int) {
	session := b.session(userID)
	if session.SelectedBookID == uuid.Nil {
		b.showList(ctx, chatID, userID, editMessageID)
		return
	}

	book, ok, err := b.library.Book(ctx, session.SelectedBookID)
	if err != nil {
		b.logger.Error("Failed to load selected book",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("book_id", session.SelectedBookID.String()),
		)
		b.sendText(chatID, "Couldn't load that book. Please try again.")
		return
	}
	if !ok {
		session.SelectedBookID = uuid.Nil
		b.showList(ctx, chatID, userID, editMessageID)
		return
	}

	text, keyboard := renderDetail(book)
	b.sendOrEdit(chatID, editMessageID, text, &keyboard)
}
