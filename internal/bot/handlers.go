package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage",
				zap.Any("panic", r),
				zap.Int64("chat_id", message.Chat.ID),
			)
			b.sendText(message.Chat.ID, "An error occurred while processing your request. Please try again.")
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Check if user is in a conversation
	if state, ok := b.states[userID]; ok {
		if state.Step == -1 || message.IsCommand() {
			// Finished conversations are dropped; any command cancels a running one
			delete(b.states, userID)
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		b.sendText(message.Chat.ID, "Use /library to browse your books or /start to see available commands.")
		return
	}

	switch message.Command() {
	case "start", "help":
		b.handleStart(message)
	case "library":
		b.handleLibrary(ctx, message)
	case "recents":
		b.selectCategory(ctx, message.Chat.ID, userID, catalog.Recents, 0)
	case "favorites":
		b.selectCategory(ctx, message.Chat.ID, userID, catalog.Favorites, 0)
	case "all":
		b.selectCategory(ctx, message.Chat.ID, userID, catalog.All, 0)
	case "new_book":
		b.handleNewBookStart(message)
	case "shop":
		b.handleShop(message)
	default:
		b.sendText(message.Chat.ID, "Unknown command. Use /start to see available commands.")
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery",
				zap.Any("panic", r),
				zap.String("callback_data", query.Data),
			)
		}
	}()

	// Answer the callback query to remove loading state
	b.answerCallback(query.ID, "")

	if query.Message == nil {
		return
	}

	ctx := context.Background()
	action, arg := parseCallbackData(query.Data)

	switch action {
	case callbackCategory:
		b.handleCategoryCallback(ctx, query, arg)
	case callbackBook:
		b.handleBookCallback(ctx, query, arg)
	case callbackFavorite:
		b.handleFavoriteCallback(ctx, query, arg, false)
	case callbackDetailFav:
		b.handleFavoriteCallback(ctx, query, arg, true)
	case callbackBack:
		b.handleBackCallback(ctx, query)
	default:
		b.logger.Debug("Ignoring unknown callback", zap.String("callback_data", query.Data))
	}
}
