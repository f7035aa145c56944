package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"studyspace/internal/library"
	"studyspace/internal/models"
)

// skipAnswer skips an optional conversation step
const skipAnswer = "-"

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	userID := message.From.ID

	switch state.Command {
	case "new_book":
		b.handleNewBookConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == -1 {
		delete(b.states, userID)
	}
}

// handleNewBookConversation handles the new book multi-step process
func (b *Bot) handleNewBookConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for title
		title := strings.TrimSpace(message.Text)
		if title == "" {
			b.sendText(message.Chat.ID, "The title can't be empty. Please enter the book title:")
			return
		}

		state.Data["title"] = title
		state.Step = 2
		b.sendText(message.Chat.ID, fmt.Sprintf("Who wrote %q? Send %s to skip.", title, skipAnswer))

	case 2: // Waiting for author
		author := strings.TrimSpace(message.Text)
		if author == skipAnswer {
			author = ""
		}

		book, err := b.library.AddBook(ctx, models.NewBook{
			Title:  state.Data["title"],
			Author: author,
		})
		switch {
		case errors.Is(err, library.ErrTitleRequired):
			b.sendText(message.Chat.ID, "The title can't be empty. Use /new_book to start over.")
		case err != nil:
			b.logger.Error("Failed to add book",
				zap.Error(err),
				zap.Int64("user_id", message.From.ID),
				zap.String("title", state.Data["title"]),
			)
			b.sendText(message.Chat.ID, fmt.Sprintf("Error adding book: %v", err))
		default:
			b.sendText(message.Chat.ID, fmt.Sprintf("✅ Added to your library!\n\n📖 %s", bookLine(book)))
		}

		state.Step = -1 // Mark conversation as complete
	}
}
