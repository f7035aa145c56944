package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
	"studyspace/internal/library"
)

// NewBot creates a new Telegram bot
func NewBot(token string, lib *library.Service, allowedUserIDs []int64, storefrontURL string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(lib, allowedUserIDs, storefrontURL, logger)
	b.api = api
	b.token = token
	return b, nil
}

// newBot builds a bot without a Telegram connection; messages are dropped
func newBot(lib *library.Service, allowedUserIDs []int64, storefrontURL string, logger *zap.Logger) *Bot {
	allowedUsers := make(map[int64]bool)
	for _, id := range allowedUserIDs {
		allowedUsers[id] = true
	}

	return &Bot{
		library:       lib,
		allowedUsers:  allowedUsers,
		storefrontURL: storefrontURL,
		states:        make(map[int64]*ConversationState),
		sessions:      make(map[int64]*Session),
		logger:        logger,
	}
}

// session returns the browsing state of a user, creating it on first use.
// Callers must hold statesMu.
func (b *Bot) session(userID int64) *Session {
	s, ok := b.sessions[userID]
	if !ok {
		s = &Session{Category: catalog.All}
		b.sessions[userID] = s
	}
	return s
}
