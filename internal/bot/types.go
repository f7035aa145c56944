package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"studyspace/internal/catalog"
	"studyspace/internal/library"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api           *tgbotapi.BotAPI
	token         string
	library       *library.Service
	allowedUsers  map[int64]bool
	storefrontURL string

	states   map[int64]*ConversationState
	sessions map[int64]*Session
	statesMu sync.Mutex

	logger *zap.Logger
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]string
}

// Session is the per-user browsing state: the category picked in the
// category menu and the book whose detail card is open
type Session struct {
	Category       catalog.Category
	SelectedBookID uuid.UUID
}
