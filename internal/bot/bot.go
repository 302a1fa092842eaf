package bot

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"studystreak/internal/tracker"
)

// Bot wraps the Telegram API together with the tracker and the per-chat
// account links. Telegram chats authenticate once with /link and act as that
// account afterwards; links live in memory only.
type Bot struct {
	API     *tgbotapi.BotAPI
	Tracker *tracker.Tracker
	Log     *zap.Logger

	sessions   map[int64]string // chat ID -> linked username
	sessionsMu sync.RWMutex
}

func New(token string, tr *tracker.Tracker, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	return &Bot{
		API:      api,
		Tracker:  tr,
		Log:      log,
		sessions: make(map[int64]string),
	}, nil
}

// Link binds chatID to username after a successful login.
func (b *Bot) Link(chatID int64, username string) {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	b.sessions[chatID] = username
}

// LinkedUser returns the username bound to chatID, if any.
func (b *Bot) LinkedUser(chatID int64) (string, bool) {
	b.sessionsMu.RLock()
	defer b.sessionsMu.RUnlock()
	u, ok := b.sessions[chatID]
	return u, ok
}

func (b *Bot) Unlink(chatID int64) {
	b.sessionsMu.Lock()
	defer b.sessionsMu.Unlock()
	delete(b.sessions, chatID)
}

func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.API.Send(msg); err != nil {
		b.Log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	if _, err := b.API.Send(msg); err != nil {
		b.Log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
