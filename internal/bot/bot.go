// Package bot routes chat updates to the conversation state machine and the
// store. All persistence and outbound messaging happens here; the machine
// itself stays pure.
package bot

import (
	"encoding/json"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/okunev/financetracker/internal/charts"
	"github.com/okunev/financetracker/internal/flow"
	"github.com/okunev/financetracker/internal/log"
	"github.com/okunev/financetracker/internal/repository"
	"github.com/okunev/financetracker/internal/vision"
)

// Bounded lookbacks and row counts for the read commands.
const (
	recentDays    = 7
	recentLimit   = 10
	summaryDays   = 7
	exportDays    = 365
	exportLimit   = 1000
	maxImageBytes = 10 << 20
)

type Bot struct {
	api        *tgbotapi.BotAPI
	repo       repository.Repository
	extractor  *vision.Client // nil disables photo intake
	charts     *charts.Generator
	flows      *flow.Store
	logger     *log.Logger
	currency   string
	httpClient *http.Client
}

func New(token string, repo repository.Repository, extractor *vision.Client, logger *log.Logger, currency string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:        api,
		repo:       repo,
		extractor:  extractor,
		charts:     charts.NewGenerator(),
		flows:      flow.NewStore(),
		logger:     logger,
		currency:   currency,
		httpClient: &http.Client{},
	}, nil
}

// Start runs the long-polling loop until the updates channel closes.
func (b *Bot) Start() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	b.logger.Info("bot started", "username", b.api.Self.UserName)

	for update := range b.api.GetUpdatesChan(u) {
		b.handleUpdate(update)
	}
	return nil
}

// HandleWebhook processes a single update delivered over a webhook.
func (b *Bot) HandleWebhook(body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode webhook update: %w", err)
	}
	b.handleUpdate(update)
	return nil
}

// handleUpdate dispatches one inbound event. A failure in one conversation
// is logged and never propagated; other users' flows are unaffected.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message == nil:
		return
	case update.Message.IsCommand():
		b.handleCommand(update.Message)
	case len(update.Message.Photo) > 0:
		b.handlePhoto(update.Message)
	case update.Message.Text != "":
		b.handleText(update.Message)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("send failed", "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	b.send(msg)
}

func conversationKey(userID, chatID int64) flow.Key {
	key := flow.Key{UserID: userID}
	// Group chats get their own flows; direct chats collapse onto the user.
	if chatID != userID {
		key.ChatID = chatID
	}
	return key
}
