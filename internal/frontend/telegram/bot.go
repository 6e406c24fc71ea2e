package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/genre"
)

// StateFactory creates a new catalog State for each user session.
type StateFactory func() *catalog.State

// sender is the subset of the Bot API used to reply.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram frontend for Marquee.
type Bot struct {
	bot          *tgbotapi.BotAPI
	api          sender
	sessions     *sessionManager
	stateFactory StateFactory
	genres       *genre.Table
	logger       *slog.Logger
}

// New creates a new Telegram Bot.
func New(token string, allowedUserIDs []int64, factory StateFactory, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b := newBot(api, allowedUserIDs, factory, logger)
	b.bot = api
	return b, nil
}

func newBot(api sender, allowedUserIDs []int64, factory StateFactory, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:          api,
		sessions:     newSessionManager(allowedUserIDs),
		stateFactory: factory,
		genres:       genre.Default(),
		logger:       logger,
	}
}

// Name returns the frontend name.
func (b *Bot) Name() string { return "telegram" }

// Start starts the long-polling loop. It blocks until ctx is canceled.
func (b *Bot) Start(ctx context.Context) error {
	if b.bot == nil {
		return fmt.Errorf("telegram bot not connected")
	}
	b.logger.Info("telegram bot started",
		slog.String("username", b.bot.Self.UserName),
	)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			b.logger.Info("telegram bot stopped")
			return nil

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate dispatches an incoming Telegram update.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}
