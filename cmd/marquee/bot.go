package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/config"
	"github.com/vadimtrunov/Marquee/internal/frontend/telegram"
)

// newBotCmd returns the "bot" subcommand for running the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start the Marquee Telegram bot. Each chat user browses with their own selection.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

func runBot() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Telegram == nil {
		return errors.New(
			"telegram configuration is required: set telegram.bot_token in config or MARQUEE_TELEGRAM_BOT_TOKEN env var",
		)
	}

	logger := config.SetupLogger(cfg.App.LogLevel)

	bot, err := initTelegramBot(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("telegram bot starting")
	return bot.Start(ctx)
}

// initTelegramBot creates a bot whose sessions each own a catalog state.
func initTelegramBot(cfg *config.Config, logger *slog.Logger) (*telegram.Bot, error) {
	client := newTMDbClient(cfg, logger)
	factory := func() *catalog.State {
		return newCatalogStateWith(client, cfg, logger)
	}

	return telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.AllowedUserIDs,
		factory,
		logger,
	)
}
