package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/config"
	"github.com/vadimtrunov/Marquee/internal/httpclient"
	"github.com/vadimtrunov/Marquee/internal/metadata/tmdb"
)

// Lipgloss styles used across commands.
var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleInfo    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // blue
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
	styleRating  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true) // cyan bold

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5")).
			MarginBottom(1)
)

// loadConfig loads and validates the configuration file.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// newTMDbClient builds the TMDb client from configuration.
func newTMDbClient(cfg *config.Config, logger *slog.Logger) *tmdb.Client {
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTP.Timeout
	httpCfg.MaxRetries = cfg.HTTP.MaxRetries
	httpCfg.RequestsPerSecond = cfg.HTTP.RequestsPerSecond

	logger.Debug("TMDb client initialized", slog.String("url", sanitizeURL(cfg.TMDb.BaseURL)))
	return tmdb.New(tmdb.Config{
		APIKey:  cfg.TMDb.APIKey,
		BaseURL: cfg.TMDb.BaseURL,
		HTTP:    httpCfg,
	}, logger)
}

// newCatalogState creates the session's catalog state.
func newCatalogState(cfg *config.Config, logger *slog.Logger) *catalog.State {
	return newCatalogStateWith(newTMDbClient(cfg, logger), cfg, logger)
}

func newCatalogStateWith(client catalog.Fetcher, cfg *config.Config, logger *slog.Logger) *catalog.State {
	return catalog.New(client, catalog.Options{
		APIKey:        cfg.TMDb.APIKey,
		PosterBaseURL: cfg.TMDb.ImageBaseURL,
		Logger:        logger,
	})
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// sanitizeURL strips credentials, query params, and fragment from a URL for safe logging.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return "<redacted>"
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
