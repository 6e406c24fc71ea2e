package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/Marquee/internal/catalog"
	"github.com/vadimtrunov/Marquee/internal/config"
	"github.com/vadimtrunov/Marquee/internal/genre"
	"github.com/vadimtrunov/Marquee/internal/presenter"
)

func newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the top 10 rated movies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := config.SetupLogger(cfg.App.LogLevel)
			state := newCatalogState(cfg, logger)

			ctx, cancel := signalContext()
			defer cancel()

			cards, err := loadHome(ctx, state, genre.Default())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderHome(cards))
			return nil
		},
	}
}

// loadHome fetches the catalog and returns the home screen cards.
func loadHome(ctx context.Context, state *catalog.State, genres *genre.Table) ([]presenter.Card, error) {
	if err := state.LoadList(ctx); err != nil {
		return nil, fmt.Errorf("load movie list: %w", err)
	}
	return presenter.BuildCards(state.Top(homeSize), state.PosterBaseURL(), genres), nil
}
