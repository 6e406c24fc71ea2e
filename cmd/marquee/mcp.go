package main

import (
	"github.com/spf13/cobra"

	"github.com/vadimtrunov/Marquee/internal/config"
	"github.com/vadimtrunov/Marquee/internal/genre"
	mcpserver "github.com/vadimtrunov/Marquee/internal/mcp"
)

// newMCPServeCmd returns the hidden "mcp-serve" subcommand.
// It exposes the catalog as MCP tools over stdin/stdout.
func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Start MCP server over stdio",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			logger := config.SetupLogger(cfg.App.LogLevel)

			deps := mcpserver.Deps{
				State:  newCatalogState(cfg, logger),
				Genres: genre.Default(),
			}

			srv := mcpserver.NewServer(deps, version, logger)
			return srv.ServeStdio(cmd.Context())
		},
	}
}
