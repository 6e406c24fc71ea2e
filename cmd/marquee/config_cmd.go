package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/vadimtrunov/Marquee/internal/config"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd(), newConfigShowCmd())
	return cmd
}

// newConfigValidateCmd returns the "config validate" subcommand that checks config file validity.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("✓ Configuration is valid"))
			return nil
		},
	}
}

// newConfigShowCmd prints the effective configuration with secrets masked.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return writeMaskedConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func writeMaskedConfig(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	masked.TMDb.APIKey = maskSecret(cfg.TMDb.APIKey)
	masked.TMDb.BaseURL = sanitizeURL(cfg.TMDb.BaseURL)
	if cfg.Telegram != nil {
		tg := *cfg.Telegram
		tg.BotToken = maskSecret(tg.BotToken)
		masked.Telegram = &tg
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return enc.Close()
}

// maskSecret keeps the last four characters of s.
func maskSecret(s string) string {
	const visible = 4
	if len(s) <= visible {
		return "****"
	}
	return "****" + s[len(s)-visible:]
}
