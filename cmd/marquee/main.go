package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "marquee",
		Short: "Browse top rated movies from TMDb",
		Long: "Marquee browses The Movie Database: the top rated catalog, per-movie details\n" +
			"and credits, from the terminal, a Telegram bot or an MCP client.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/marquee.yaml", "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newHomeCmd(),
		newDetailCmd(),
		newBrowseCmd(),
		newBotCmd(),
		newMCPServeCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Marquee v%s\n", version)
		},
	}
}
