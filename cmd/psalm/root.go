package main

import (
	"fmt"
	"os"

	"github.com/psalmlegal/psalm/config"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "psalm",
	Short: "Terminal client for the Psalm legal assistant",
	Long: `Psalm is a terminal client for an AI legal assistant.

Chat sessions persist locally (file, SQLite or Redis storage). The chat
backend is any OpenAI-compatible endpoint; configure it with
"psalm settings set". Without configuration an offline demo transport
streams canned responses.

Quick start:
  psalm chat                         # open the chat shell
  psalm sessions list                # list stored sessions
  psalm settings set --base-url ...  # point at a real backend
  psalm serve                        # run a local mock backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "psalm: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to config file")
}
