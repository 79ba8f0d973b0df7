package main

import (
	"context"
	"fmt"
	"time"

	"github.com/psalmlegal/psalm"
	"github.com/spf13/cobra"
)

var (
	setBaseURL     string
	setAPIKey      string
	setModel       string
	setTemperature float64
	setMaxTokens   int
	setTimeout     time.Duration
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Configure the chat backend",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		s := a.settings.Load(ctx)
		fmt.Printf("base-url:    %s\n", valueOr(s.BaseURL, "(not set)"))
		fmt.Printf("api-key:     %s\n", maskKey(s.APIKey))
		fmt.Printf("model:       %s\n", s.Model)
		fmt.Printf("temperature: %g\n", s.Temperature)
		fmt.Printf("max-tokens:  %d\n", s.MaxTokens)
		fmt.Printf("timeout:     %s\n", s.Timeout)
		fmt.Printf("configured:  %v\n", s.Configured())
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings (unset flags keep their stored value)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		s := a.settings.Load(ctx)
		if cmd.Flags().Changed("base-url") {
			s.BaseURL = setBaseURL
		}
		if cmd.Flags().Changed("api-key") {
			s.APIKey = setAPIKey
		}
		if cmd.Flags().Changed("model") {
			s.Model = setModel
		}
		if cmd.Flags().Changed("temperature") {
			s.Temperature = setTemperature
		}
		if cmd.Flags().Changed("max-tokens") {
			s.MaxTokens = setMaxTokens
		}
		if cmd.Flags().Changed("timeout") {
			s.Timeout = setTimeout
		}
		return a.settings.Save(ctx, s)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return a.settings.Reset(ctx)
	},
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	d := psalm.DefaultSettings()
	settingsSetCmd.Flags().StringVar(&setBaseURL, "base-url", "", "API endpoint base URL")
	settingsSetCmd.Flags().StringVar(&setAPIKey, "api-key", "", "API key")
	settingsSetCmd.Flags().StringVar(&setModel, "model", d.Model, "Model ID")
	settingsSetCmd.Flags().Float64Var(&setTemperature, "temperature", d.Temperature, "Sampling temperature")
	settingsSetCmd.Flags().IntVar(&setMaxTokens, "max-tokens", d.MaxTokens, "Max completion tokens")
	settingsSetCmd.Flags().DurationVar(&setTimeout, "timeout", d.Timeout, "Request timeout")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}
