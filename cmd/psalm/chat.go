package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/psalmlegal/psalm"
	"github.com/psalmlegal/psalm/chat"
	"github.com/psalmlegal/psalm/tui"
	"github.com/spf13/cobra"
)

var (
	chatPreset       string
	chatJurisdiction string
	chatSession      string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive chat shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if chatJurisdiction != "" {
			if _, ok := psalm.LookupJurisdiction(chatJurisdiction); !ok {
				return fmt.Errorf("unknown jurisdiction %q", chatJurisdiction)
			}
		}

		switch {
		case chatSession != "":
			if err := a.store.SetCurrent(chatSession); err != nil {
				return err
			}
		case chatPreset != "":
			p, ok := psalm.LookupPreset(chatPreset)
			if !ok {
				return fmt.Errorf("unknown preset %q", chatPreset)
			}
			jur := chatJurisdiction
			if jur == "" {
				jur = "us"
			}
			p = p.WithJurisdiction(jur)
			a.store.CreateSession(&p)
		default:
			a.store.CreateSession(nil)
			if chatJurisdiction != "" {
				if err := a.store.SetJurisdiction(a.store.CurrentID(), chatJurisdiction); err != nil {
					return err
				}
			}
		}

		transport := a.transport(ctx)
		coord := chat.New(a.store, transport, a.logger)

		send := func(ctx context.Context, sessionID, content string, onDelta func(string)) error {
			return coord.Send(ctx, sessionID, content, nil, chat.WithDeltaHandler(onDelta))
		}

		model := tui.New(send, coord.Stop, a.store, psalm.DefaultTheme())
		if err := tui.Run(ctx, model); err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatPreset, "preset", "", "Start from a built-in preset (contract-review, legal-research, compliance-check)")
	chatCmd.Flags().StringVar(&chatJurisdiction, "jurisdiction", "", "Jurisdiction code (e.g. us, uk, eu)")
	chatCmd.Flags().StringVar(&chatSession, "session", "", "Resume a session by ID")
	rootCmd.AddCommand(chatCmd)
}
