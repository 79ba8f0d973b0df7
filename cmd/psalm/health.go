package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		h, err := a.transport(ctx).Health(ctx)
		if err != nil {
			return fmt.Errorf("health check: %w", err)
		}
		fmt.Printf("ok: %v\n", h.OK)
		fmt.Print("capabilities:")
		for _, c := range h.Capabilities {
			fmt.Printf(" %s", c)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
