package main

import (
	"context"

	"github.com/psalmlegal/psalm/devserver"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local mock backend",
	Long: `Serve an OpenAI-compatible mock backend for development. Point the
client at it with:

  psalm settings set --base-url http://localhost:8787 --api-key dev`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		srv := devserver.New(a.logger)
		return srv.ListenAndServe(serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8787", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
