package main

import (
	"context"

	"github.com/aretw0/radiolab/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP tool server",
	Long: `Starts the simulation tool server. It exposes GET /tools, POST /tools/call,
GET /health, GET /metrics and GET /openapi.json.

When launched by a radiolab client it serves on the socket handed over by
the client instead of binding the address itself.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Serve(ctx, commonOptions(cmd))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
