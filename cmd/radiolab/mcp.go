package main

import (
	"context"
	"log"
	"os"

	"github.com/aretw0/radiolab/internal/cli"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the simulation tools as an MCP server.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP at --addr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")

		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.ServeMCP(ctx, commonOptions(cmd), transport, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", cli.TransportStdio, "Transport protocol to use: 'stdio' or 'sse'")
}
