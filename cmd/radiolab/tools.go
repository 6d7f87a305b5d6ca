package main

import (
	"context"

	"github.com/aretw0/radiolab/internal/cli"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the simulation tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, _ := cmd.Flags().GetBool("remote")
		jsonMode, _ := cmd.Flags().GetBool("json")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Tools(ctx, cli.ToolsOptions{
			Options: commonOptions(cmd),
			Remote:  remote,
			JSON:    jsonMode,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)

	toolsCmd.Flags().Bool("remote", false, "Ask the tool server (starting one if needed) instead of the built-in registry")
	toolsCmd.Flags().Bool("json", false, "Print the catalog as JSON")
}
