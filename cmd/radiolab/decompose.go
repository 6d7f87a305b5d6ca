package main

import (
	"strings"

	"github.com/aretw0/radiolab/internal/cli"
	"github.com/spf13/cobra"
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <task>",
	Short: "Classify a task and show the extracted parameters",
	Long:  `Runs only the rule-based decomposer. No model is called and no server is started.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Decompose(strings.Join(args, " "), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(decomposeCmd)
}
