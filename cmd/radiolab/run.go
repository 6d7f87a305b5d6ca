package main

import (
	"context"
	"strings"

	"github.com/aretw0/radiolab/internal/cli"
	"github.com/aretw0/radiolab/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Plan and run a simulation task",
	Long: `Starts the tool server if needed, asks the configured models for a
tool-call plan and executes it. The report is rendered as markdown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noDecompose, _ := cmd.Flags().GetBool("no-decompose")
		stopOnError, _ := cmd.Flags().GetBool("stop-on-error")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		graphMode, _ := cmd.Flags().GetBool("graph")
		jsonMode, _ := cmd.Flags().GetBool("json")
		models, _ := cmd.Flags().GetStringSlice("model")
		quiet, _ := cmd.Flags().GetBool("quiet")

		out := cmd.OutOrStdout()
		if !quiet && !jsonMode && tui.IsTerminal(out) {
			tui.PrintBanner(out)
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()
		return cli.Run(ctx, cli.RunOptions{
			Options:     commonOptions(cmd),
			Task:        strings.Join(args, " "),
			NoDecompose: noDecompose,
			StopOnError: stopOnError,
			DryRun:      dryRun,
			Graph:       graphMode,
			JSON:        jsonMode,
			Models:      models,
		}, out)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-decompose", false, "Do not add decomposer guidance to the prompt")
	runCmd.Flags().Bool("stop-on-error", false, "Skip the remaining calls after the first failure")
	runCmd.Flags().Bool("dry-run", false, "Plan only, do not execute the calls")
	runCmd.Flags().Bool("graph", false, "Append a Mermaid diagram of the plan")
	runCmd.Flags().Bool("json", false, "Print the plan and report as JSON")
	runCmd.Flags().StringSlice("model", nil, "Candidate models as provider:model, in order (overrides config)")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}
