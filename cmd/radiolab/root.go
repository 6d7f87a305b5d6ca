package main

import (
	"fmt"
	"os"

	"github.com/aretw0/radiolab/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "radiolab",
	Short: "radiolab turns wireless experiment descriptions into simulation runs",
	Long: `radiolab classifies a free-text description of a wireless-communications
experiment, asks a language model for a tool-call plan and runs the plan
against a local simulation tool server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default radiolab.yaml if present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().String("addr", "", "Tool server address (overrides config)")
}

// commonOptions reads the persistent flags.
func commonOptions(cmd *cobra.Command) cli.Options {
	configPath, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")
	addr, _ := cmd.Flags().GetString("addr")
	return cli.Options{ConfigPath: configPath, Debug: debug, Addr: addr}
}
