package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/radiolab"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of radiolab",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "radiolab version %s\n", strings.TrimSpace(radiolab.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
