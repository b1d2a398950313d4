package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatwheel/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the chatwheel version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "chatwheel %s\n", version.Version)
	},
}
