package main

import (
	"os"

	"github.com/spf13/cobra"

	"chatwheel/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "chatwheel",
	Short: "Twitch chat vote wheel controller",
	Long: `chatwheel turns a live Twitch chat into a weighted selection wheel:
messages cast votes, votes become wheel segments, and a spin picks a
segment and the chatter behind it.

Running chatwheel with no subcommand starts the interactive terminal UI.`,
	RunE: runWheel,
}

func main() {
	rootCmd.Version = version.Version
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
