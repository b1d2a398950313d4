package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"chatwheel/internal/config"
	"chatwheel/internal/irc"
	"chatwheel/internal/ui"
)

type runOptions struct {
	ConfigPath   string
	TopK         int
	VoteDuration time.Duration
	Tick         time.Duration
	SegmentsFile string
	LogFile      string
	ViewSplit    int
	AltScreen    bool
}

var runOpts = runOptions{
	ConfigPath:   "chatwheel.toml",
	TopK:         10,
	VoteDuration: 2 * time.Minute,
	Tick:         16 * time.Millisecond,
	SegmentsFile: "segments.txt",
	LogFile:      "chatwheel.log",
	ViewSplit:    50,
	AltScreen:    true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive vote wheel UI",
	RunE:  runWheel,
}

func init() {
	// The root command doubles as `run`; both get the same flag set.
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&runOpts.ConfigPath, "config", runOpts.ConfigPath, "Gateway credentials file (created with placeholders when missing)")
		c.Flags().IntVar(&runOpts.TopK, "top-k", runOpts.TopK, "Number of top phrases on the wheel")
		c.Flags().DurationVar(&runOpts.VoteDuration, "vote-duration", runOpts.VoteDuration, "Length of a voting window")
		c.Flags().DurationVar(&runOpts.Tick, "tick", runOpts.Tick, "Spin/consumer tick period")
		c.Flags().StringVar(&runOpts.SegmentsFile, "segments-file", runOpts.SegmentsFile, "Export/import target for segment state")
		c.Flags().StringVar(&runOpts.LogFile, "log-file", runOpts.LogFile, "Structured log output file")
		c.Flags().IntVar(&runOpts.ViewSplit, "view-split", runOpts.ViewSplit, "Split the view at this % of the total screen width [20,80]")
		c.Flags().BoolVar(&runOpts.AltScreen, "alt-screen", runOpts.AltScreen, "Use the terminal alternate screen buffer")
	}
}

func validateAndNormalizeOptions(o *runOptions) error {
	if o.TopK < 1 {
		return fmt.Errorf("--top-k must be >= 1")
	}
	if o.VoteDuration <= 0 {
		return fmt.Errorf("--vote-duration must be > 0")
	}
	if o.Tick <= 0 {
		return fmt.Errorf("--tick must be > 0")
	}
	if o.SegmentsFile == "" {
		return fmt.Errorf("--segments-file must not be empty")
	}
	o.ViewSplit = max(20, min(80, o.ViewSplit))
	return nil
}

func runWheel(cmd *cobra.Command, _ []string) error {
	if err := validateAndNormalizeOptions(&runOpts); err != nil {
		return err
	}
	if !term.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("chatwheel needs a terminal to run")
	}

	logOut, err := os.OpenFile(runOpts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logOut.Close()
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	creds, created, err := config.Load(runOpts.ConfigPath)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"Created %s with placeholder values; fill in your credentials to connect.\n",
			runOpts.ConfigPath)
	}

	m := ui.New(ui.Options{
		TopK:         runOpts.TopK,
		VoteDuration: runOpts.VoteDuration,
		TickPeriod:   runOpts.Tick,
		SegmentsFile: runOpts.SegmentsFile,
		ConfigPath:   runOpts.ConfigPath,
		IRCAddr:      irc.DefaultAddr,
		ViewSplit:    runOpts.ViewSplit,
	}, creds, logger, nil)

	opts := []tui.ProgramOption{tui.WithInputTTY()}
	if runOpts.AltScreen {
		opts = append(opts, tui.WithAltScreen())
	}
	if _, err := tui.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
