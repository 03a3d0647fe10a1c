package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ascentd/ascent/internal/logging"
)

var (
	logLevel string
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ascent",
	Short: "Anytime black-box search from the command line",
	Long: `Ascent runs an anytime black-box search: candidates are drawn from a
pluggable generator, scored under optional wall-clock and memory limits, and
the best solution seen so far is tracked until the budget runs out.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logging.ParseLevel(logLevel), os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
