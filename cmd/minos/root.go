package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "minos",
	Short: "Minos - contract review backend",
	Long: `Minos is a contract review backend that confirms review rules against
contracts using two judge backends: a streaming semantic judge for
free-form clause analysis and a deterministic rule engine for exact
checks.

Each review batch is classified rule by rule, dispatched to both
judges concurrently, and streamed back to the caller in the original
rule order. Results are persisted for later retrieval and feedback.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
