package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time via -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the minos version together with its build and runtime details.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(versionString())
	},
}

// versionString assembles the report printed by the version
// subcommand.
func versionString() string {
	lines := []string{
		fmt.Sprintf("Minos %s", Version),
		fmt.Sprintf("Git Commit: %s", GitCommit),
		fmt.Sprintf("Build Date: %s", BuildDate),
		fmt.Sprintf("Go Version: %s", runtime.Version()),
		fmt.Sprintf("OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH),
	}
	return strings.Join(lines, "\n")
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
