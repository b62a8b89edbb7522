package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kolkov/spawk"
)

// commit and date are set by the release pipeline via -ldflags.
var (
	commit = "none"
	date   = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show spawk version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		name := color.New(color.FgCyan, color.Bold).Sprint("spawk")
		fmt.Printf("%s %s (commit %s, built %s)\n", name, spawk.Version, commit, date)
	},
}
