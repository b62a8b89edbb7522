// spawk - stream processing awk
//
// Command-line front end for the spawk engine: grep-style filtering,
// awk-style field projection, and tail -F file following.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "spawk",
	Short:         "Line-oriented text processing",
	Long:          "spawk applies pattern, range and field rules to line-oriented text,\nfrom files, standard input, or a followed (tail -F) file.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(grepCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
