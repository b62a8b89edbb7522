package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kolkov/spawk"
	"github.com/kolkov/spawk/follow"
)

var followCmd = &cobra.Command{
	Use:   "follow FILE",
	Short: "Print lines appended to a file, tail -F style",
	Long: "Print all lines of FILE, then keep watching and print new lines as\n" +
		"they are appended. Survives truncation, rotation and recreation of\n" +
		"the file. Stop with Ctrl-C.",
	Args: cobra.ExactArgs(1),
	RunE: runFollow,
}

func init() {
	followCmd.Flags().Duration("interval", 0, "poll interval (overrides config)")
}

func runFollow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		interval = cfg.Follow.Interval.Duration
	}

	f := follow.New(args[0], follow.WithInterval(interval))
	defer f.Close()
	closeOnSignal(f)

	e := spawk.NewLines(f)
	e.SetOutput(os.Stdout)
	e.Every(nil) // default handler: write the raw line to the sink
	return e.Run()
}
