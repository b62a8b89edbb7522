package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kolkov/spawk"
	"github.com/kolkov/spawk/follow"
)

var grepCmd = &cobra.Command{
	Use:   "grep PATTERN [FILE]",
	Short: "Print lines matching any of the given patterns",
	Long: "Print lines of FILE (or standard input) that match PATTERN or any\n" +
		"pattern added with -e. With --follow the file is monitored tail -F\n" +
		"style and new matching lines are printed as they are appended.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runGrep,
}

func init() {
	grepCmd.Flags().StringArrayP("regexp", "e", nil, "additional pattern (repeatable)")
	grepCmd.Flags().BoolP("line-number", "n", false, "prefix each line with its line number")
	grepCmd.Flags().BoolP("follow", "F", false, "follow the file for appended lines")
	grepCmd.Flags().Duration("interval", 0, "poll interval in follow mode (overrides config)")
}

var matchColor = color.New(color.FgRed, color.Bold)

func runGrep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	colorMode, _ := cmd.Flags().GetString("color")
	if err := applyColorMode(colorMode, cfg); err != nil {
		return err
	}

	extra, _ := cmd.Flags().GetStringArray("regexp")
	exprs := append([]string{args[0]}, extra...)

	pats := make([]*spawk.Pattern, 0, len(exprs))
	for _, expr := range exprs {
		p, err := spawk.CompilePattern(expr)
		if err != nil {
			return err
		}
		pats = append(pats, p)
	}

	numbered, _ := cmd.Flags().GetBool("line-number")
	followMode, _ := cmd.Flags().GetBool("follow")

	e, cleanup, err := openEngine(cmd, args, 1, followMode, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := e.Grep(exprs...); err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for {
		line, err := e.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if numbered {
			fmt.Fprintf(out, "%d:", line.Number)
		}
		out.WriteString(highlight(pats, line.Text))
		if followMode {
			// No buffering across poll delays.
			if err := out.Flush(); err != nil {
				return err
			}
		}
	}
}

// highlight wraps the leftmost pattern match in the match color. With
// color disabled the text comes back unchanged.
func highlight(pats []*spawk.Pattern, text string) string {
	if color.NoColor {
		return text
	}
	var best *spawk.Match
	for _, p := range pats {
		m := p.Search(text)
		if m == nil || m.Start() == m.End() {
			continue
		}
		if best == nil || m.Start() < best.Start() {
			best = m
		}
	}
	if best == nil {
		return text
	}
	return text[:best.Start()] + matchColor.Sprint(best.Text()) + text[best.End():]
}

// openEngine builds an engine over the optional file argument at
// position fileArg, standard input when absent, or a follower in
// follow mode. The returned cleanup closes whatever was opened.
func openEngine(cmd *cobra.Command, args []string, fileArg int, followMode bool, cfg cliConfig) (*spawk.Engine, func(), error) {
	if followMode {
		if len(args) <= fileArg {
			return nil, nil, fmt.Errorf("--follow requires a file argument")
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = cfg.Follow.Interval.Duration
		}
		f := follow.New(args[fileArg], follow.WithInterval(interval))
		closeOnSignal(f)
		return spawk.NewLines(f), func() { f.Close() }, nil
	}
	if len(args) <= fileArg {
		return spawk.New(os.Stdin), func() {}, nil
	}
	file, err := os.Open(args[fileArg])
	if err != nil {
		return nil, nil, err
	}
	return spawk.New(file), func() { file.Close() }, nil
}

// closeOnSignal stops a follower on SIGINT/SIGTERM so the pull loop
// terminates cleanly with EOF.
func closeOnSignal(f *follow.Follower) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		f.Close()
	}()
}
