package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields [FILE]",
	Short: "Split lines into fields and print a selection",
	Long: "Split each line of FILE (or standard input) into fields and print the\n" +
		"fields selected with -f, joined by the output separator. Fields are\n" +
		"numbered from 1, awk style.",
	Args: cobra.MaximumNArgs(1),
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().StringP("delimiter", "d", "", "input field separator (default: runs of whitespace)")
	fieldsCmd.Flags().StringP("fields", "f", "", "comma-separated 1-based field numbers (default: all)")
	fieldsCmd.Flags().StringP("output-delimiter", "O", " ", "separator between printed fields")
}

func runFields(cmd *cobra.Command, args []string) error {
	sep, _ := cmd.Flags().GetString("delimiter")
	outSep, _ := cmd.Flags().GetString("output-delimiter")
	list, _ := cmd.Flags().GetString("fields")

	selection, err := parseFieldList(list)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	e, cleanup, err := openEngine(cmd, args, 0, false, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	e.Split(sep, -1)

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
		out.WriteString(projectFields(line.Fields, selection, outSep))
		out.WriteByte('\n')
	}
}

// parseFieldList parses "1,3,2" into 1-based field numbers. An empty
// list selects all fields.
func parseFieldList(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	fields := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid field number %q (want 1-based integers)", part)
		}
		fields = append(fields, n)
	}
	return fields, nil
}

// projectFields joins the selected 1-based fields; absent fields print
// as empty. A nil selection takes every field in order.
func projectFields(fields []string, selection []int, sep string) string {
	if selection == nil {
		return strings.Join(trimEOL(fields), sep)
	}
	picked := make([]string, 0, len(selection))
	for _, n := range selection {
		if n <= len(fields) {
			picked = append(picked, strings.TrimRight(fields[n-1], "\n"))
		} else {
			picked = append(picked, "")
		}
	}
	return strings.Join(picked, sep)
}

// trimEOL strips the newline the raw last field may carry when an
// explicit delimiter is in use.
func trimEOL(fields []string) []string {
	if len(fields) == 0 {
		return fields
	}
	out := make([]string, len(fields))
	copy(out, fields)
	out[len(out)-1] = strings.TrimRight(out[len(out)-1], "\n")
	return out
}
