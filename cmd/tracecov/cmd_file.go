package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tracecov/internal/cover"
)

// fileCmd reconciles a single source file and prints an annotated listing.
var fileCmd = &cobra.Command{
	Use:   "file <source> [folder]",
	Short: "Reconcile one source file and print its annotated lines",
	Long: `Reconciles a single source file against the trace files found in the
given folder (the source's own directory when omitted) and prints every
line prefixed with its execution count, or "-" for lines that cannot be
executed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFile,
}

func runFile(cmd *cobra.Command, args []string) error {
	source := args[0]
	folder := filepath.Dir(source)
	if len(args) == 2 {
		folder = args[1]
	}

	fc, err := newReconciler().Reconcile(cmd.Context(), source, folder)
	if err != nil {
		return err
	}

	writeAnnotatedSource(cmd.OutOrStdout(), fc)
	s := fc.Summary()
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %d/%d lines executed (%.1f%%)\n",
		fc.Filename, s.Executed, s.Coverable, s.Percent)
	return nil
}

// writeAnnotatedSource prints the source with each line's count in a
// fixed-width gutter, mirroring the trace record layout.
func writeAnnotatedSource(w io.Writer, fc cover.FileCoverage) {
	sc := bufio.NewScanner(strings.NewReader(fc.Source))
	line := 0
	for sc.Scan() {
		line++
		marker := "-"
		if line <= len(fc.Coverage) {
			marker = fc.Coverage[line-1].String()
		}
		fmt.Fprintf(w, "%9s:%5d: %s\n", marker, line, sc.Text())
	}
}
