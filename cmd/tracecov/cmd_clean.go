package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tracecov/internal/clean"
)

var cleanSourceName string

// cleanCmd deletes stale trace files.
var cleanCmd = &cobra.Command{
	Use:   "clean [folder]",
	Short: "Delete trace files",
	Long: `Deletes trace files under the folder, recursing into subfolders.
With --source, only the trace files belonging to that source file are
removed, and only in the folder itself.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanSourceName, "source", "", "Only remove traces of this source file")
}

func runClean(cmd *cobra.Command, args []string) error {
	folder := cfg.TraceFolder
	if len(args) == 1 {
		folder = args[0]
	}
	if err := checkFolder(folder); err != nil {
		return err
	}

	cleaner := clean.New(logger)

	var removed int
	var err error
	if cleanSourceName != "" {
		removed, err = cleaner.CleanSource(folder, filepath.Base(cleanSourceName))
	} else {
		removed, err = cleaner.CleanTree(folder)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "removed %d trace file(s)\n", removed)
	return nil
}

// ensure the folder argument is usable before walking it
func checkFolder(folder string) error {
	info, err := os.Stat(folder)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", folder)
	}
	return nil
}
