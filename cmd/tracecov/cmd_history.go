package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tracecov/internal/store"
)

var historyLimit int

// historyCmd lists persisted runs, or the files of one run.
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show persisted reconciliation runs",
	Long: `Without arguments, lists the most recent runs stored in the history
database. With a run ID, prints that run's per-file records.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Max runs to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.DatabasePath == "" {
		return fmt.Errorf("no history database configured (set database_path or --db)")
	}

	s, err := store.Open(cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	defer tw.Flush()

	if len(args) == 1 {
		records, err := s.RunFiles(args[0])
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no such run: %s", args[0])
		}
		fmt.Fprintln(tw, "FILE\tCOVERABLE\tEXECUTED\tPERCENT")
		for _, rec := range records {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", rec.Filename, rec.Coverable, rec.Executed, rec.Percent)
		}
		return nil
	}

	runs, err := s.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "RUN\tDATE\tFOLDER\tFILES\tPERCENT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f%%\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Folder, r.Files, r.Percent)
	}
	return nil
}
