package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tracecov/internal/cover"
	"tracecov/internal/store"
)

// reportCmd reconciles every source file under a folder and prints a
// per-file summary.
var reportCmd = &cobra.Command{
	Use:   "report [folder]",
	Short: "Reconcile a source tree and print per-file coverage",
	Long: `Walks the folder recursively, reconciles the trace files of every
recognized source file, and prints per-file coverable/executed counts with
a total. With a history database configured, the run is persisted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	folder := cfg.TraceFolder
	if len(args) == 1 {
		folder = args[0]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, err := newReconciler().ReconcileTree(ctx, folder)
	if err != nil {
		return err
	}

	writeSummaryTable(cmd.OutOrStdout(), results)

	if cfg.DatabasePath != "" {
		s, err := store.Open(cfg.DatabasePath, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		runID, err := s.SaveRun(folder, results)
		if err != nil {
			return err
		}
		logger.Info("run persisted",
			zap.String("run_id", runID),
			zap.String("database", cfg.DatabasePath))
		fmt.Fprintf(cmd.OutOrStdout(), "\nrun saved as %s\n", runID)
	}
	return nil
}

// writeSummaryTable prints one line per file plus a totals row.
func writeSummaryTable(w io.Writer, results []cover.FileCoverage) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tCOVERABLE\tEXECUTED\tPERCENT")

	var coverable, executed int
	for _, fc := range results {
		s := fc.Summary()
		coverable += s.Coverable
		executed += s.Executed
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", fc.Filename, s.Coverable, s.Executed, s.Percent)
	}

	total := 100.0
	if coverable > 0 {
		total = float64(executed) / float64(coverable) * 100
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%d\t%.1f%%\n", coverable, executed, total)
	tw.Flush()
}
