package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tracecov/internal/cover"
	"tracecov/internal/watch"
)

// watchCmd keeps reconciling as trace files change.
var watchCmd = &cobra.Command{
	Use:   "watch [folder]",
	Short: "Re-reconcile whenever trace files change",
	Long: `Watches the folder (and subfolders) for trace-file changes and prints
an updated total after each debounced burst, until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	folder := cfg.TraceFolder
	if len(args) == 1 {
		folder = args[0]
	}
	if err := checkFolder(folder); err != nil {
		return err
	}

	debounce, err := cfg.DebounceDuration()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	handler := func(results []cover.FileCoverage, err error) {
		if err != nil {
			logger.Warn("reconciliation pass failed", zap.Error(err))
			fmt.Fprintf(out, "[%s] reconcile failed: %v\n", time.Now().Format("15:04:05"), err)
			return
		}
		var coverable, executed int
		for _, fc := range results {
			s := fc.Summary()
			coverable += s.Coverable
			executed += s.Executed
		}
		percent := 100.0
		if coverable > 0 {
			percent = float64(executed) / float64(coverable) * 100
		}
		fmt.Fprintf(out, "[%s] %d files, %d/%d lines executed (%.1f%%)\n",
			time.Now().Format("15:04:05"), len(results), executed, coverable, percent)
	}

	err = watch.New(newReconciler(), debounce, logger).Run(ctx, folder, handler)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
