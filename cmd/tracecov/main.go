package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tracecov/internal/config"
	"tracecov/internal/logging"
	"tracecov/internal/reconcile"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dbPath     string
	parallel   int

	// Loaded in PersistentPreRunE
	cfg    config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tracecov",
	Short: "tracecov - reconcile runtime coverage traces into per-file line coverage",
	Long: `tracecov ingests the per-line trace files written by runtime coverage
instrumentation (one fixed-width record per source line, one trace file per
process run), merges the runs for each source file, and corrects the result
against a static parse of the source so that executable lines the runtime
never reached read as "coverable but missed" rather than "not applicable".

The reconciled records can be printed, persisted to a local SQLite history,
or recomputed live as new trace files appear.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if parallel > 0 {
			cfg.Parallelism = parallel
		}
		if dbPath != "" {
			cfg.DatabasePath = dbPath
		}

		logger, err = logging.New(cfg.Logging.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tracecov.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite history database (overrides config)")
	rootCmd.PersistentFlags().IntVar(&parallel, "parallelism", 0, "Max concurrent reconciliations (overrides config)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fileCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
}

// newReconciler builds a reconciler from the loaded configuration.
func newReconciler() *reconcile.Reconciler {
	r := reconcile.New(logger)
	r.Parallelism = cfg.Parallelism
	return r
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
