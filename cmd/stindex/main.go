package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jward/stindex"
	"github.com/jward/stindex/internal/config"
	"github.com/jward/stindex/internal/logging"
	"github.com/jward/stindex/internal/metrics"
	"github.com/jward/stindex/internal/store"
)

var (
	flagDB          string
	flagConfig      string
	flagVerbose     bool
	flagLogFormat   string
	flagFormat      string
	flagMetricsFile string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// Shared per-invocation state, set up by the root PersistentPreRunE.
var (
	logger  = zerolog.Nop()
	cfg     *config.Config
	runMets *metrics.Metrics
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "stindex",
	Short:         "Systematic theology outline and scripture index",
	Long:          "stindex imports a systematic theology export into a four-level outline, indexes its Bible citations and chapter cross-references, and answers queries against the resulting SQLite database.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		if err := validateLogFormat(flagLogFormat); err != nil {
			return err
		}
		logger = newLogger()
		loaded, err := loadConfig(logger)
		if err != nil {
			return err
		}
		cfg = loaded
		if flagMetricsFile != "" {
			runMets = metrics.New()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if runMets == nil {
			return nil
		}
		if err := runMets.WriteTextfile(flagMetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
	// No Run: prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: stindex.db in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "explicit config file, applied over user and project config")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format: console|json")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagMetricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(relinkCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(backupCmd)
}

// newLogger builds the stderr logger from --verbose and --log-format.
func newLogger() zerolog.Logger {
	level := "info"
	if flagVerbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:  level,
		Pretty: flagLogFormat == "console",
		Output: os.Stderr,
	})
}

// loadConfig loads layered configuration, honoring --config.
func loadConfig(l zerolog.Logger) (*config.Config, error) {
	var opts []config.LoaderOption
	if flagConfig != "" {
		opts = append(opts, config.WithExplicitFile(flagConfig))
	}
	c, err := config.NewLoader(logging.Component(l, "config"), opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return c, nil
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath() (string, error) {
	path := flagDB
	if path == "" {
		path = "stindex.db"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving database path %q: %w", path, err)
	}
	return abs, nil
}

// openEngine creates an Engine on the resolved database, creating its
// directory when needed.
func openEngine(opts ...stindex.Option) (*stindex.Engine, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	opts = append([]stindex.Option{
		stindex.WithLogger(logger),
		stindex.WithConfig(cfg),
		stindex.WithMetrics(runMets),
	}, opts...)
	e, err := stindex.New(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return e, nil
}

// openStore opens an existing database for read-only commands.
func openStore() (*store.Store, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: %s (run 'stindex import' first)", dbPath)
	}
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// validLogFormats lists accepted values for --log-format.
var validLogFormats = []string{"console", "json"}

func validateLogFormat(format string) error {
	for _, f := range validLogFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid log format %q: must be %s", format, strings.Join(validLogFormats, " or "))
}
