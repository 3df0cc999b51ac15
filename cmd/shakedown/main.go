// SPDX-License-Identifier: MIT

// Package main implements the shakedown CLI: given a base URL and a set
// of declarative test targets, it floods the server with randomized
// requests and durably records every 5xx or transport-level finding.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/shakedown/internal/config"
	"github.com/ManuGH/shakedown/internal/history"
	xglog "github.com/ManuGH/shakedown/internal/log"
	"github.com/ManuGH/shakedown/internal/metrics"
	"github.com/ManuGH/shakedown/internal/pipeline"
	"github.com/ManuGH/shakedown/internal/record"
	"github.com/ManuGH/shakedown/internal/telemetry"
	"github.com/ManuGH/shakedown/internal/version"
)

// Config holds command-line configuration.
type Config struct {
	BaseURL    string
	ConfigPath string

	Iterations  int
	Concurrency int
	OutDir      string
	Seed        int64
	Timeout     time.Duration

	LogLevel      string
	MetricsAddr   string
	HistoryPath   string
	TraceExporter string
	TraceEndpoint string

	ShowVersion bool
}

func parseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("shakedown", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shakedown [flags] <base-url> <config-path>\n\n")
		fmt.Fprintf(fs.Output(), "Test an HTTP server for robustness: sample randomized requests per\n")
		fmt.Fprintf(fs.Output(), "configured target and record every server-caused failure.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	var cfg Config
	fs.IntVar(&cfg.Iterations, "n", 100, "number of trials per target")
	fs.IntVar(&cfg.Concurrency, "c", 8, "maximum in-flight trials per target")
	fs.StringVar(&cfg.OutDir, "outdir", "output", "output directory for the failure log and body captures")
	fs.Int64Var(&cfg.Seed, "seed", 0, "sampling seed (0 means derive from time)")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "optional address for the Prometheus /metrics listener")
	fs.StringVar(&cfg.HistoryPath, "history", "", "optional SQLite database indexing past runs")
	fs.StringVar(&cfg.TraceExporter, "trace-exporter", "", "optional OTLP trace exporter (grpc or http)")
	fs.StringVar(&cfg.TraceEndpoint, "trace-endpoint", "localhost:4317", "OTLP collector endpoint")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}
	rest := fs.Args()
	if len(rest) != 2 {
		fs.Usage()
		return cfg, fmt.Errorf("expected exactly 2 arguments (base URL and config path), got %d", len(rest))
	}
	cfg.BaseURL = rest[0]
	cfg.ConfigPath = rest[1]

	if cfg.Iterations <= 0 {
		return cfg, fmt.Errorf("-n must be positive (got %d)", cfg.Iterations)
	}
	if cfg.Concurrency <= 0 {
		return cfg, fmt.Errorf("-c must be positive (got %d)", cfg.Concurrency)
	}
	return cfg, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Printf("shakedown %s (%s, %s)\n", version.Version, version.Commit, version.Date)
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Irrecoverable error occurred.")
		fmt.Fprintf(os.Stderr, "\t%v\n", err)
		fmt.Fprintln(os.Stderr, "Server test stopped abruptly.")
		os.Exit(1)
	}
}

func run(cfg Config) error {
	xglog.Configure(xglog.Config{Level: cfg.LogLevel})

	runID := uuid.NewString()
	ctx := xglog.ContextWithRunID(context.Background(), runID)
	logger := xglog.WithComponentFromContext(ctx, "main")

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger.Info().
		Str(xglog.FieldBaseURL, cfg.BaseURL).
		Int64("seed", cfg.Seed).
		Int("iterations", cfg.Iterations).
		Str(xglog.FieldOutDir, cfg.OutDir).
		Msg("starting run")

	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:      cfg.TraceExporter != "",
		ServiceName:  "shakedown",
		ExporterType: cfg.TraceExporter,
		Endpoint:     cfg.TraceEndpoint,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	if cfg.MetricsAddr != "" {
		shutdown := metrics.Serve(cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	targets, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if len(targets) == 0 {
		logger.Warn().Msg("configuration contains no targets")
	}

	recorder, err := record.New(cfg.OutDir)
	if err != nil {
		return err
	}

	runner := pipeline.New(pipeline.Config{
		BaseURL:     cfg.BaseURL,
		Iterations:  cfg.Iterations,
		Concurrency: cfg.Concurrency,
		Seed:        cfg.Seed,
	}, pipeline.NewClient(pipeline.ClientOptions{
		Timeout: cfg.Timeout,
		Tracing: cfg.TraceExporter != "",
	}), recorder)

	startedAt := time.Now()
	runErr := runner.Run(ctx, targets)
	closeErr := recorder.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}

	if cfg.HistoryPath != "" {
		recordHistory(ctx, logger, cfg, runID, startedAt, len(targets), int(recorder.Failures()))
	}

	logger.Info().
		Int64("failures", recorder.Failures()).
		Int64("body_capture_failures", recorder.CaptureFailures()).
		Dur("elapsed", time.Since(startedAt)).
		Msg("run finished")

	// Findings are success: exit zero whether or not failures were found.
	fmt.Printf("Failure log recorded in %s\n", recorder.Path())
	return nil
}

// recordHistory appends the run summary to the history database.
// Best effort: history is bookkeeping, not the record of record.
func recordHistory(ctx context.Context, logger zerolog.Logger, cfg Config, runID string, startedAt time.Time, targets, failures int) {
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		logger.Warn().Err(err).Msg("could not open run history")
		return
	}
	defer func() { _ = store.Close() }()

	err = store.RecordRun(ctx, history.Run{
		ID:         runID,
		BaseURL:    cfg.BaseURL,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Targets:    targets,
		Trials:     targets * cfg.Iterations,
		Failures:   failures,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("could not record run history")
	}
}
