package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Pulse/internal/api"
	"github.com/MikeSquared-Agency/Pulse/internal/config"
	"github.com/MikeSquared-Agency/Pulse/internal/export"
	"github.com/MikeSquared-Agency/Pulse/internal/hermes"
	"github.com/MikeSquared-Agency/Pulse/internal/ingest"
	"github.com/MikeSquared-Agency/Pulse/internal/runner"
	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

type batchFlags struct {
	input        string
	output       string
	format       string
	tier         string
	personColumn string
	dateColumn   string
}

func main() {
	if err := run(); err != nil {
		slog.Error("pulse failed", "error", err)
		os.Exit(1)
	}
}

// run does the work of main so deferred cleanup (hermes flush, config
// watcher) happens before the process exits.
func run() error {
	configPath := flag.String("config", "", "path to config file")
	var bf batchFlags
	flag.StringVar(&bf.input, "input", "", "attendance CSV to score; without it the HTTP server starts")
	flag.StringVar(&bf.output, "output", "", "write results here instead of stdout")
	flag.StringVar(&bf.format, "format", "csv", "output format: csv or json")
	flag.StringVar(&bf.tier, "tier", "all", "only output this tier: all, low, moderate or high")
	flag.StringVar(&bf.personColumn, "person-column", "", "person id column (overrides config)")
	flag.StringVar(&bf.dateColumn, "date-column", "", "date column (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.Logging, bf.input != "")
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	scorer := scoring.NewScorer(cfg.ScoringOptions(), logger)
	rn := runner.New(scorer, hermesClient, logger)

	if bf.input != "" {
		if err := runBatch(rn, cfg, bf); err != nil {
			return fmt.Errorf("scoring failed: %w", err)
		}
		return nil
	}

	// Hot-reload of scoring settings (server mode with a config file only)
	if *configPath != "" {
		watcher := config.NewWatcher(*configPath, logger)
		watcher.OnChange(func(newCfg *config.Config) {
			rn.SetScorer(scoring.NewScorer(newCfg.ScoringOptions(), logger))
			logger.Info("scoring config reloaded",
				"total_window_days", newCfg.Scoring.TotalWindowDays,
				"recent_window_days", newCfg.Scoring.RecentWindowDays,
			)
		})
		stopWatch, err := watcher.Watch()
		if err != nil {
			logger.Warn("config watcher unavailable, hot-reload disabled", "error", err)
		} else {
			defer stopWatch()
		}
	}

	serve(ctx, cancel, rn, cfg, logger)
	return nil
}

// createOutput opens the batch output file.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// runBatch scores one file and writes the table to the output. A failure
// to close the output file is reported, since that is when buffered data
// reaches the disk.
func runBatch(rn *runner.Runner, cfg *config.Config, bf batchFlags) (err error) {
	format, err := export.ParseFormat(bf.format)
	if err != nil {
		return err
	}
	filter, err := export.ParseTierFilter(bf.tier)
	if err != nil {
		return err
	}

	cols := ingest.Columns{Person: cfg.Input.PersonColumn, Date: cfg.Input.DateColumn}
	if bf.personColumn != "" {
		cols.Person = bf.personColumn
	}
	if bf.dateColumn != "" {
		cols.Date = bf.dateColumn
	}

	in, err := os.Open(bf.input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	scored, err := rn.Run(in, runner.Request{Columns: cols, Source: filepath.Base(bf.input)})
	if err != nil {
		return err
	}
	results := filter.Apply(scored.Results)

	var out io.Writer = os.Stdout
	if bf.output != "" {
		f, openErr := createOutput(bf.output)
		if openErr != nil {
			return fmt.Errorf("create output: %w", openErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	if format == export.FormatJSON {
		scored.Results = results
		return export.WriteJSON(out, scored)
	}
	return export.WriteCSV(out, results)
}

func serve(ctx context.Context, cancel context.CancelFunc, rn *runner.Runner, cfg *config.Config, logger *slog.Logger) {
	// API server
	router := api.NewRouter(rn, cfg, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

// newLogger builds the process logger. Batch runs log to stderr so stdout
// stays clean for the result table.
func newLogger(cfg config.LoggingConfig, batch bool) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stdout
	if batch {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
