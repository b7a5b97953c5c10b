package runner

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Pulse/internal/hermes"
	"github.com/MikeSquared-Agency/Pulse/internal/ingest"
	"github.com/MikeSquared-Agency/Pulse/internal/metrics"
	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

// Request describes one scoring run.
type Request struct {
	Columns ingest.Columns
	// Source labels where the input came from (file name, "upload").
	Source string
}

// Run is the outcome of one scoring run.
type Run struct {
	ID     string `json:"run_id"`
	Source string `json:"source,omitempty"`
	scoring.Report
}

// TierCounts returns the number of results per tier.
func (r *Run) TierCounts() map[scoring.Tier]int {
	counts := map[scoring.Tier]int{
		scoring.TierLow:      0,
		scoring.TierModerate: 0,
		scoring.TierHigh:     0,
	}
	for _, res := range r.Results {
		counts[res.Tier]++
	}
	return counts
}

// Runner wires ingest, the scoring engine, metrics and the optional event
// publisher. It keeps no state between runs.
type Runner struct {
	scorer atomic.Pointer[scoring.Scorer]
	hermes hermes.Client
	logger *slog.Logger
}

// New creates a Runner. h may be nil when events are disabled.
func New(scorer *scoring.Scorer, h hermes.Client, logger *slog.Logger) *Runner {
	r := &Runner{hermes: h, logger: logger}
	r.scorer.Store(scorer)
	return r
}

// Scorer returns the engine used for new runs.
func (r *Runner) Scorer() *scoring.Scorer {
	return r.scorer.Load()
}

// SetScorer swaps the engine. Runs already in progress finish with the
// scorer they started with.
func (r *Runner) SetScorer(s *scoring.Scorer) {
	r.scorer.Store(s)
}

// Run reads a CSV from in and scores it. Input errors fail the run before
// any scoring happens.
func (r *Runner) Run(in io.Reader, req Request) (*Run, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := r.logger.With("run_id", runID, "source", req.Source)

	records, err := ingest.ReadCSV(in, req.Columns)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("input_error").Inc()
		logger.Warn("rejected input", "error", err)
		return nil, fmt.Errorf("read input: %w", err)
	}

	report := r.Scorer().Score(records)
	run := &Run{ID: runID, Source: req.Source, Report: report}

	metrics.RunsTotal.WithLabelValues("ok").Inc()
	metrics.RowsRead.Add(float64(report.InputRows))
	metrics.RowsDropped.Add(float64(report.DroppedRows))
	counts := run.TierCounts()
	for tier, n := range counts {
		metrics.PersonsScored.WithLabelValues(string(tier)).Add(float64(n))
	}
	metrics.RunDuration.Observe(float64(time.Since(start).Milliseconds()))

	logger.Info("scoring run complete",
		"input_rows", report.InputRows,
		"dropped_rows", report.DroppedRows,
		"persons", len(report.Results),
		"high", counts[scoring.TierHigh],
		"moderate", counts[scoring.TierModerate],
		"low", counts[scoring.TierLow],
		"duration_ms", time.Since(start).Milliseconds(),
	)

	r.publish(run, counts, logger)
	return run, nil
}

// publish emits run events. Failures are logged and never fail the run.
func (r *Runner) publish(run *Run, counts map[scoring.Tier]int, logger *slog.Logger) {
	if r.hermes == nil {
		return
	}

	evt := hermes.RunCompletedEvent{
		RunID:       run.ID,
		Source:      run.Source,
		InputRows:   run.InputRows,
		DroppedRows: run.DroppedRows,
		Persons:     len(run.Results),
		High:        counts[scoring.TierHigh],
		Moderate:    counts[scoring.TierModerate],
		Low:         counts[scoring.TierLow],
		Timestamp:   time.Now().UTC(),
	}
	if run.ReferenceDate != nil {
		evt.ReferenceDate = run.ReferenceDate.Format("2006-01-02")
	}
	if err := r.hermes.Publish(hermes.SubjectRunCompleted(run.ID), evt); err != nil {
		logger.Warn("failed to publish run event", "error", err)
	}

	for _, res := range run.Results {
		if res.Tier != scoring.TierHigh {
			continue
		}
		hr := hermes.HighRiskEvent{
			RunID:         run.ID,
			PersonID:      res.PersonID,
			Score:         res.Score,
			Reasons:       res.Reasons,
			DaysSinceLast: res.DaysSinceLast,
			Guidance:      res.Tier.Guidance(),
		}
		if err := r.hermes.Publish(hermes.SubjectRunHighRisk(run.ID), hr); err != nil {
			logger.Warn("failed to publish high risk event", "person_id", res.PersonID, "error", err)
		}
	}
}
