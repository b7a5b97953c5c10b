package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/MikeSquared-Agency/Pulse/internal/config"
	"github.com/MikeSquared-Agency/Pulse/internal/export"
	"github.com/MikeSquared-Agency/Pulse/internal/ingest"
	"github.com/MikeSquared-Agency/Pulse/internal/runner"
	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

// DownloadFilename is suggested to clients for CSV responses.
const DownloadFilename = "pulse_risk_scores.csv"

type ScoresHandler struct {
	runner   *runner.Runner
	input    config.InputConfig
	maxBytes int64
	logger   *slog.Logger
}

func NewScoresHandler(rn *runner.Runner, input config.InputConfig, maxBytes int64, logger *slog.Logger) *ScoresHandler {
	return &ScoresHandler{runner: rn, input: input, maxBytes: maxBytes, logger: logger}
}

type ScoreResponse struct {
	RunID         string            `json:"run_id"`
	ReferenceDate string            `json:"reference_date,omitempty"`
	Windows       *scoring.Windows  `json:"windows,omitempty"`
	InputRows     int               `json:"input_rows"`
	DroppedRows   int               `json:"dropped_rows"`
	TierFilter    string            `json:"tier_filter"`
	TierCounts    map[string]int    `json:"tier_counts"`
	Guidance      map[string]string `json:"guidance"`
	Results       []scoring.Result  `json:"results"`
}

// Score handles POST /api/v1/scores
//
// The CSV comes either as the raw body or as the multipart field "file".
// Query parameters: person_column, date_column, tier (all|low|moderate|high),
// format (json|csv).
func (h *ScoresHandler) Score(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := export.ParseTierFilter(q.Get("tier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cols := ingest.Columns{Person: h.input.PersonColumn, Date: h.input.DateColumn}
	if v := q.Get("person_column"); v != "" {
		cols.Person = v
	}
	if v := q.Get("date_column"); v != "" {
		cols.Date = v
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	body, source, err := h.readInput(r)
	if err != nil {
		writeInputError(w, err)
		return
	}
	defer body.Close()

	run, err := h.runner.Run(body, runner.Request{Columns: cols, Source: source})
	if err != nil {
		writeInputError(w, err)
		return
	}

	results := filter.Apply(run.Results)

	if format == export.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", DownloadFilename))
		w.Header().Set("X-Pulse-Run-ID", run.ID)
		w.WriteHeader(http.StatusOK)
		if err := export.WriteCSV(w, results); err != nil {
			// Headers are already sent; the client sees a truncated file.
			h.logger.Warn("failed to write csv response", "run_id", run.ID, "error", err)
		}
		return
	}

	resp := ScoreResponse{
		RunID:       run.ID,
		Windows:     run.Windows,
		InputRows:   run.InputRows,
		DroppedRows: run.DroppedRows,
		TierFilter:  filter.String(),
		TierCounts:  map[string]int{},
		Guidance:    map[string]string{},
		Results:     results,
	}
	if run.ReferenceDate != nil {
		resp.ReferenceDate = run.ReferenceDate.Format("2006-01-02")
	}
	for tier, n := range run.TierCounts() {
		resp.TierCounts[string(tier)] = n
		resp.Guidance[string(tier)] = tier.Guidance()
	}
	writeJSON(w, http.StatusOK, resp)
}

// readInput returns the CSV stream of the request and a label for its source.
func (h *ScoresHandler) readInput(r *http.Request) (io.ReadCloser, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return r.Body, "upload", nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("read form file: %w", err)
	}
	return file, header.Filename, nil
}

func writeInputError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("input exceeds %d bytes", tooLarge.Limit))
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
