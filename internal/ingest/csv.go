// Package ingest reads attendance check-ins from CSV into raw records for
// the scoring engine. It only selects columns; date parsing and row
// dropping belong to the engine.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

// ErrMissingColumn is returned when a configured column is not in the header.
var ErrMissingColumn = errors.New("missing required column")

// Columns names the person id and date columns of the input.
type Columns struct {
	Person string
	Date   string
}

// ReadCSV reads a header row followed by data rows. Header matching is
// trimmed and case-insensitive. Rows too short to hold both columns are
// kept with empty values so the engine counts them as dropped.
func ReadCSV(r io.Reader, cols Columns) ([]scoring.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty input: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := normalizeHeaders(headers)
	personIdx, ok := index[normalizeHeader(cols.Person)]
	if !ok {
		return nil, fmt.Errorf("%w %q (found: %s)", ErrMissingColumn, cols.Person, strings.Join(headers, ", "))
	}
	dateIdx, ok := index[normalizeHeader(cols.Date)]
	if !ok {
		return nil, fmt.Errorf("%w %q (found: %s)", ErrMissingColumn, cols.Date, strings.Join(headers, ", "))
	}

	var records []scoring.RawRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}
		records = append(records, scoring.RawRecord{
			PersonID: getValue(row, personIdx),
			Date:     getValue(row, dateIdx),
		})
	}
	return records, nil
}

func normalizeHeaders(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

func normalizeHeader(value string) string {
	value = strings.TrimPrefix(value, "\ufeff")
	return strings.ToLower(strings.TrimSpace(value))
}

func getValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
