// Package export renders scoring results as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

// Header is the fixed column schema of the result table.
var Header = []string{
	"person_id",
	"score",
	"tier",
	"reasons",
	"count_28d",
	"count_14d_recent",
	"count_14d_prior",
	"days_since_last",
	"unique_days_28d",
}

// ReasonSeparator joins the reasons of one row in the CSV output.
const ReasonSeparator = "; "

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatJSON):
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q (want csv or json)", s)
}

// TierFilter selects which rows are shown. The zero value keeps everything.
type TierFilter struct {
	tier scoring.Tier
}

// ParseTierFilter accepts "", "all" or a tier name.
func ParseTierFilter(s string) (TierFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return TierFilter{}, nil
	}
	t, ok := scoring.ParseTier(s)
	if !ok {
		return TierFilter{}, fmt.Errorf("unknown tier %q (want all, low, moderate or high)", s)
	}
	return TierFilter{tier: t}, nil
}

// Apply returns the matching results in their original order.
func (f TierFilter) Apply(results []scoring.Result) []scoring.Result {
	if f.tier == "" {
		return results
	}
	out := make([]scoring.Result, 0, len(results))
	for _, r := range results {
		if r.Tier == f.tier {
			out = append(out, r)
		}
	}
	return out
}

func (f TierFilter) String() string {
	if f.tier == "" {
		return "all"
	}
	return string(f.tier)
}

// WriteCSV writes the header followed by one row per result. The header is
// written even when there are no results.
func WriteCSV(w io.Writer, results []scoring.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.PersonID,
			strconv.Itoa(r.Score),
			string(r.Tier),
			strings.Join(r.Reasons, ReasonSeparator),
			strconv.Itoa(r.CountTotal),
			strconv.Itoa(r.CountRecent),
			strconv.Itoa(r.CountPrior),
			strconv.Itoa(r.DaysSinceLast),
			strconv.Itoa(r.UniqueDaysTotal),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", r.PersonID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
