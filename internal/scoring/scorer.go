package scoring

import (
	"log/slog"
	"sort"
	"time"
)

// Tier is the three-level risk classification.
type Tier string

const (
	TierLow      Tier = "low"
	TierModerate Tier = "moderate"
	TierHigh     Tier = "high"
)

// Upper score bounds (inclusive) of the low and moderate tiers.
const (
	LowTierMax      = 30
	ModerateTierMax = 60
)

// NoRiskReason is the single reason emitted when no component contributes.
const NoRiskReason = "no relevant risk signals"

const maxReasons = 2

// Classify maps a score onto its tier.
func Classify(score int) Tier {
	switch {
	case score <= LowTierMax:
		return TierLow
	case score <= ModerateTierMax:
		return TierModerate
	default:
		return TierHigh
	}
}

// ParseTier accepts the three tier names.
func ParseTier(s string) (Tier, bool) {
	switch t := Tier(s); t {
	case TierLow, TierModerate, TierHigh:
		return t, true
	}
	return "", false
}

// Guidance returns the suggested follow-up for people in the tier.
func (t Tier) Guidance() string {
	switch t {
	case TierHigh:
		return "active outreach, invite back and adjust routine or schedule"
	case TierModerate:
		return "reinforce engagement and follow up weekly"
	default:
		return "keep consistency and reinforce goals and progress"
	}
}

// Result is the scoring output for one person.
type Result struct {
	Aggregate
	Score   int            `json:"score"`
	Tier    Tier           `json:"tier"`
	Reasons []string       `json:"reasons"`
	Factors []FactorResult `json:"factors"`
}

// Report is the full output of one scoring run.
type Report struct {
	ReferenceDate *time.Time `json:"reference_date"`
	Windows       *Windows   `json:"windows,omitempty"`
	InputRows     int        `json:"input_rows"`
	DroppedRows   int        `json:"dropped_rows"`
	Results       []Result   `json:"results"`
}

// Scorer orchestrates the four-component disengagement risk engine.
type Scorer struct {
	opts   Options
	logger *slog.Logger
}

// NewScorer creates a Scorer. opts should already be validated.
func NewScorer(opts Options, logger *slog.Logger) *Scorer {
	return &Scorer{opts: opts, logger: logger}
}

// Options returns the configuration the scorer was built with.
func (s *Scorer) Options() Options {
	return s.opts
}

// Score runs the whole pipeline over raw records: normalise, anchor the
// reference date, aggregate and score every person.
func (s *Scorer) Score(records []RawRecord) Report {
	events, dropped := Normalize(records)
	if dropped > 0 {
		s.logger.Warn("dropped unparseable rows", "dropped_rows", dropped, "input_rows", len(records))
	}

	report := s.ScoreEvents(events)
	report.InputRows = len(records)
	report.DroppedRows = dropped
	return report
}

// ScoreEvents scores already-normalised events. An empty slice yields an
// empty report with no reference date.
func (s *Scorer) ScoreEvents(events []Event) Report {
	ref, ok := ReferenceDate(events)
	if !ok {
		return Report{InputRows: len(events), Results: []Result{}}
	}

	windows := NewWindows(ref, s.opts.TotalWindowDays, s.opts.RecentWindowDays)
	aggs := AggregateEvents(events, windows, ref)

	results := make([]Result, 0, len(aggs))
	for _, agg := range aggs {
		results = append(results, s.ScoreAggregate(agg))
	}
	SortResults(results)

	s.logger.Debug("scored attendance",
		"reference_date", ref.Format(dateLayout),
		"events", len(events),
		"persons", len(results),
	)

	return Report{
		ReferenceDate: &ref,
		Windows:       &windows,
		InputRows:     len(events),
		Results:       results,
	}
}

// ScoreAggregate runs the four component scorers for one person and composes them.
func (s *Scorer) ScoreAggregate(agg Aggregate) Result {
	w := s.opts.Weights
	factors := []FactorResult{
		LowEngagementFactor(agg.CountTotal, s.opts.TotalWindowDays, w.LowEngagement),
		RecentDropFactor(agg.CountRecent, agg.CountPrior, s.opts.RecentWindowDays, w.RecentDrop),
		ConsecutiveAbsenceFactor(agg.DaysSinceLast, w.ConsecutiveAbsence),
		IrregularityFactor(agg.UniqueDaysTotal, s.opts.TotalWindowDays, w.Irregularity),
	}

	score := Compose(factors)
	return Result{
		Aggregate: agg,
		Score:     score,
		Tier:      Classify(score),
		Reasons:   TopReasons(factors),
		Factors:   factors,
	}
}

// Compose sums the penalties and clamps the total to [0, 100].
func Compose(factors []FactorResult) int {
	total := 0
	for _, f := range factors {
		total += f.Penalty
	}
	return clamp(total, 0, 100)
}

// TopReasons returns the reasons of at most two contributing factors, highest
// penalty first. Equal penalties keep the order of factors, which callers
// pass in evaluation order.
func TopReasons(factors []FactorResult) []string {
	ranked := make([]FactorResult, 0, len(factors))
	for _, f := range factors {
		if f.Penalty > 0 {
			ranked = append(ranked, f)
		}
	}
	if len(ranked) == 0 {
		return []string{NoRiskReason}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Penalty > ranked[j].Penalty
	})
	if len(ranked) > maxReasons {
		ranked = ranked[:maxReasons]
	}
	reasons := make([]string, len(ranked))
	for i, f := range ranked {
		reasons[i] = f.Reason
	}
	return reasons
}

// SortResults orders results by score descending, then person id ascending.
func SortResults(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PersonID < results[j].PersonID
	})
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
