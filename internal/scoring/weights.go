package scoring

import (
	"fmt"
)

// WeightSet defines the maximum penalty each risk component can contribute.
// The defaults sum to 100; a larger sum is allowed because the composed
// score is clamped.
type WeightSet struct {
	LowEngagement      int
	RecentDrop         int
	ConsecutiveAbsence int
	Irregularity       int
}

// DefaultWeights returns the standard 30/30/25/15 distribution.
func DefaultWeights() WeightSet {
	return WeightSet{
		LowEngagement:      30,
		RecentDrop:         30,
		ConsecutiveAbsence: 25,
		Irregularity:       15,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() int {
	return w.LowEngagement + w.RecentDrop + w.ConsecutiveAbsence + w.Irregularity
}

// Validate rejects negative weights.
func (w WeightSet) Validate() error {
	for i, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight for %s: %d", factorOrder[i], v)
		}
	}
	return nil
}

func (w WeightSet) asList() []int {
	return []int{w.LowEngagement, w.RecentDrop, w.ConsecutiveAbsence, w.Irregularity}
}

// Options is the complete engine configuration for one Scorer.
type Options struct {
	TotalWindowDays  int
	RecentWindowDays int
	Weights          WeightSet
}

// DefaultOptions returns a 28-day total window split into two 14-day halves
// with the default weights.
func DefaultOptions() Options {
	return Options{
		TotalWindowDays:  28,
		RecentWindowDays: 14,
		Weights:          DefaultWeights(),
	}
}

// Validate checks window lengths and weights.
func (o Options) Validate() error {
	if o.TotalWindowDays <= 0 {
		return fmt.Errorf("total window must be positive, got %d", o.TotalWindowDays)
	}
	if o.RecentWindowDays <= 0 {
		return fmt.Errorf("recent window must be positive, got %d", o.RecentWindowDays)
	}
	if o.RecentWindowDays >= o.TotalWindowDays {
		return fmt.Errorf("recent window (%d) must be shorter than total window (%d)", o.RecentWindowDays, o.TotalWindowDays)
	}
	return o.Weights.Validate()
}
