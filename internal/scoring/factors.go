package scoring

import (
	"fmt"
	"math"
)

// Factor names, in evaluation order. The order doubles as the tie-break
// when two factors carry the same penalty.
const (
	FactorLowEngagement      = "low_engagement"
	FactorRecentDrop         = "recent_drop"
	FactorConsecutiveAbsence = "consecutive_absence"
	FactorIrregularity       = "irregularity"
)

var factorOrder = []string{
	FactorLowEngagement,
	FactorRecentDrop,
	FactorConsecutiveAbsence,
	FactorIrregularity,
}

// FactorResult captures one component's contribution to the total score.
type FactorResult struct {
	Name    string `json:"name"`
	Weight  int    `json:"weight"`
	Percent int    `json:"percent"`
	Penalty int    `json:"penalty"`
	Reason  string `json:"reason"`
}

// bucket maps every value up to and including max onto percent of the weight.
type bucket struct {
	max     int
	percent int
}

var (
	engagementBuckets = []bucket{{1, 100}, {3, 70}, {5, 40}, {math.MaxInt, 0}}
	absenceBuckets    = []bucket{{3, 0}, {7, 40}, {14, 70}, {math.MaxInt, 100}}
	irregularBuckets  = []bucket{{1, 100}, {2, 70}, {3, 40}, {math.MaxInt, 0}}
)

// ratioBucket applies percent when recent/prior <= num/den.
type ratioBucket struct {
	num, den int
	percent  int
}

var dropBuckets = []ratioBucket{{1, 2, 100}, {3, 4, 60}, {9, 10, 30}}

func lookup(buckets []bucket, v int) int {
	for _, b := range buckets {
		if v <= b.max {
			return b.percent
		}
	}
	return 0
}

// penaltyFor rounds weight*percent/100 half up using integer arithmetic only.
func penaltyFor(weight, percent int) int {
	return (weight*percent + 50) / 100
}

// --- Individual component scorers ---

// LowEngagementFactor penalises few check-ins across the total window.
func LowEngagementFactor(countTotal, totalDays, weight int) FactorResult {
	pct := lookup(engagementBuckets, countTotal)
	r := FactorResult{Name: FactorLowEngagement, Weight: weight, Percent: pct, Penalty: penaltyFor(weight, pct)}
	if pct > 0 {
		r.Reason = fmt.Sprintf("low attendance: %d check-ins in the last %d days", countTotal, totalDays)
	} else {
		r.Reason = fmt.Sprintf("steady attendance: %d check-ins in the last %d days", countTotal, totalDays)
	}
	return r
}

// RecentDropFactor compares the recent window against the prior one. With no
// prior check-ins there is no baseline and the penalty is zero.
func RecentDropFactor(recent, prior, recentDays, weight int) FactorResult {
	r := FactorResult{Name: FactorRecentDrop, Weight: weight}
	if prior == 0 {
		r.Reason = fmt.Sprintf("no baseline: no check-ins in the %d days before the recent window", recentDays)
		return r
	}
	for _, b := range dropBuckets {
		// recent/prior <= num/den, without dividing
		if recent*b.den <= b.num*prior {
			r.Percent = b.percent
			break
		}
	}
	r.Penalty = penaltyFor(weight, r.Percent)
	if r.Percent > 0 {
		drop := (prior - recent) * 100 / prior
		r.Reason = fmt.Sprintf("attendance dropped %d%% in the last %d days (%d vs %d before)", drop, recentDays, recent, prior)
	} else {
		r.Reason = fmt.Sprintf("no significant drop in the last %d days (%d vs %d before)", recentDays, recent, prior)
	}
	return r
}

// ConsecutiveAbsenceFactor penalises the gap since the last check-in.
func ConsecutiveAbsenceFactor(daysSinceLast, weight int) FactorResult {
	pct := lookup(absenceBuckets, daysSinceLast)
	r := FactorResult{Name: FactorConsecutiveAbsence, Weight: weight, Percent: pct, Penalty: penaltyFor(weight, pct)}
	if pct > 0 {
		r.Reason = fmt.Sprintf("%d days since last attendance", daysSinceLast)
	} else {
		r.Reason = fmt.Sprintf("attended %d days ago", daysSinceLast)
	}
	return r
}

// IrregularityFactor penalises check-ins concentrated on few distinct days.
func IrregularityFactor(uniqueDays, totalDays, weight int) FactorResult {
	pct := lookup(irregularBuckets, uniqueDays)
	r := FactorResult{Name: FactorIrregularity, Weight: weight, Percent: pct, Penalty: penaltyFor(weight, pct)}
	if pct > 0 {
		r.Reason = fmt.Sprintf("irregular pattern: %d distinct days in the last %d days", uniqueDays, totalDays)
	} else {
		r.Reason = fmt.Sprintf("regular pattern: %d distinct days in the last %d days", uniqueDays, totalDays)
	}
	return r
}
