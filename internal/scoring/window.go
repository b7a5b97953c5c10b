package scoring

import (
	"sort"
	"time"
)

// Window is an inclusive calendar date range.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Windows holds the three ranges every person is counted against.
type Windows struct {
	Total  Window `json:"total"`
	Recent Window `json:"recent"`
	Prior  Window `json:"prior"`
}

// NewWindows anchors the total, recent and prior windows at ref.
// Prior ends the day before Recent starts and begins with Total.
func NewWindows(ref time.Time, totalDays, recentDays int) Windows {
	ref = dateOnly(ref)
	totalStart := ref.AddDate(0, 0, -(totalDays - 1))
	recentStart := ref.AddDate(0, 0, -(recentDays - 1))
	return Windows{
		Total:  Window{Start: totalStart, End: ref},
		Recent: Window{Start: recentStart, End: ref},
		Prior:  Window{Start: totalStart, End: recentStart.AddDate(0, 0, -1)},
	}
}

// ReferenceDate returns the latest date in events. It is the "as of" anchor
// for a run and never depends on the wall clock.
func ReferenceDate(events []Event) (time.Time, bool) {
	if len(events) == 0 {
		return time.Time{}, false
	}
	ref := events[0].Date
	for _, e := range events[1:] {
		if e.Date.After(ref) {
			ref = e.Date
		}
	}
	return ref, true
}

// Aggregate is the per-person summary the component scorers read.
type Aggregate struct {
	PersonID           string    `json:"person_id"`
	CountTotal         int       `json:"count_28d"`
	CountRecent        int       `json:"count_14d_recent"`
	CountPrior         int       `json:"count_14d_prior"`
	UniqueDaysTotal    int       `json:"unique_days_28d"`
	LastAttendanceDate time.Time `json:"last_attendance_date"`
	DaysSinceLast      int       `json:"days_since_last"`
}

// AggregateEvents builds one Aggregate per distinct person in events,
// ordered by person id. Persons with no events inside a window keep a zero
// count for it. ref must not precede any event date.
func AggregateEvents(events []Event, windows Windows, ref time.Time) []Aggregate {
	byPerson := make(map[string]*Aggregate)
	seen := make(map[string]map[time.Time]struct{})

	for _, e := range events {
		agg, ok := byPerson[e.PersonID]
		if !ok {
			agg = &Aggregate{PersonID: e.PersonID, LastAttendanceDate: e.Date}
			byPerson[e.PersonID] = agg
			seen[e.PersonID] = make(map[time.Time]struct{})
		}
		if e.Date.After(agg.LastAttendanceDate) {
			agg.LastAttendanceDate = e.Date
		}
		if windows.Total.Contains(e.Date) {
			agg.CountTotal++
			seen[e.PersonID][e.Date] = struct{}{}
		}
		if windows.Recent.Contains(e.Date) {
			agg.CountRecent++
		}
		if windows.Prior.Contains(e.Date) {
			agg.CountPrior++
		}
	}

	out := make([]Aggregate, 0, len(byPerson))
	for id, agg := range byPerson {
		agg.UniqueDaysTotal = len(seen[id])
		agg.DaysSinceLast = daysBetween(agg.LastAttendanceDate, ref)
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PersonID < out[j].PersonID
	})
	return out
}
