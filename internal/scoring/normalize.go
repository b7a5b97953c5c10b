package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// RawRecord is one input row after column selection and before date parsing.
type RawRecord struct {
	PersonID string
	Date     string
}

// Event is a single attendance check-in. Date is always midnight UTC.
type Event struct {
	PersonID string
	Date     time.Time
}

// Layouts tried in order. Single-digit fields in a layout accept both
// padded and unpadded input ("2025-1-5" and "2025-01-05"). Month-first
// slash dates win over day-first ones; day-first is only reached when the
// month-first reading is impossible.
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"2006-1-2 15:04:05Z07:00",
	time.RFC3339,
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"20060102",
}

// ParseDate parses a calendar date from any of the accepted layouts and
// truncates it to midnight UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return dateOnly(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %s", value)
}

// Normalize converts raw records into events. Rows with an unparseable date
// or an empty person id are dropped and counted, never reported as errors.
func Normalize(records []RawRecord) (events []Event, dropped int) {
	events = make([]Event, 0, len(records))
	for _, rec := range records {
		id := strings.TrimSpace(rec.PersonID)
		if id == "" {
			dropped++
			continue
		}
		d, err := ParseDate(rec.Date)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, Event{PersonID: id, Date: d})
	}
	return events, dropped
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole days from a to b; both must be dates from dateOnly.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
