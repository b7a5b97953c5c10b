package scoring

import (
	"testing"
)

func TestNewWindowsDefault(t *testing.T) {
	w := NewWindows(date("2025-01-20"), 28, 14)

	checks := []struct {
		name       string
		got        Window
		start, end string
	}{
		{"total", w.Total, "2024-12-24", "2025-01-20"},
		{"recent", w.Recent, "2025-01-07", "2025-01-20"},
		{"prior", w.Prior, "2024-12-24", "2025-01-06"},
	}
	for _, c := range checks {
		if !c.got.Start.Equal(date(c.start)) || !c.got.End.Equal(date(c.end)) {
			t.Errorf("%s window: got [%s, %s], want [%s, %s]", c.name,
				c.got.Start.Format(dateLayout), c.got.End.Format(dateLayout), c.start, c.end)
		}
	}
}

func TestWindowContainsIsInclusive(t *testing.T) {
	w := Window{Start: date("2025-01-01"), End: date("2025-01-10")}
	for _, d := range []string{"2025-01-01", "2025-01-05", "2025-01-10"} {
		if !w.Contains(date(d)) {
			t.Errorf("expected %s inside window", d)
		}
	}
	for _, d := range []string{"2024-12-31", "2025-01-11"} {
		if w.Contains(date(d)) {
			t.Errorf("expected %s outside window", d)
		}
	}
}

func TestReferenceDate(t *testing.T) {
	if _, ok := ReferenceDate(nil); ok {
		t.Error("expected no reference date for empty input")
	}
	events := []Event{
		{PersonID: "a", Date: date("2025-01-05")},
		{PersonID: "b", Date: date("2025-01-20")},
		{PersonID: "a", Date: date("2025-01-02")},
	}
	ref, ok := ReferenceDate(events)
	if !ok || !ref.Equal(date("2025-01-20")) {
		t.Errorf("expected 2025-01-20, got %s", ref.Format(dateLayout))
	}
}

func TestAggregateEvents(t *testing.T) {
	ref := date("2025-01-20")
	events := []Event{
		{PersonID: "b", Date: date("2025-01-20")},
		{PersonID: "a", Date: date("2025-01-02")},
		{PersonID: "a", Date: date("2025-01-05")},
		{PersonID: "a", Date: date("2025-01-05")},
		{PersonID: "c", Date: date("2024-10-01")},
	}
	aggs := AggregateEvents(events, NewWindows(ref, 28, 14), ref)

	if len(aggs) != 3 {
		t.Fatalf("expected 3 persons, got %d", len(aggs))
	}
	if aggs[0].PersonID != "a" || aggs[1].PersonID != "b" || aggs[2].PersonID != "c" {
		t.Errorf("expected persons ordered a, b, c")
	}

	a := aggs[0]
	if a.CountTotal != 3 || a.CountRecent != 0 || a.CountPrior != 3 {
		t.Errorf("a counts: total=%d recent=%d prior=%d", a.CountTotal, a.CountRecent, a.CountPrior)
	}
	if a.UniqueDaysTotal != 2 {
		t.Errorf("a unique days: expected 2, got %d", a.UniqueDaysTotal)
	}
	if a.DaysSinceLast != 15 {
		t.Errorf("a days since last: expected 15, got %d", a.DaysSinceLast)
	}

	b := aggs[1]
	if b.CountTotal != 1 || b.CountRecent != 1 || b.CountPrior != 0 || b.DaysSinceLast != 0 {
		t.Errorf("b: %+v", b)
	}

	// Outside every window but still present, with an all-time last date.
	c := aggs[2]
	if c.CountTotal != 0 || c.CountRecent != 0 || c.CountPrior != 0 || c.UniqueDaysTotal != 0 {
		t.Errorf("c should have zero counts: %+v", c)
	}
	if !c.LastAttendanceDate.Equal(date("2024-10-01")) {
		t.Errorf("c last date: %s", c.LastAttendanceDate.Format(dateLayout))
	}
	if c.DaysSinceLast != 111 {
		t.Errorf("c days since last: expected 111, got %d", c.DaysSinceLast)
	}
}

func TestAggregateRecentAndPriorPartitionTotal(t *testing.T) {
	ref := date("2025-03-31")
	var events []Event
	for i := 0; i < 40; i++ {
		events = append(events, Event{PersonID: "p", Date: ref.AddDate(0, 0, -i)})
	}
	aggs := AggregateEvents(events, NewWindows(ref, 28, 14), ref)
	a := aggs[0]
	if a.CountRecent+a.CountPrior != a.CountTotal {
		t.Errorf("recent (%d) + prior (%d) != total (%d)", a.CountRecent, a.CountPrior, a.CountTotal)
	}
	if a.CountTotal != 28 || a.CountRecent != 14 || a.CountPrior != 14 {
		t.Errorf("unexpected counts %+v", a)
	}
}
