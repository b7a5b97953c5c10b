package scoring

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-02", "2025-01-02"},
		{" 2025-01-02 ", "2025-01-02"},
		{"2025/01/02", "2025-01-02"},
		{"2025-01-02 18:30:00", "2025-01-02"},
		{"2025-01-02T18:30:00", "2025-01-02"},
		{"2025-01-02T23:30:00-03:00", "2025-01-02"},
		{"01/02/2025", "2025-01-02"},
		{"25/01/2025", "2025-01-25"},
		{"20250102", "2025-01-02"},
		{"2025-1-5", "2025-01-05"},
		{"2025/1/5", "2025-01-05"},
		{"1/5/2025", "2025-01-05"},
		{"13/1/2025", "2025-01-13"},
		{"1-5-2025", "2025-01-05"},
		{"2025-01-05 08:30", "2025-01-05"},
		{"2025-01-05 08:30:00+00:00", "2025-01-05"},
		{"2025-01-05T08:30:00.123", "2025-01-05"},
		{"1/5/2025 08:30", "2025-01-05"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}
			if !got.Equal(date(tt.want)) {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format(dateLayout), tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC, got %s", got.Location())
			}
		})
	}
}

func TestParseDateRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2025-13-01", "2025-02-30", "32/13/2025"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestNormalizeDropsBadRows(t *testing.T) {
	records := []RawRecord{
		{PersonID: "001", Date: "2025-01-02"},
		{PersonID: "001", Date: "not a date"},
		{PersonID: "", Date: "2025-01-03"},
		{PersonID: " 002 ", Date: "2025-01-03"},
		{PersonID: "003", Date: ""},
	}
	events, dropped := Normalize(records)
	if dropped != 3 {
		t.Errorf("expected 3 dropped rows, got %d", dropped)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].PersonID != "002" {
		t.Errorf("expected trimmed person id, got %q", events[1].PersonID)
	}
}

func TestNormalizeKeepsDuplicates(t *testing.T) {
	records := []RawRecord{
		{PersonID: "001", Date: "2025-01-02"},
		{PersonID: "001", Date: "2025-01-02"},
	}
	events, dropped := Normalize(records)
	if dropped != 0 || len(events) != 2 {
		t.Errorf("expected 2 events and 0 dropped, got %d and %d", len(events), dropped)
	}
}
