package hermes

import "time"

type RunCompletedEvent struct {
	RunID         string    `json:"run_id"`
	Source        string    `json:"source"`
	ReferenceDate string    `json:"reference_date,omitempty"`
	InputRows     int       `json:"input_rows"`
	DroppedRows   int       `json:"dropped_rows"`
	Persons       int       `json:"persons"`
	High          int       `json:"high"`
	Moderate      int       `json:"moderate"`
	Low           int       `json:"low"`
	Timestamp     time.Time `json:"timestamp"`
}

type HighRiskEvent struct {
	RunID         string   `json:"run_id"`
	PersonID      string   `json:"person_id"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
	DaysSinceLast int      `json:"days_since_last"`
	Guidance      string   `json:"guidance"`
}
