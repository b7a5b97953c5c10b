package hermes

const (
	StreamName     = "PULSE_EVENTS"
	StreamSubjects = "pulse.>"
	StreamMaxAge   = "720h" // 30 days
)

func SubjectRunCompleted(runID string) string { return "pulse.run." + runID + ".completed" }
func SubjectRunHighRisk(runID string) string  { return "pulse.run." + runID + ".high_risk" }
