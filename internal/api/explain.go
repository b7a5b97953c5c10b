package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Pulse/internal/runner"
	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

type ExplainHandler struct {
	runner *runner.Runner
}

func NewExplainHandler(rn *runner.Runner) *ExplainHandler {
	return &ExplainHandler{runner: rn}
}

type tierInfo struct {
	Tier     scoring.Tier `json:"tier"`
	MinScore int          `json:"min_score"`
	MaxScore int          `json:"max_score"`
	Guidance string       `json:"guidance"`
}

// Config returns the windows, weights and tier bands in use. Reflects
// config reloads.
// GET /api/v1/scoring/config
func (h *ExplainHandler) Config(w http.ResponseWriter, r *http.Request) {
	opts := h.runner.Scorer().Options()
	weights := opts.Weights
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_window_days":  opts.TotalWindowDays,
		"recent_window_days": opts.RecentWindowDays,
		"weights": map[string]int{
			scoring.FactorLowEngagement:      weights.LowEngagement,
			scoring.FactorRecentDrop:         weights.RecentDrop,
			scoring.FactorConsecutiveAbsence: weights.ConsecutiveAbsence,
			scoring.FactorIrregularity:       weights.Irregularity,
		},
		"tiers": []tierInfo{
			{scoring.TierLow, 0, scoring.LowTierMax, scoring.TierLow.Guidance()},
			{scoring.TierModerate, scoring.LowTierMax + 1, scoring.ModerateTierMax, scoring.TierModerate.Guidance()},
			{scoring.TierHigh, scoring.ModerateTierMax + 1, 100, scoring.TierHigh.Guidance()},
		},
	})
}
