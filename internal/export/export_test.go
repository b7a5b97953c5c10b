package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

func sampleResults() []scoring.Result {
	return []scoring.Result{
		{
			Aggregate: scoring.Aggregate{PersonID: "001", CountTotal: 2, CountPrior: 2, DaysSinceLast: 15, UniqueDaysTotal: 2},
			Score:     87,
			Tier:      scoring.TierHigh,
			Reasons:   []string{"attendance dropped 100% in the last 14 days (0 vs 2 before)", "15 days since last attendance"},
		},
		{
			Aggregate: scoring.Aggregate{PersonID: "002", CountTotal: 1, CountRecent: 1, UniqueDaysTotal: 1},
			Score:     45,
			Tier:      scoring.TierModerate,
			Reasons:   []string{"low attendance: 1 check-ins in the last 28 days"},
		},
		{
			Aggregate: scoring.Aggregate{PersonID: "003", CountTotal: 12, CountRecent: 6, CountPrior: 6, UniqueDaysTotal: 12},
			Score:     0,
			Tier:      scoring.TierLow,
			Reasons:   []string{scoring.NoRiskReason},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"001", "87", "high",
		"attendance dropped 100% in the last 14 days (0 vs 2 before); 15 days since last attendance",
		"2", "0", "2", "15", "2",
	}, rows[1])
	assert.Equal(t, "no relevant risk signals", rows[3][3])
}

func TestWriteCSV_EmptyKeepsHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "person_id,score,tier,reasons,count_28d,count_14d_recent,count_14d_prior,days_since_last,unique_days_28d\n", buf.String())
}

func TestTierFilter(t *testing.T) {
	results := sampleResults()

	all, err := ParseTierFilter("all")
	require.NoError(t, err)
	assert.Len(t, all.Apply(results), 3)
	assert.Equal(t, "all", all.String())

	empty, err := ParseTierFilter("")
	require.NoError(t, err)
	assert.Len(t, empty.Apply(results), 3)

	high, err := ParseTierFilter(" HIGH ")
	require.NoError(t, err)
	filtered := high.Apply(results)
	require.Len(t, filtered, 1)
	assert.Equal(t, "001", filtered[0].PersonID)

	_, err = ParseTierFilter("critical")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults()[:1]))

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "001", decoded[0]["person_id"])
	assert.Equal(t, float64(87), decoded[0]["score"])
	assert.Equal(t, float64(15), decoded[0]["days_since_last"])
}
