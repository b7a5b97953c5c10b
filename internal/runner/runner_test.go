package runner

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Pulse/internal/hermes"
	"github.com/MikeSquared-Agency/Pulse/internal/ingest"
	"github.com/MikeSquared-Agency/Pulse/internal/scoring"
)

type MockHermes struct {
	mock.Mock
}

func (m *MockHermes) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *MockHermes) Close() {}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var defaultRequest = Request{
	Columns: ingest.Columns{Person: "aluno_id", Date: "data"},
	Source:  "test.csv",
}

const sampleCSV = "aluno_id,data\n" +
	"001,2025-01-02\n" +
	"001,2025-01-05\n" +
	"002,2025-01-20\n" +
	"003,bad-date\n"

func newRunner(h hermes.Client) *Runner {
	return New(scoring.NewScorer(scoring.DefaultOptions(), discardLogger()), h, discardLogger())
}

func TestRun_ScoresAndPublishes(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", mock.MatchedBy(func(s string) bool { return strings.HasSuffix(s, ".completed") }), mock.Anything).Return(nil).Once()
	h.On("Publish", mock.MatchedBy(func(s string) bool { return strings.HasSuffix(s, ".high_risk") }), mock.Anything).Return(nil).Once()

	run, err := newRunner(h).Run(strings.NewReader(sampleCSV), defaultRequest)
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "test.csv", run.Source)
	assert.Equal(t, 4, run.InputRows)
	assert.Equal(t, 1, run.DroppedRows)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "001", run.Results[0].PersonID)
	assert.Equal(t, 87, run.Results[0].Score)

	counts := run.TierCounts()
	assert.Equal(t, 1, counts[scoring.TierHigh])
	assert.Equal(t, 1, counts[scoring.TierModerate])
	assert.Equal(t, 0, counts[scoring.TierLow])

	h.AssertExpectations(t)

	var completed hermes.RunCompletedEvent
	for _, c := range h.Calls {
		if evt, ok := c.Arguments.Get(1).(hermes.RunCompletedEvent); ok {
			completed = evt
		}
	}
	assert.Equal(t, run.ID, completed.RunID)
	assert.Equal(t, "2025-01-20", completed.ReferenceDate)
	assert.Equal(t, 1, completed.High)
}

func TestRun_PublishFailureDoesNotFailRun(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))

	run, err := newRunner(h).Run(strings.NewReader(sampleCSV), defaultRequest)
	require.NoError(t, err)
	assert.Len(t, run.Results, 2)
}

func TestRun_WithoutHermes(t *testing.T) {
	run, err := newRunner(nil).Run(strings.NewReader(sampleCSV), defaultRequest)
	require.NoError(t, err)
	assert.Len(t, run.Results, 2)
}

func TestRun_MissingColumnFailsBeforeScoring(t *testing.T) {
	h := &MockHermes{}

	_, err := newRunner(h).Run(strings.NewReader("id,date\n001,2025-01-02\n"), defaultRequest)
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
	h.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRun_AllRowsDropped(t *testing.T) {
	h := &MockHermes{}
	h.On("Publish", mock.Anything, mock.Anything).Return(nil).Once()

	run, err := newRunner(h).Run(strings.NewReader("aluno_id,data\n001,??\n002,\n"), defaultRequest)
	require.NoError(t, err)
	assert.Nil(t, run.ReferenceDate)
	assert.Empty(t, run.Results)
	assert.Equal(t, 2, run.DroppedRows)
	h.AssertExpectations(t)
}

func TestRun_SetScorerAppliesToNextRun(t *testing.T) {
	rn := newRunner(nil)

	opts := scoring.DefaultOptions()
	opts.Weights.ConsecutiveAbsence = 0
	rn.SetScorer(scoring.NewScorer(opts, discardLogger()))
	assert.Equal(t, 0, rn.Scorer().Options().Weights.ConsecutiveAbsence)

	run, err := rn.Run(strings.NewReader(sampleCSV), defaultRequest)
	require.NoError(t, err)
	require.Len(t, run.Results, 2)
	// 21 + 30 + 0 + 11 without the absence component.
	assert.Equal(t, 62, run.Results[0].Score)
}
