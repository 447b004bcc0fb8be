package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

func TestResolveStatus_PastEndIsSelectingWinner(t *testing.T) {
	g := runningGiveaway("g1")

	status, err := ResolveStatus(g, time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSelectingWinner, status)
}

func TestResolveStatus_FinishedIsTerminal(t *testing.T) {
	g := runningGiveaway("g1")
	g.StoredPhase = models.PhaseFinished
	g.FinishedAt = "2025-09-16T10:00:00Z"

	for _, now := range []time.Time{
		startsAt.Add(-time.Hour),
		midRun,
		endsAt.Add(time.Hour),
		endsAt.AddDate(5, 0, 0),
	} {
		status, err := ResolveStatus(g, now)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseFinished, status, "at %s", now)
	}

	g.EndsAt = "garbage"
	status, err := ResolveStatus(g, midRun)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, status)
}

func TestResolveStatus_PhaseOrdering(t *testing.T) {
	g := runningGiveaway("g1")

	for _, now := range []time.Time{startsAt, midRun, endsAt.Add(-time.Second), endsAt} {
		status, err := ResolveStatus(g, now)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseRunning, status, "at %s", now)
	}
	for _, now := range []time.Time{endsAt.Add(time.Second), endsAt.Add(48 * time.Hour)} {
		status, err := ResolveStatus(g, now)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseSelectingWinner, status, "at %s", now)
	}
}

// A giveaway that has not started is reported as running. There is no
// upcoming phase; changing this must be a deliberate decision.
func TestResolveStatus_NotStartedReportsRunning(t *testing.T) {
	g := runningGiveaway("g1")

	status, err := ResolveStatus(g, startsAt.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.PhaseRunning, status)
}

func TestResolveStatus_MalformedFailsClosed(t *testing.T) {
	g := runningGiveaway("g1")
	g.StoredPhase = models.PhaseSelectingWinner
	g.StartsAt = "not a date"

	status, err := ResolveStatus(g, midRun)
	assert.Error(t, err)
	assert.Equal(t, models.PhaseSelectingWinner, status)

	g.StartsAt = "2025-09-01T00:00:00Z"
	g.EndsAt = "15/09/2025"
	status, err = ResolveStatus(g, midRun)
	assert.Error(t, err)
	assert.Equal(t, models.PhaseSelectingWinner, status)
}
