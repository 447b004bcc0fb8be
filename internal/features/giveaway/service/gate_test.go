package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

func TestGate_ConfirmAwardsPendingChannels(t *testing.T) {
	f := newFixture(t, fixedRand(4))
	ctx := context.Background()

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	assert.Equal(t, models.GateSelecting, gate.State())

	for _, ch := range []models.Channel{models.ChannelTwitter, models.ChannelFacebook, models.ChannelTwitter} {
		st, err := gate.ShareOnChannel(ctx, ch)
		require.NoError(t, err)
		assert.True(t, st.Allowed)
	}
	snap := gate.Snapshot()
	assert.Equal(t, models.GateAwaitingConfirmation, snap.State)
	assert.Equal(t, []models.Channel{models.ChannelTwitter, models.ChannelFacebook}, snap.PendingChannels)
	assert.Equal(t, 2, snap.PendingEntries)

	conf, err := gate.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GateCommitted, conf.State)
	assert.False(t, conf.Duplicate)
	assert.EqualValues(t, 2, conf.Result.UserEntries)
	assert.EqualValues(t, 102, conf.Result.TotalEntries)
	assert.EqualValues(t, 37, conf.Result.UserRank)

	assert.Equal(t, models.GateSelecting, gate.State())
	assert.Empty(t, gate.Snapshot().PendingChannels)
}

func TestGate_NoCreditWithoutConfirm(t *testing.T) {
	f := newFixture(t, fixedRand(4))
	ctx := context.Background()

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	_, err = gate.ShareOnChannel(ctx, models.ChannelDiscord)
	require.NoError(t, err)

	g := f.giveaway(t, "g1")
	assert.EqualValues(t, 100, g.TotalEntries)
	p, err := f.repo.GetParticipation(ctx, "g1", 7)
	require.NoError(t, err)
	assert.Zero(t, p.Entries)

	require.NoError(t, f.sessions.Cancel(gate.ID(), 7))
	assert.EqualValues(t, 100, f.giveaway(t, "g1").TotalEntries)

	_, err = f.sessions.Get(gate.ID(), 7)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// the cancelled share did not consume the cooldown
	st, err := f.svc.CanShare(ctx, "g1", 7, models.ChannelDiscord)
	require.NoError(t, err)
	assert.True(t, st.Allowed)
}

func TestGate_EmptyAndDuplicateConfirm(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)

	_, err = gate.Confirm(ctx)
	assert.ErrorIs(t, err, ErrNothingToConfirm)

	_, err = gate.ShareOnChannel(ctx, models.ChannelLinkedIn)
	require.NoError(t, err)
	first, err := gate.Confirm(ctx)
	require.NoError(t, err)

	second, err := gate.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Same(t, first.Result, second.Result)
	assert.EqualValues(t, 101, f.giveaway(t, "g1").TotalEntries)

	gate.Cancel()
	_, err = gate.Confirm(ctx)
	assert.ErrorIs(t, err, ErrNothingToConfirm)
}

func TestGate_CoolingChannelIsNotPending(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	_, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter}, midRun)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	st, err := gate.ShareOnChannel(ctx, models.ChannelTwitter)
	require.NoError(t, err)
	assert.False(t, st.Allowed)
	assert.Equal(t, 22, st.HoursRemaining)
	assert.Equal(t, models.GateSelecting, gate.State())

	_, err = gate.ShareOnChannel(ctx, "fax")
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

// A share asserted in the gate can go stale when the same channel is credited
// elsewhere before confirmation. The commit then reports it as rejected.
func TestGate_ConfirmReportsRacedChannel(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	_, err = gate.ShareOnChannel(ctx, models.ChannelReddit)
	require.NoError(t, err)

	_, err = f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelReddit}, midRun)
	require.NoError(t, err)

	conf, err := gate.Confirm(ctx)
	require.NoError(t, err)
	assert.Empty(t, conf.Result.Awarded)
	require.Len(t, conf.Result.Rejected, 1)
	assert.EqualValues(t, 101, conf.Result.TotalEntries)
}

func TestGate_ClosedGiveaway(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	_, err = gate.ShareOnChannel(ctx, models.ChannelEmail)
	require.NoError(t, err)

	f.clock.Set(endsAt.Add(time.Minute))
	_, err = gate.Confirm(ctx)
	assert.ErrorIs(t, err, ErrGiveawayClosed)
	assert.Equal(t, models.GateAwaitingConfirmation, gate.State(), "failed commit keeps pending shares")

	_, err = f.sessions.Open(ctx, "g1", 8)
	assert.ErrorIs(t, err, ErrGiveawayClosed)
}

func TestSessionRegistry_OwnerAndSweep(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	idle, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	waiting, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	_, err = waiting.ShareOnChannel(ctx, models.ChannelTelegram)
	require.NoError(t, err)

	_, err = f.sessions.Get(idle.ID(), 8)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.sessions.Cancel(idle.ID(), 8), ErrSessionNotFound)

	assert.Zero(t, f.sessions.Sweep(f.clock.Now().Add(30*time.Minute)))
	assert.Equal(t, 1, f.sessions.Sweep(f.clock.Now().Add(2*time.Hour)))
	assert.Equal(t, 1, f.sessions.Len())

	_, err = f.sessions.Get(waiting.ID(), 7)
	assert.NoError(t, err, "awaiting-confirmation sessions are never swept")
}

func TestGate_FailedConfirmCanBeRetried(t *testing.T) {
	f, _ := newFailingAwardFixture(t, 1)
	ctx := context.Background()

	gate, err := f.sessions.Open(ctx, "g1", 7)
	require.NoError(t, err)
	_, err = gate.ShareOnChannel(ctx, models.ChannelTwitter)
	require.NoError(t, err)

	_, err = gate.Confirm(ctx)
	require.ErrorIs(t, err, errStorageDown)
	snap := gate.Snapshot()
	assert.Equal(t, models.GateAwaitingConfirmation, snap.State)
	assert.Equal(t, []models.Channel{models.ChannelTwitter}, snap.PendingChannels)

	conf, err := gate.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Channel{models.ChannelTwitter}, conf.Result.Awarded)
	assert.Empty(t, conf.Result.Rejected)
	assert.EqualValues(t, 1, conf.Result.UserEntries)
	assert.EqualValues(t, 101, f.giveaway(t, "g1").TotalEntries)
}
