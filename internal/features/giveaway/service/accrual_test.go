package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

func TestEntryEngine_AwardTwoChannels(t *testing.T) {
	f := newFixture(t, fixedRand(3))
	ctx := context.Background()

	res, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter, models.ChannelFacebook}, midRun)
	require.NoError(t, err)

	assert.Equal(t, []models.Channel{models.ChannelTwitter, models.ChannelFacebook}, res.Awarded)
	assert.Empty(t, res.Rejected)
	assert.Equal(t, 2, res.EntriesAwarded())
	assert.EqualValues(t, 2, res.UserEntries)
	assert.EqualValues(t, 102, res.TotalEntries)
	assert.EqualValues(t, 41, res.TotalParticipants)
	assert.EqualValues(t, 38, res.UserRank, "joins at 41, improves by 3")
}

func TestEntryEngine_AtMostOneAwardPerWindow(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	_, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter}, midRun)
	require.NoError(t, err)

	res, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter, models.ChannelTwitter}, midRun.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, res.Awarded)
	require.Len(t, res.Rejected, 1)
	assert.Equal(t, 23, res.Rejected[0].HoursRemaining)
	assert.EqualValues(t, 1, res.UserEntries)

	assert.EqualValues(t, 101, f.giveaway(t, "g1").TotalEntries)

	res, err = f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter}, midRun.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, res.Awarded, 1)
	assert.EqualValues(t, 102, res.TotalEntries)
}

func TestEntryEngine_DuplicateChannelsInOneCall(t *testing.T) {
	f := newFixture(t, fixedRand(0))

	res, err := f.engine.AwardEntries(context.Background(), "g1", 7,
		[]models.Channel{models.ChannelEmail, models.ChannelEmail, models.ChannelEmail}, midRun)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UserEntries)
	assert.EqualValues(t, 101, res.TotalEntries)
}

func TestEntryEngine_RankBoundsAndFloor(t *testing.T) {
	f := newFixture(t, NewRankRandomizer(42))
	ctx := context.Background()

	prev := int64(41)
	now := midRun
	for i := 0; i < 20; i++ {
		res, err := f.engine.AwardEntries(ctx, "g1", 9, []models.Channel{models.ChannelTelegram}, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.UserRank, int64(1))
		assert.LessOrEqual(t, res.UserRank, prev)
		assert.GreaterOrEqual(t, res.UserRank, max(1, prev-RankImprovementMax))
		prev = res.UserRank
		now = now.Add(CooldownWindowHours * time.Hour)
		if !now.Before(endsAt) {
			break
		}
	}

	capped := newFixture(t, fixedRand(10))
	res, err := capped.engine.AwardEntries(ctx, "g1", 9, []models.Channel{models.ChannelTelegram}, midRun)
	require.NoError(t, err)
	assert.EqualValues(t, 31, res.UserRank)
	res, err = capped.engine.AwardEntries(ctx, "g1", 9, []models.Channel{models.ChannelWhatsApp}, midRun)
	require.NoError(t, err)
	assert.EqualValues(t, 21, res.UserRank)
	for _, ch := range []models.Channel{models.ChannelDiscord, models.ChannelEmail, models.ChannelReddit} {
		res, err = capped.engine.AwardEntries(ctx, "g1", 9, []models.Channel{ch}, midRun)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, res.UserRank, "rank never drops below 1")
}

func TestEntryEngine_RejectsOutsideRunning(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()

	_, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter}, endsAt.Add(time.Minute))
	assert.ErrorIs(t, err, ErrGiveawayClosed)

	_, err = f.engine.AwardEntries(ctx, "missing", 7, []models.Channel{models.ChannelTwitter}, midRun)
	assert.ErrorIs(t, err, ErrGiveawayNotFound)

	_, err = f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{"myspace"}, midRun)
	assert.ErrorIs(t, err, ErrUnknownChannel)

	assert.EqualValues(t, 100, f.giveaway(t, "g1").TotalEntries)
}

func TestEntryEngine_UnknownChannelWritesNothing(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	ctx := context.Background()
	twitter := models.ShareKey{UserID: 7, GiveawayID: "g1", Channel: models.ChannelTwitter}

	_, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter, "bogus"}, midRun)
	require.ErrorIs(t, err, ErrUnknownChannel)

	last, err := f.store.LastShare(ctx, twitter)
	require.NoError(t, err)
	assert.Nil(t, last, "twitter must not be put on cooldown")

	res, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter}, midRun)
	require.NoError(t, err)
	assert.Equal(t, []models.Channel{models.ChannelTwitter}, res.Awarded)
	assert.EqualValues(t, 101, res.TotalEntries)
}

func TestEntryEngine_FailedAwardRevertsShares(t *testing.T) {
	f, flaky := newFailingAwardFixture(t, 0)
	ctx := context.Background()
	twitter := models.ShareKey{UserID: 7, GiveawayID: "g1", Channel: models.ChannelTwitter}
	facebook := models.ShareKey{UserID: 7, GiveawayID: "g1", Channel: models.ChannelFacebook}

	earlier := midRun.Add(-48 * time.Hour)
	_, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelFacebook}, earlier)
	require.NoError(t, err)

	flaky.failures = 1
	_, err = f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter, models.ChannelFacebook}, midRun)
	require.ErrorIs(t, err, errStorageDown)

	last, err := f.store.LastShare(ctx, twitter)
	require.NoError(t, err)
	assert.Nil(t, last, "first-time share is removed")

	last, err = f.store.LastShare(ctx, facebook)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.EqualValues(t, 1, last.Count, "earlier share is restored")
	assert.True(t, earlier.Equal(last.Timestamp))
	assert.EqualValues(t, 101, f.giveaway(t, "g1").TotalEntries)

	res, err := f.engine.AwardEntries(ctx, "g1", 7, []models.Channel{models.ChannelTwitter, models.ChannelFacebook}, midRun)
	require.NoError(t, err)
	assert.Len(t, res.Awarded, 2)
	assert.Empty(t, res.Rejected)
	assert.EqualValues(t, 3, res.UserEntries)
	assert.EqualValues(t, 103, res.TotalEntries)
}
