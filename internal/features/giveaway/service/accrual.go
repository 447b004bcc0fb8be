package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/common/metrics"
	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

// EntryEngine turns confirmed shares into entries. Each channel earns at most
// one entry per cooldown window: the ledger write is the idempotency key.
type EntryEngine struct {
	repo    repository.GiveawayRepository
	ledger  *CooldownLedger
	rng     RankRandomizer
	rankMax int
	metrics metrics.Recorder
	logger  zerolog.Logger
}

func NewEntryEngine(repo repository.GiveawayRepository, ledger *CooldownLedger, rng RankRandomizer, rankMax int, rec metrics.Recorder, logger zerolog.Logger) *EntryEngine {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &EntryEngine{
		repo:    repo,
		ledger:  ledger,
		rng:     rng,
		rankMax: rankMax,
		metrics: rec,
		logger:  logger,
	}
}

func (e *EntryEngine) Ledger() *CooldownLedger {
	return e.ledger
}

// EnsureOpen fails with ErrGiveawayClosed unless the giveaway is running at now.
func (e *EntryEngine) EnsureOpen(ctx context.Context, giveawayID string, now time.Time) (*models.Giveaway, error) {
	g, err := e.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	status, err := ResolveStatus(g, now)
	if err != nil {
		e.logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Malformed giveaway timestamps")
	}
	if status != models.PhaseRunning {
		return g, fmt.Errorf("%w: status %s", ErrGiveawayClosed, status)
	}
	return g, nil
}

// CanShare checks the cooldown of one channel.
func (e *EntryEngine) CanShare(ctx context.Context, key models.ShareKey, now time.Time) (models.CooldownStatus, error) {
	if _, ok := models.ParseChannel(string(key.Channel)); !ok {
		return models.CooldownStatus{}, fmt.Errorf("%w: %q", ErrUnknownChannel, key.Channel)
	}
	return e.ledger.CanShare(ctx, key, now)
}

// AwardEntries credits one entry per channel whose cooldown has elapsed and
// records the share for each. Channels still cooling down are returned in
// Rejected with the hours remaining. Repeated channels count once. The
// simulated rank improvement is drawn once per call that awards anything.
//
// The channel set is validated before anything is written. If the award
// cannot be stored, the shares written by this call are reverted so the
// channels stay available for a retry.
func (e *EntryEngine) AwardEntries(ctx context.Context, giveawayID string, userID int64, channels []models.Channel, now time.Time) (*models.AwardResult, error) {
	if _, err := e.EnsureOpen(ctx, giveawayID, now); err != nil {
		return nil, err
	}
	unique, err := uniqueChannels(channels)
	if err != nil {
		return nil, err
	}

	result := &models.AwardResult{GiveawayID: giveawayID}
	var written []writtenShare
	for _, ch := range unique {
		key := models.ShareKey{UserID: userID, GiveawayID: giveawayID, Channel: ch}
		previous, err := e.ledger.Last(ctx, key)
		if err != nil {
			e.rollback(ctx, written)
			return nil, fmt.Errorf("read share %s: %w", key, err)
		}
		ev, status, err := e.ledger.RecordShare(ctx, key, now)
		if errors.Is(err, ErrCooldownActive) {
			result.Rejected = append(result.Rejected, status)
			continue
		}
		if err != nil {
			e.rollback(ctx, written)
			return nil, fmt.Errorf("record share %s: %w", key, err)
		}
		written = append(written, writtenShare{key: key, recorded: *ev, previous: previous})
		result.Awarded = append(result.Awarded, ch)
	}

	var (
		g *models.Giveaway
		p *models.Participation
	)
	if len(result.Awarded) > 0 {
		award := models.Award{
			Entries:         int64(len(result.Awarded)),
			RankImprovement: int64(e.rng.IntN(e.rankMax + 1)),
		}
		g, p, err = e.repo.ApplyAward(ctx, giveawayID, userID, award)
		if err != nil {
			e.rollback(ctx, written)
			return nil, fmt.Errorf("apply award: %w", err)
		}
		e.metrics.EntriesAwarded(len(result.Awarded))
		e.logger.Info().
			Int64("user_id", userID).
			Str("giveaway_id", giveawayID).
			Int("entries", len(result.Awarded)).
			Int64("rank_improvement", award.RankImprovement).
			Msg("Entries awarded")
	} else {
		if g, err = e.repo.GetByID(ctx, giveawayID); err != nil {
			return nil, err
		}
		if p, err = e.repo.GetParticipation(ctx, giveawayID, userID); err != nil {
			return nil, err
		}
	}

	result.UserEntries = p.Entries
	result.UserRank = p.Rank
	result.TotalEntries = g.TotalEntries
	result.TotalParticipants = g.TotalParticipants
	return result, nil
}

type writtenShare struct {
	key      models.ShareKey
	recorded models.ShareEvent
	previous *models.ShareEvent
}

// rollback reverts shares whose entries were never credited. It runs even
// when ctx is already cancelled.
func (e *EntryEngine) rollback(ctx context.Context, written []writtenShare) {
	ctx = context.WithoutCancel(ctx)
	for i := len(written) - 1; i >= 0; i-- {
		w := written[i]
		if err := e.ledger.Revert(ctx, w.key, w.recorded, w.previous); err != nil {
			e.logger.Error().Err(err).Str("share", w.key.String()).Msg("Failed to revert share")
		}
	}
}

// uniqueChannels drops repeats, keeping the first-seen order, and fails on
// the first unknown channel.
func uniqueChannels(channels []models.Channel) ([]models.Channel, error) {
	seen := make(map[models.Channel]bool, len(channels))
	out := make([]models.Channel, 0, len(channels))
	for _, raw := range channels {
		ch, ok := models.ParseChannel(string(raw))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, raw)
		}
		if seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	return out, nil
}
