package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/common/metrics"
	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

// CooldownLedger enforces the minimum re-share interval per (user, giveaway, channel).
type CooldownLedger struct {
	store   repository.ShareLedgerStore
	window  time.Duration
	metrics metrics.Recorder
	logger  zerolog.Logger
}

func NewCooldownLedger(store repository.ShareLedgerStore, window time.Duration, rec metrics.Recorder, logger zerolog.Logger) *CooldownLedger {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &CooldownLedger{store: store, window: window, metrics: rec, logger: logger}
}

func (l *CooldownLedger) Window() time.Duration {
	return l.window
}

// CanShare reports whether key may be shared at now. A pair that was never
// shared is always allowed.
func (l *CooldownLedger) CanShare(ctx context.Context, key models.ShareKey, now time.Time) (models.CooldownStatus, error) {
	last, err := l.store.LastShare(ctx, key)
	if err != nil {
		return models.CooldownStatus{}, err
	}
	return cooldownStatus(key.Channel, last, now, l.window), nil
}

// RecordShare re-checks the cooldown and records the share in one step.
// When the pair is still cooling down nothing is written and the returned
// status carries the remaining hours, with ErrCooldownActive.
func (l *CooldownLedger) RecordShare(ctx context.Context, key models.ShareKey, now time.Time) (*models.ShareEvent, models.CooldownStatus, error) {
	ev, err := l.store.RecordShare(ctx, key, now, l.window)
	if errors.Is(err, repository.ErrCooldownActive) {
		l.metrics.CooldownRejected(string(key.Channel))
		return nil, cooldownStatus(key.Channel, ev, now, l.window), err
	}
	if err != nil {
		return nil, models.CooldownStatus{}, err
	}

	l.metrics.ShareRecorded(string(key.Channel))
	l.logger.Debug().
		Int64("user_id", key.UserID).
		Str("giveaway_id", key.GiveawayID).
		Str("channel", string(key.Channel)).
		Int64("count", ev.Count).
		Msg("Share recorded")
	return ev, cooldownStatus(key.Channel, ev, now, l.window), nil
}

// Last returns the current row of key, nil when it was never shared.
func (l *CooldownLedger) Last(ctx context.Context, key models.ShareKey) (*models.ShareEvent, error) {
	return l.store.LastShare(ctx, key)
}

// Revert puts key back to previous if recorded is still its latest write.
func (l *CooldownLedger) Revert(ctx context.Context, key models.ShareKey, recorded models.ShareEvent, previous *models.ShareEvent) error {
	if err := l.store.RevertShare(ctx, key, recorded, previous); err != nil {
		return err
	}
	l.logger.Debug().
		Int64("user_id", key.UserID).
		Str("giveaway_id", key.GiveawayID).
		Str("channel", string(key.Channel)).
		Msg("Share reverted")
	return nil
}

func (l *CooldownLedger) History(ctx context.Context, userID int64, giveawayID string) ([]models.ShareEvent, error) {
	return l.store.History(ctx, userID, giveawayID)
}

// AllChannels returns the cooldown status of every channel for one user and giveaway.
func (l *CooldownLedger) AllChannels(ctx context.Context, userID int64, giveawayID string, now time.Time) ([]models.CooldownStatus, error) {
	out := make([]models.CooldownStatus, 0, len(models.Channels))
	for _, ch := range models.Channels {
		st, err := l.CanShare(ctx, models.ShareKey{UserID: userID, GiveawayID: giveawayID, Channel: ch}, now)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func cooldownStatus(channel models.Channel, last *models.ShareEvent, now time.Time, window time.Duration) models.CooldownStatus {
	st := models.CooldownStatus{Channel: channel, Allowed: true}
	if last == nil {
		return st
	}

	lastAt := last.Timestamp
	st.PriorShareCount = last.Count
	st.LastSharedAt = &lastAt

	elapsed := now.Sub(last.Timestamp)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= window {
		return st
	}
	st.Allowed = false
	st.HoursRemaining = ceilHours(window - elapsed)
	return st
}

// ceilHours rounds up so a countdown showing 1h never re-enables early.
func ceilHours(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Hour - 1) / time.Hour)
}
