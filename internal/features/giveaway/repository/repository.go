package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrGiveawayExists   = errors.New("giveaway already exists")
	ErrAlreadyFinished  = errors.New("giveaway already finished")
	// ErrCooldownActive is returned by a conditional RecordShare when the pair is still cooling down.
	ErrCooldownActive = errors.New("share channel is on cooldown")
)

// GiveawayRepository stores the catalog and the entry counters.
type GiveawayRepository interface {
	Create(ctx context.Context, giveaway *models.Giveaway) error
	GetByID(ctx context.Context, id string) (*models.Giveaway, error)
	List(ctx context.Context) ([]*models.Giveaway, error)

	// GetParticipation returns a zero Participation when the user has no entries yet.
	GetParticipation(ctx context.Context, giveawayID string, userID int64) (*models.Participation, error)

	// ApplyAward atomically adds award.Entries to the user's and the giveaway's
	// totals. A first-time participant is appended at rank totalParticipants
	// before the rank improvement is applied; rank never drops below 1.
	ApplyAward(ctx context.Context, giveawayID string, userID int64, award models.Award) (*models.Giveaway, *models.Participation, error)

	// Finish is the external finish action: it sets the stored phase, finishedAt and the winner.
	Finish(ctx context.Context, giveawayID string, winner models.Winner, finishedAt time.Time) (*models.Giveaway, error)
}

// ShareLedgerStore holds coalesced share events per (user, giveaway, channel).
type ShareLedgerStore interface {
	// LastShare returns nil, nil when the pair has never been shared.
	LastShare(ctx context.Context, key models.ShareKey) (*models.ShareEvent, error)

	// RecordShare writes a share at `at` only if the previous one is at least
	// `window` old. The check and the write are one atomic step.
	RecordShare(ctx context.Context, key models.ShareKey, at time.Time, window time.Duration) (*models.ShareEvent, error)

	// RevertShare undoes a RecordShare whose entries could not be credited.
	// The row goes back to previous, or is removed when previous is nil. If the
	// row no longer matches recorded it is left alone.
	RevertShare(ctx context.Context, key models.ShareKey, recorded models.ShareEvent, previous *models.ShareEvent) error

	History(ctx context.Context, userID int64, giveawayID string) ([]models.ShareEvent, error)
}

// SameShare reports whether two ledger rows are the same write.
func SameShare(a, b models.ShareEvent) bool {
	return a.Count == b.Count && a.Timestamp.Equal(b.Timestamp)
}

// CooldownElapsed reports whether a share at `now` is outside the window of `last`.
func CooldownElapsed(last *models.ShareEvent, now time.Time, window time.Duration) bool {
	return last == nil || now.Sub(last.Timestamp) >= window
}

// NextRank applies a rank improvement to the current rank, joining at
// totalParticipants when the user has no rank yet.
func NextRank(current, totalParticipants, improvement int64) int64 {
	rank := current
	if rank <= 0 {
		rank = totalParticipants
	}
	rank -= improvement
	if rank < 1 {
		rank = 1
	}
	return rank
}
