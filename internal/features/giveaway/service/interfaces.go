package service

import (
	"context"
	"time"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

// EntryService is the surface the HTTP layer talks to. Every call reads the
// injected clock once, so one request sees one instant.
type EntryService interface {
	View(ctx context.Context, giveawayID string, userID int64) (*models.GiveawayView, error)
	List(ctx context.Context, userID int64) ([]*models.GiveawayView, error)
	Countdown(ctx context.Context, giveawayID string) (models.Countdown, models.Phase, error)

	CanShare(ctx context.Context, giveawayID string, userID int64, channel models.Channel) (models.CooldownStatus, error)
	RecordShare(ctx context.Context, giveawayID string, userID int64, channel models.Channel) (models.CooldownStatus, error)
	AwardEntries(ctx context.Context, giveawayID string, userID int64, channels []models.Channel) (*models.AwardResult, error)
	ShareHistory(ctx context.Context, giveawayID string, userID int64) ([]models.ShareEvent, error)

	Finish(ctx context.Context, giveawayID string, winner models.Winner) (*models.Giveaway, error)

	OpenSession(ctx context.Context, giveawayID string, userID int64) (models.SessionSnapshot, error)
	GetSession(ctx context.Context, sessionID string, userID int64) (models.SessionSnapshot, error)
	ShareOnChannel(ctx context.Context, sessionID string, userID int64, channel models.Channel) (models.CooldownStatus, models.SessionSnapshot, error)
	ConfirmSession(ctx context.Context, sessionID string, userID int64) (*models.Confirmation, error)
	CancelSession(ctx context.Context, sessionID string, userID int64) error

	Channels() []models.Channel
}

// TickerService is the lifecycle of the background tick loop.
type TickerService interface {
	Start()
	Stop()
	Subscribe() (<-chan time.Time, func())
}
