package dto

import (
	"time"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

// FinishRequest is the body of the admin finish action.
type FinishRequest struct {
	WinnerDisplayName string `json:"winner_display_name" binding:"required,min=1,max=64" example:"marta_k"`
	WinnerEntries     int64  `json:"winner_entries" binding:"min=0" example:"31"`
}

func (r FinishRequest) Winner() models.Winner {
	return models.Winner{DisplayName: r.WinnerDisplayName, Entries: r.WinnerEntries}
}

// CountdownResponse is one countdown frame, also sent as an SSE event.
type CountdownResponse struct {
	GiveawayID string           `json:"giveaway_id" example:"sony-wh1000xm5"`
	Status     models.Phase     `json:"status" example:"running"`
	Countdown  models.Countdown `json:"countdown"`
	ServerTime time.Time        `json:"server_time"`
}

// ShareResponse answers a share assertion inside a share session.
type ShareResponse struct {
	Cooldown models.CooldownStatus  `json:"cooldown"`
	Session  models.SessionSnapshot `json:"session"`
}

type ListResponse struct {
	Giveaways []*models.GiveawayView `json:"giveaways"`
	Total     int                    `json:"total"`
}

type HistoryResponse struct {
	GiveawayID string              `json:"giveaway_id"`
	Shares     []models.ShareEvent `json:"shares"`
}

type ChannelsResponse struct {
	Channels []models.Channel `json:"channels"`
}
