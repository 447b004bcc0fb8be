package models

import "time"

// GateState is the state of a verification gate.
type GateState string

const (
	GateSelecting            GateState = "selecting"
	GateAwaitingConfirmation GateState = "awaiting-confirmation"
	GateCommitted            GateState = "committed"
)

// SessionSnapshot is the read model of one share flow.
type SessionSnapshot struct {
	ID              string    `json:"id"`
	GiveawayID      string    `json:"giveaway_id"`
	UserID          int64     `json:"user_id"`
	State           GateState `json:"state"`
	PendingChannels []Channel `json:"pending_channels"`
	// PendingEntries is shown to the user as "pending" until the flow is confirmed.
	PendingEntries int       `json:"pending_entries"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Confirmation is returned by a confirm step.
type Confirmation struct {
	State  GateState    `json:"state"`
	Result *AwardResult `json:"result"`
	// Duplicate is set when the flow had already been committed and nothing new was pending.
	Duplicate bool `json:"duplicate"`
}
