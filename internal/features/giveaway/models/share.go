package models

import (
	"strconv"
	"strings"
	"time"
)

// Channel is a sharing destination from a fixed set.
type Channel string

const (
	ChannelTwitter  Channel = "twitter"
	ChannelFacebook Channel = "facebook"
	ChannelLinkedIn Channel = "linkedin"
	ChannelReddit   Channel = "reddit"
	ChannelTelegram Channel = "telegram"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelDiscord  Channel = "discord"
	ChannelEmail    Channel = "email"
)

// Channels lists every supported channel in display order.
var Channels = []Channel{
	ChannelTwitter,
	ChannelFacebook,
	ChannelLinkedIn,
	ChannelReddit,
	ChannelTelegram,
	ChannelWhatsApp,
	ChannelDiscord,
	ChannelEmail,
}

func ParseChannel(s string) (Channel, bool) {
	c := Channel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Channels {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// ShareKey identifies one cooldown ledger row.
type ShareKey struct {
	UserID     int64
	GiveawayID string
	Channel    Channel
}

func (k ShareKey) String() string {
	return strconv.FormatInt(k.UserID, 10) + ":" + k.GiveawayID + ":" + string(k.Channel)
}

// ShareEvent is a coalesced ledger row: Count awarded shares, the latest at Timestamp.
type ShareEvent struct {
	Channel   Channel   `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Count     int64     `json:"count"`
}

// CooldownStatus is the answer to "may this user share to this channel now".
type CooldownStatus struct {
	Channel         Channel    `json:"channel"`
	Allowed         bool       `json:"allowed"`
	HoursRemaining  int        `json:"hours_remaining"`
	PriorShareCount int64      `json:"prior_share_count"`
	LastSharedAt    *time.Time `json:"last_shared_at,omitempty"`
}

// AwardResult reports what one accrual did.
type AwardResult struct {
	GiveawayID        string           `json:"giveaway_id"`
	Awarded           []Channel        `json:"awarded"`
	Rejected          []CooldownStatus `json:"rejected,omitempty"`
	UserEntries       int64            `json:"user_entries"`
	UserRank          int64            `json:"user_rank"`
	TotalEntries      int64            `json:"total_entries"`
	TotalParticipants int64            `json:"total_participants"`
}

// EntriesAwarded is the number of entries this accrual credited.
func (r *AwardResult) EntriesAwarded() int {
	if r == nil {
		return 0
	}
	return len(r.Awarded)
}
