package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidGiveaway    = errors.New("invalid giveaway")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
)

// Phase is the lifecycle phase of a giveaway.
type Phase string

const (
	PhaseRunning         Phase = "running"
	PhaseSelectingWinner Phase = "selecting-winner"
	PhaseFinished        Phase = "finished"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseRunning, PhaseSelectingWinner, PhaseFinished:
		return true
	}
	return false
}

// Giveaway is a catalog record. Timestamps are stored as received and parsed
// on read, so one malformed record cannot break a listing.
type Giveaway struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Prize       string   `json:"prize"`
	Sponsor     string   `json:"sponsor"`
	MediaURLs   []string `json:"media_urls,omitempty"`
	StoredPhase Phase    `json:"status"`
	StartsAt    string   `json:"starts_at"`
	EndsAt      string   `json:"ends_at"`
	FinishedAt  string   `json:"finished_at,omitempty"`

	TotalEntries      int64   `json:"total_entries"`
	TotalParticipants int64   `json:"total_participants"`
	Winner            *Winner `json:"winner,omitempty"`
}

// Winner is the anonymised display name of the winning participant.
type Winner struct {
	DisplayName string `json:"display_name"`
	Entries     int64  `json:"entries"`
}

func (g *Giveaway) StartTime() (time.Time, error) {
	return ParseInstant(g.StartsAt)
}

func (g *Giveaway) EndTime() (time.Time, error) {
	return ParseInstant(g.EndsAt)
}

// Validate checks the record invariants that do not depend on the clock.
// Malformed timestamps are not rejected here; readers fail closed instead.
func (g *Giveaway) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidGiveaway)
	}
	if !g.StoredPhase.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidGiveaway, g.StoredPhase)
	}
	if (g.FinishedAt != "") != (g.StoredPhase == PhaseFinished) {
		return fmt.Errorf("%w: finished_at must be set exactly when status is finished", ErrInvalidGiveaway)
	}
	if g.TotalEntries < 0 || g.TotalParticipants < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidGiveaway)
	}
	start, serr := g.StartTime()
	end, eerr := g.EndTime()
	if serr == nil && eerr == nil && !end.After(start) {
		return fmt.Errorf("%w: ends_at must be after starts_at", ErrInvalidGiveaway)
	}
	return nil
}

var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseInstant parses RFC3339 and zone-less ISO timestamps, returning UTC.
// Zone-less values are taken to be UTC already.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedTimestamp)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// FormatInstant is the canonical stored form of an instant.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Participation holds the per-user counters for one giveaway.
type Participation struct {
	GiveawayID string `json:"giveaway_id"`
	UserID     int64  `json:"user_id"`
	Entries    int64  `json:"entries"`
	// Rank is a simulated position, not an authoritative global order.
	Rank int64 `json:"rank"`
}

func (p *Participation) Joined() bool {
	return p != nil && p.Rank > 0
}

// Award is the counter change applied by one accrual.
type Award struct {
	Entries         int64
	RankImprovement int64
}

// Countdown is the time left until a giveaway ends, split into components.
type Countdown struct {
	Days     int  `json:"days"`
	Hours    int  `json:"hours"`
	Minutes  int  `json:"minutes"`
	Seconds  int  `json:"seconds"`
	IsEnded  bool `json:"is_ended"`
	IsUrgent bool `json:"is_urgent"`
}

// TotalSeconds folds the components back into seconds.
func (c Countdown) TotalSeconds() int64 {
	return int64(c.Days)*86400 + int64(c.Hours)*3600 + int64(c.Minutes)*60 + int64(c.Seconds)
}

// GiveawayView is everything a presentation layer needs to render one giveaway for one user.
type GiveawayView struct {
	*Giveaway
	Status      Phase            `json:"effective_status"`
	Countdown   Countdown        `json:"countdown"`
	UserEntries int64            `json:"user_entries"`
	UserRank    int64            `json:"user_rank,omitempty"`
	Cooldowns   []CooldownStatus `json:"cooldowns,omitempty"`
}
