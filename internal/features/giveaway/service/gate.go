package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"giveaway-entry-backend/internal/common/clock"
	"giveaway-entry-backend/internal/features/giveaway/models"
)

// Gate is the verification step of one share flow. Shares asserted by the
// user stay pending until Confirm; Cancel drops them without credit.
type Gate struct {
	mu         sync.Mutex
	id         string
	userID     int64
	giveawayID string
	state      models.GateState
	pending    []models.Channel
	// committed is true after a commit until the next share is asserted
	committed  bool
	lastResult *models.AwardResult
	updatedAt  time.Time

	engine *EntryEngine
	clock  clock.Clock
}

func NewGate(engine *EntryEngine, clk clock.Clock, giveawayID string, userID int64) *Gate {
	return &Gate{
		id:         uuid.NewString(),
		userID:     userID,
		giveawayID: giveawayID,
		state:      models.GateSelecting,
		updatedAt:  clk.Now(),
		engine:     engine,
		clock:      clk,
	}
}

func (g *Gate) ID() string { return g.id }

func (g *Gate) State() models.GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ShareOnChannel asserts that the user shared to channel. If the channel is
// still cooling down the returned status has Allowed=false and nothing changes.
func (g *Gate) ShareOnChannel(ctx context.Context, channel models.Channel) (models.CooldownStatus, error) {
	if _, ok := models.ParseChannel(string(channel)); !ok {
		return models.CooldownStatus{}, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if _, err := g.engine.EnsureOpen(ctx, g.giveawayID, now); err != nil {
		return models.CooldownStatus{}, err
	}

	key := models.ShareKey{UserID: g.userID, GiveawayID: g.giveawayID, Channel: channel}
	status, err := g.engine.CanShare(ctx, key, now)
	if err != nil {
		return models.CooldownStatus{}, err
	}
	if !status.Allowed {
		return status, nil
	}

	if !g.isPending(channel) {
		g.pending = append(g.pending, channel)
	}
	g.state = models.GateAwaitingConfirmation
	g.committed = false
	g.updatedAt = now
	return status, nil
}

// Confirm commits every pending channel through the entry engine and returns
// the gate to selecting. With nothing pending it fails with
// ErrNothingToConfirm, unless the flow was just committed, in which case it
// is a no-op that repeats the last result.
func (g *Gate) Confirm(ctx context.Context) (*models.Confirmation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.pending) == 0 {
		if g.committed {
			g.engine.metrics.Confirmation("duplicate")
			return &models.Confirmation{State: models.GateCommitted, Result: g.lastResult, Duplicate: true}, nil
		}
		g.engine.metrics.Confirmation("empty")
		return nil, ErrNothingToConfirm
	}

	now := g.clock.Now()
	result, err := g.engine.AwardEntries(ctx, g.giveawayID, g.userID, g.pending, now)
	if err != nil {
		return nil, err
	}

	g.pending = nil
	g.state = models.GateSelecting
	g.committed = true
	g.lastResult = result
	g.updatedAt = now
	g.engine.metrics.Confirmation("committed")
	return &models.Confirmation{State: models.GateCommitted, Result: result}, nil
}

// Cancel discards pending shares without awarding anything.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pending = nil
	g.state = models.GateSelecting
	g.committed = false
	g.updatedAt = g.clock.Now()
}

func (g *Gate) Snapshot() models.SessionSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	pending := append([]models.Channel{}, g.pending...)
	return models.SessionSnapshot{
		ID:              g.id,
		GiveawayID:      g.giveawayID,
		UserID:          g.userID,
		State:           g.state,
		PendingChannels: pending,
		PendingEntries:  len(pending),
		UpdatedAt:       g.updatedAt,
	}
}

func (g *Gate) isPending(channel models.Channel) bool {
	for _, c := range g.pending {
		if c == channel {
			return true
		}
	}
	return false
}

// idleSince reports whether the gate is selecting and untouched since before cutoff.
func (g *Gate) idleSince(cutoff time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == models.GateSelecting && g.updatedAt.Before(cutoff)
}

// SessionRegistry holds the open share flows by id. Flows live only in memory.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Gate
	engine   *EntryEngine
	clock    clock.Clock
	idleTTL  time.Duration
}

func NewSessionRegistry(engine *EntryEngine, clk clock.Clock, idleTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Gate),
		engine:   engine,
		clock:    clk,
		idleTTL:  idleTTL,
	}
}

// Open starts a flow for a giveaway that is currently running.
func (r *SessionRegistry) Open(ctx context.Context, giveawayID string, userID int64) (*Gate, error) {
	if _, err := r.engine.EnsureOpen(ctx, giveawayID, r.clock.Now()); err != nil {
		return nil, err
	}

	gate := NewGate(r.engine, r.clock, giveawayID, userID)
	r.mu.Lock()
	r.sessions[gate.ID()] = gate
	r.mu.Unlock()
	return gate, nil
}

// Get returns the flow only to the user who opened it.
func (r *SessionRegistry) Get(id string, userID int64) (*Gate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	gate, ok := r.sessions[id]
	if !ok || gate.userID != userID {
		return nil, ErrSessionNotFound
	}
	return gate, nil
}

// Cancel discards the flow and its pending shares.
func (r *SessionRegistry) Cancel(id string, userID int64) error {
	r.mu.Lock()
	gate, ok := r.sessions[id]
	if !ok || gate.userID != userID {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	gate.Cancel()
	return nil
}

// Sweep drops flows that sit in selecting longer than the idle TTL. Flows
// awaiting confirmation are kept regardless of age.
func (r *SessionRegistry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, gate := range r.sessions {
		if gate.idleSince(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
