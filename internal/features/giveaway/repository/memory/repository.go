// Package memory keeps the catalog, counters and cooldown ledger in process memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

type participationKey struct {
	giveawayID string
	userID     int64
}

type GiveawayRepository struct {
	mu             sync.RWMutex
	giveaways      map[string]*models.Giveaway
	order          []string
	participations map[participationKey]models.Participation
}

func NewGiveawayRepository() *GiveawayRepository {
	return &GiveawayRepository{
		giveaways:      make(map[string]*models.Giveaway),
		participations: make(map[participationKey]models.Participation),
	}
}

func (r *GiveawayRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	if err := giveaway.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.giveaways[giveaway.ID]; ok {
		return repository.ErrGiveawayExists
	}
	r.giveaways[giveaway.ID] = clone(giveaway)
	r.order = append(r.order, giveaway.ID)
	return nil
}

func (r *GiveawayRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.giveaways[id]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	return clone(g), nil
}

func (r *GiveawayRepository) List(ctx context.Context) ([]*models.Giveaway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Giveaway, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.giveaways[id]))
	}
	return out, nil
}

func (r *GiveawayRepository) GetParticipation(ctx context.Context, giveawayID string, userID int64) (*models.Participation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.giveaways[giveawayID]; !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	p, ok := r.participations[participationKey{giveawayID, userID}]
	if !ok {
		return &models.Participation{GiveawayID: giveawayID, UserID: userID}, nil
	}
	return &p, nil
}

func (r *GiveawayRepository) ApplyAward(ctx context.Context, giveawayID string, userID int64, award models.Award) (*models.Giveaway, *models.Participation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[giveawayID]
	if !ok {
		return nil, nil, repository.ErrGiveawayNotFound
	}

	key := participationKey{giveawayID, userID}
	p, joined := r.participations[key]
	if !joined {
		p = models.Participation{GiveawayID: giveawayID, UserID: userID}
		g.TotalParticipants++
	}

	p.Entries += award.Entries
	p.Rank = repository.NextRank(p.Rank, g.TotalParticipants, award.RankImprovement)
	g.TotalEntries += award.Entries
	r.participations[key] = p

	return clone(g), &p, nil
}

func (r *GiveawayRepository) Finish(ctx context.Context, giveawayID string, winner models.Winner, finishedAt time.Time) (*models.Giveaway, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.giveaways[giveawayID]
	if !ok {
		return nil, repository.ErrGiveawayNotFound
	}
	if g.StoredPhase == models.PhaseFinished {
		return nil, repository.ErrAlreadyFinished
	}

	g.StoredPhase = models.PhaseFinished
	g.FinishedAt = models.FormatInstant(finishedAt)
	g.Winner = &winner
	return clone(g), nil
}

func clone(g *models.Giveaway) *models.Giveaway {
	c := *g
	if g.MediaURLs != nil {
		c.MediaURLs = append([]string(nil), g.MediaURLs...)
	}
	if g.Winner != nil {
		w := *g.Winner
		c.Winner = &w
	}
	return &c
}

// ShareLedger is the in-memory cooldown ledger. One coalesced row per key.
type ShareLedger struct {
	mu   sync.Mutex
	rows map[models.ShareKey]models.ShareEvent
}

func NewShareLedger() *ShareLedger {
	return &ShareLedger{rows: make(map[models.ShareKey]models.ShareEvent)}
}

func (l *ShareLedger) LastShare(ctx context.Context, key models.ShareKey) (*models.ShareEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev, ok := l.rows[key]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (l *ShareLedger) RecordShare(ctx context.Context, key models.ShareKey, at time.Time, window time.Duration) (*models.ShareEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var last *models.ShareEvent
	if ev, ok := l.rows[key]; ok {
		last = &ev
	}
	if !repository.CooldownElapsed(last, at, window) {
		return last, repository.ErrCooldownActive
	}

	next := models.ShareEvent{Channel: key.Channel, Timestamp: at.UTC(), Count: 1}
	if last != nil {
		next.Count = last.Count + 1
	}
	l.rows[key] = next
	return &next, nil
}

func (l *ShareLedger) RevertShare(ctx context.Context, key models.ShareKey, recorded models.ShareEvent, previous *models.ShareEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, ok := l.rows[key]
	if !ok || !repository.SameShare(cur, recorded) {
		return nil
	}
	if previous == nil {
		delete(l.rows, key)
		return nil
	}
	l.rows[key] = *previous
	return nil
}

func (l *ShareLedger) History(ctx context.Context, userID int64, giveawayID string) ([]models.ShareEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.ShareEvent
	for key, ev := range l.rows {
		if key.UserID == userID && key.GiveawayID == giveawayID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Channel < out[j].Channel
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

var (
	_ repository.GiveawayRepository = (*GiveawayRepository)(nil)
	_ repository.ShareLedgerStore   = (*ShareLedger)(nil)
)
