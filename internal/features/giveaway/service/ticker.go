package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/common/clock"
	"giveaway-entry-backend/internal/common/metrics"
	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

// Ticker drives everything time-based: it publishes the current instant to
// countdown subscribers, notices phase changes and sweeps idle share flows.
// Countdowns are never mutated in place; subscribers recompute from the
// instant they receive.
type Ticker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	interval time.Duration

	repo     repository.GiveawayRepository
	sessions *SessionRegistry
	clock    clock.Clock
	metrics  metrics.Recorder
	logger   zerolog.Logger

	mu        sync.Mutex
	subs      map[int]chan time.Time
	nextID    int
	phases    map[string]models.Phase
	malformed map[string]bool
}

func NewTicker(repo repository.GiveawayRepository, sessions *SessionRegistry, clk clock.Clock, interval time.Duration, rec metrics.Recorder, logger zerolog.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Ticker{
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
		repo:     repo,
		sessions: sessions,
		clock:    clk,
		metrics:  rec,
		logger:   logger,
		subs:      make(map[int]chan time.Time),
		phases:    make(map[string]models.Phase),
		malformed: make(map[string]bool),
	}
}

func (t *Ticker) Start() {
	t.logger.Info().Dur("interval", t.interval).Msg("Starting ticker")
	t.wg.Add(1)

	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.Tick(t.ctx, t.clock.Now())
			case <-t.ctx.Done():
				return
			}
		}
	}()
}

func (t *Ticker) Stop() {
	t.logger.Info().Msg("Stopping ticker")
	t.cancel()
	t.wg.Wait()

	t.mu.Lock()
	for id, ch := range t.subs {
		close(ch)
		delete(t.subs, id)
	}
	t.mu.Unlock()
	t.logger.Info().Msg("Ticker stopped")
}

// Subscribe returns a channel receiving every tick and a func that detaches
// it. Slow subscribers miss ticks rather than block the loop.
func (t *Ticker) Subscribe() (<-chan time.Time, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan time.Time, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if c, ok := t.subs[id]; ok {
				close(c)
				delete(t.subs, id)
			}
		})
	}
}

func (t *Ticker) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Tick runs one pass at now. It is exported so tests can drive it with a
// manual clock.
func (t *Ticker) Tick(ctx context.Context, now time.Time) {
	t.broadcast(now)
	t.trackPhases(ctx, now)
	if t.sessions != nil {
		if n := t.sessions.Sweep(now); n > 0 {
			t.logger.Debug().Int("removed", n).Msg("Swept idle share sessions")
		}
	}
}

func (t *Ticker) broadcast(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.subs {
		select {
		case ch <- now:
		default:
		}
	}
}

func (t *Ticker) trackPhases(ctx context.Context, now time.Time) {
	giveaways, err := t.repo.List(ctx)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to list giveaways")
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, g := range giveaways {
		phase, err := ResolveStatus(g, now)
		switch {
		case err != nil && !t.malformed[g.ID]:
			// once per record, not once per tick
			t.malformed[g.ID] = true
			t.logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Malformed giveaway timestamps")
		case err == nil:
			delete(t.malformed, g.ID)
		}
		prev, seen := t.phases[g.ID]
		t.phases[g.ID] = phase
		if !seen || prev == phase {
			continue
		}
		t.metrics.PhaseTransition(string(phase))
		t.logger.Info().
			Str("giveaway_id", g.ID).
			Str("from", string(prev)).
			Str("to", string(phase)).
			Msg("Giveaway phase changed")
	}
}
