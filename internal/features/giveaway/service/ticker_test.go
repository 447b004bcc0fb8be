package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-entry-backend/internal/common/metrics"
)

type phaseRecorder struct {
	metrics.Nop
	mu     sync.Mutex
	phases []string
}

func (r *phaseRecorder) PhaseTransition(phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func TestTicker_BroadcastsToSubscribers(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	tk := NewTicker(f.repo, f.sessions, f.clock, time.Second, nil, zerolog.Nop())

	ch, cancel := tk.Subscribe()
	other, cancelOther := tk.Subscribe()
	defer cancelOther()
	assert.Equal(t, 2, tk.Subscribers())

	tk.Tick(context.Background(), midRun)
	assert.Equal(t, midRun, <-ch)
	assert.Equal(t, midRun, <-other)

	// a subscriber that does not drain misses ticks instead of blocking
	tk.Tick(context.Background(), midRun.Add(time.Second))
	tk.Tick(context.Background(), midRun.Add(2*time.Second))
	assert.Equal(t, midRun.Add(time.Second), <-ch)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 1, tk.Subscribers())
}

func TestTicker_RecordsPhaseTransitions(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	rec := &phaseRecorder{}
	tk := NewTicker(f.repo, f.sessions, f.clock, time.Second, rec, zerolog.Nop())
	ctx := context.Background()

	tk.Tick(ctx, midRun)
	tk.Tick(ctx, endsAt.Add(-time.Second))
	assert.Empty(t, rec.phases, "first observation and unchanged phases are not transitions")

	tk.Tick(ctx, endsAt.Add(time.Second))
	tk.Tick(ctx, endsAt.Add(2*time.Second))
	assert.Equal(t, []string{"selecting-winner"}, rec.phases)
}

func TestTicker_WarnsOncePerMalformedGiveaway(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	broken := runningGiveaway("broken")
	broken.EndsAt = "15/09/2025"
	require.NoError(t, f.repo.Create(context.Background(), broken))

	var buf bytes.Buffer
	tk := NewTicker(f.repo, f.sessions, f.clock, time.Second, nil, zerolog.New(&buf))
	for i := 0; i < 5; i++ {
		tk.Tick(context.Background(), midRun.Add(time.Duration(i)*time.Second))
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "Malformed giveaway timestamps"))
	assert.Contains(t, buf.String(), `"giveaway_id":"broken"`)
}

func TestTicker_SweepsIdleSessions(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	tk := NewTicker(f.repo, f.sessions, f.clock, time.Second, nil, zerolog.Nop())

	_, err := f.sessions.Open(context.Background(), "g1", 7)
	require.NoError(t, err)

	tk.Tick(context.Background(), midRun.Add(DefaultSessionIdleTTL+time.Second))
	assert.Zero(t, f.sessions.Len())
}

func TestTicker_StartStop(t *testing.T) {
	f := newFixture(t, fixedRand(0))
	tk := NewTicker(f.repo, f.sessions, f.clock, 10*time.Millisecond, nil, zerolog.Nop())

	ch, _ := tk.Subscribe()
	tk.Start()

	select {
	case now := <-ch:
		assert.Equal(t, midRun, now)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}

	tk.Stop()
	for range ch {
	}
	assert.Zero(t, tk.Subscribers())
}
