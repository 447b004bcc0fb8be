package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"giveaway-entry-backend/internal/common/clock"
	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
	"giveaway-entry-backend/internal/features/giveaway/repository/memory"
)

var errStorageDown = errors.New("storage down")

// failingAwards fails the next `failures` ApplyAward calls.
type failingAwards struct {
	*memory.GiveawayRepository
	failures int
}

func (r *failingAwards) ApplyAward(ctx context.Context, giveawayID string, userID int64, award models.Award) (*models.Giveaway, *models.Participation, error) {
	if r.failures > 0 {
		r.failures--
		return nil, nil, errStorageDown
	}
	return r.GiveawayRepository.ApplyAward(ctx, giveawayID, userID, award)
}

var (
	startsAt = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	endsAt   = time.Date(2025, 9, 15, 23, 59, 59, 0, time.UTC)
	midRun   = time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
)

// fixedRand always draws the same improvement, capped to the requested range.
type fixedRand int

func (f fixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func runningGiveaway(id string) *models.Giveaway {
	return &models.Giveaway{
		ID:                id,
		Title:             "Wireless headphones",
		Prize:             "Headphones",
		Sponsor:           "Acme",
		StoredPhase:       models.PhaseRunning,
		StartsAt:          "2025-09-01T00:00:00Z",
		EndsAt:            "2025-09-15T23:59:59Z",
		TotalEntries:      100,
		TotalParticipants: 40,
	}
}

type fixture struct {
	repo     *memory.GiveawayRepository
	store    *memory.ShareLedger
	clock    *clock.Manual
	engine   *EntryEngine
	sessions *SessionRegistry
	svc      EntryService
}

func newFixture(t *testing.T, rng RankRandomizer) *fixture {
	t.Helper()
	return newFixtureWith(t, rng, nil)
}

// newFixtureWith routes the engine through wrap(repo) when wrap is set; the
// fixture keeps reading the underlying memory repository.
func newFixtureWith(t *testing.T, rng RankRandomizer, wrap func(*memory.GiveawayRepository) repository.GiveawayRepository) *fixture {
	t.Helper()

	repo := memory.NewGiveawayRepository()
	require.NoError(t, repo.Create(context.Background(), runningGiveaway("g1")))

	f := &fixture{
		repo:  repo,
		store: memory.NewShareLedger(),
		clock: clock.NewManual(midRun),
	}
	var engineRepo repository.GiveawayRepository = repo
	if wrap != nil {
		engineRepo = wrap(repo)
	}
	svc, sessions := NewEntryService(Deps{
		Repo:       engineRepo,
		Ledger:     f.store,
		Clock:      f.clock,
		Randomizer: rng,
		Logger:     zerolog.Nop(),
	})
	f.svc = svc
	f.sessions = sessions
	f.engine = sessions.engine
	return f
}

// newFailingAwardFixture builds a fixture whose ApplyAward fails `failures` times.
func newFailingAwardFixture(t *testing.T, failures int) (*fixture, *failingAwards) {
	t.Helper()
	var flaky *failingAwards
	f := newFixtureWith(t, fixedRand(0), func(r *memory.GiveawayRepository) repository.GiveawayRepository {
		flaky = &failingAwards{GiveawayRepository: r, failures: failures}
		return flaky
	})
	return f, flaky
}

func (f *fixture) giveaway(t *testing.T, id string) *models.Giveaway {
	t.Helper()
	g, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return g
}
