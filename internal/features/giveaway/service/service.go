package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/common/clock"
	"giveaway-entry-backend/internal/common/metrics"
	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

type entryService struct {
	repo     repository.GiveawayRepository
	ledger   *CooldownLedger
	engine   *EntryEngine
	sessions *SessionRegistry
	clock    clock.Clock
	opts     Options
	logger   zerolog.Logger
}

// Deps groups what NewEntryService wires together.
type Deps struct {
	Repo       repository.GiveawayRepository
	Ledger     repository.ShareLedgerStore
	Clock      clock.Clock
	Randomizer RankRandomizer
	Metrics    metrics.Recorder
	Logger     zerolog.Logger

	Options        Options
	SessionIdleTTL time.Duration
}

// NewEntryService returns the service together with its session registry,
// which the ticker sweeps.
func NewEntryService(d Deps) (EntryService, *SessionRegistry) {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Randomizer == nil {
		d.Randomizer = NewRankRandomizer(0)
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Options == (Options{}) {
		d.Options = DefaultOptions()
	}
	if d.SessionIdleTTL <= 0 {
		d.SessionIdleTTL = DefaultSessionIdleTTL
	}

	ledger := NewCooldownLedger(d.Ledger, d.Options.CooldownWindow, d.Metrics, d.Logger)
	engine := NewEntryEngine(d.Repo, ledger, d.Randomizer, d.Options.RankImprovementMax, d.Metrics, d.Logger)
	sessions := NewSessionRegistry(engine, d.Clock, d.SessionIdleTTL)

	return &entryService{
		repo:     d.Repo,
		ledger:   ledger,
		engine:   engine,
		sessions: sessions,
		clock:    d.Clock,
		opts:     d.Options,
		logger:   d.Logger,
	}, sessions
}

func (s *entryService) View(ctx context.Context, giveawayID string, userID int64) (*models.GiveawayView, error) {
	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, g, userID, s.clock.Now())
}

func (s *entryService) List(ctx context.Context, userID int64) ([]*models.GiveawayView, error) {
	giveaways, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	views := make([]*models.GiveawayView, 0, len(giveaways))
	for _, g := range giveaways {
		v, err := s.view(ctx, g, userID, now)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *entryService) view(ctx context.Context, g *models.Giveaway, userID int64, now time.Time) (*models.GiveawayView, error) {
	countdown, status, err := CountdownFor(g, now, s.opts.UrgentThreshold)
	if err != nil {
		s.logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Malformed giveaway timestamps")
	}

	v := &models.GiveawayView{
		Giveaway:  g,
		Status:    status,
		Countdown: countdown,
	}
	if userID == 0 {
		return v, nil
	}

	p, err := s.repo.GetParticipation(ctx, g.ID, userID)
	if err != nil {
		return nil, err
	}
	v.UserEntries = p.Entries
	v.UserRank = p.Rank

	if status == models.PhaseRunning {
		if v.Cooldowns, err = s.ledger.AllChannels(ctx, userID, g.ID, now); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (s *entryService) Countdown(ctx context.Context, giveawayID string) (models.Countdown, models.Phase, error) {
	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return models.Countdown{}, "", err
	}
	countdown, status, err := CountdownFor(g, s.clock.Now(), s.opts.UrgentThreshold)
	if err != nil {
		s.logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Malformed giveaway timestamps")
	}
	return countdown, status, nil
}

func (s *entryService) CanShare(ctx context.Context, giveawayID string, userID int64, channel models.Channel) (models.CooldownStatus, error) {
	if _, err := s.repo.GetByID(ctx, giveawayID); err != nil {
		return models.CooldownStatus{}, err
	}
	key := models.ShareKey{UserID: userID, GiveawayID: giveawayID, Channel: channel}
	return s.engine.CanShare(ctx, key, s.clock.Now())
}

// RecordShare writes a ledger row without crediting entries.
func (s *entryService) RecordShare(ctx context.Context, giveawayID string, userID int64, channel models.Channel) (models.CooldownStatus, error) {
	if _, ok := models.ParseChannel(string(channel)); !ok {
		return models.CooldownStatus{}, fmt.Errorf("%w: %q", ErrUnknownChannel, channel)
	}
	now := s.clock.Now()
	if _, err := s.engine.EnsureOpen(ctx, giveawayID, now); err != nil {
		return models.CooldownStatus{}, err
	}
	key := models.ShareKey{UserID: userID, GiveawayID: giveawayID, Channel: channel}
	_, status, err := s.ledger.RecordShare(ctx, key, now)
	return status, err
}

func (s *entryService) AwardEntries(ctx context.Context, giveawayID string, userID int64, channels []models.Channel) (*models.AwardResult, error) {
	return s.engine.AwardEntries(ctx, giveawayID, userID, channels, s.clock.Now())
}

func (s *entryService) ShareHistory(ctx context.Context, giveawayID string, userID int64) ([]models.ShareEvent, error) {
	if _, err := s.repo.GetByID(ctx, giveawayID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, userID, giveawayID)
}

func (s *entryService) Finish(ctx context.Context, giveawayID string, winner models.Winner) (*models.Giveaway, error) {
	g, err := s.repo.Finish(ctx, giveawayID, winner, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrAlreadyFinished) {
			s.logger.Warn().Str("giveaway_id", giveawayID).Msg("Finish requested twice")
		}
		return nil, err
	}
	s.logger.Info().
		Str("giveaway_id", giveawayID).
		Str("winner", winner.DisplayName).
		Msg("Giveaway finished")
	return g, nil
}

func (s *entryService) OpenSession(ctx context.Context, giveawayID string, userID int64) (models.SessionSnapshot, error) {
	gate, err := s.sessions.Open(ctx, giveawayID, userID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return gate.Snapshot(), nil
}

func (s *entryService) GetSession(_ context.Context, sessionID string, userID int64) (models.SessionSnapshot, error) {
	gate, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.SessionSnapshot{}, err
	}
	return gate.Snapshot(), nil
}

func (s *entryService) ShareOnChannel(ctx context.Context, sessionID string, userID int64, channel models.Channel) (models.CooldownStatus, models.SessionSnapshot, error) {
	gate, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return models.CooldownStatus{}, models.SessionSnapshot{}, err
	}
	status, err := gate.ShareOnChannel(ctx, channel)
	if err != nil {
		return models.CooldownStatus{}, models.SessionSnapshot{}, err
	}
	return status, gate.Snapshot(), nil
}

func (s *entryService) ConfirmSession(ctx context.Context, sessionID string, userID int64) (*models.Confirmation, error) {
	gate, err := s.sessions.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return gate.Confirm(ctx)
}

func (s *entryService) CancelSession(_ context.Context, sessionID string, userID int64) error {
	return s.sessions.Cancel(sessionID, userID)
}

func (s *entryService) Channels() []models.Channel {
	return append([]models.Channel(nil), models.Channels...)
}
