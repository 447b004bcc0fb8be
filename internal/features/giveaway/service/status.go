package service

import (
	"time"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

// ResolveStatus derives the effective phase of g at now.
//
// A finished giveaway stays finished. A giveaway that has not started yet is
// reported as running: there is no separate upcoming phase. Past endsAt it is
// selecting-winner until the finish action runs. Otherwise the stored phase
// is returned as is.
//
// If a timestamp cannot be parsed the stored phase is returned together with
// the parse error, so callers can log it and still render the record.
func ResolveStatus(g *models.Giveaway, now time.Time) (models.Phase, error) {
	if g.StoredPhase == models.PhaseFinished {
		return models.PhaseFinished, nil
	}

	start, err := g.StartTime()
	if err != nil {
		return g.StoredPhase, err
	}
	end, err := g.EndTime()
	if err != nil {
		return g.StoredPhase, err
	}

	switch {
	case now.Before(start):
		return models.PhaseRunning, nil
	case now.After(end):
		return models.PhaseSelectingWinner, nil
	default:
		return g.StoredPhase, nil
	}
}
