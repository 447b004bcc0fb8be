package service

import (
	"time"

	"giveaway-entry-backend/internal/features/giveaway/models"
)

// endedCountdown is returned whenever no countdown is meaningful.
var endedCountdown = models.Countdown{IsEnded: true}

// Countdown splits the time left until endsAt into days, hours, minutes and
// seconds. It is stateless: the caller passes now on every tick.
//
// Outside the running phase the ended value is returned. The remaining time is
// truncated to whole seconds first, so less than one second left is ended.
// Urgent means running with less than urgentThreshold left.
func Countdown(endsAt time.Time, status models.Phase, now time.Time, urgentThreshold time.Duration) models.Countdown {
	if status != models.PhaseRunning {
		return endedCountdown
	}

	delta := endsAt.Sub(now)
	secs := int64(delta / time.Second)
	if secs <= 0 {
		return endedCountdown
	}

	return models.Countdown{
		Days:     int(secs / 86400),
		Hours:    int(secs % 86400 / 3600),
		Minutes:  int(secs % 3600 / 60),
		Seconds:  int(secs % 60),
		IsEnded:  false,
		IsUrgent: time.Duration(secs)*time.Second < urgentThreshold,
	}
}

// CountdownFor resolves the effective phase and computes the countdown for g.
// A malformed endsAt yields the ended value and the parse error.
func CountdownFor(g *models.Giveaway, now time.Time, urgentThreshold time.Duration) (models.Countdown, models.Phase, error) {
	status, err := ResolveStatus(g, now)
	if err != nil {
		return endedCountdown, status, err
	}
	end, err := g.EndTime()
	if err != nil {
		return endedCountdown, status, err
	}
	return Countdown(end, status, now, urgentThreshold), status, nil
}
