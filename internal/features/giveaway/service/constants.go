package service

import "time"

const (
	CooldownWindowHours  = 24 // minimum hours between two awarded shares on one channel
	UrgentThresholdHours = 24 // countdowns below this are flagged urgent
	RankImprovementMax   = 10 // upper bound of the simulated rank gain per award

	DefaultTickInterval   = time.Second
	DefaultSessionIdleTTL = time.Hour
)

// Options are the tunables of the entry engine.
type Options struct {
	CooldownWindow     time.Duration
	UrgentThreshold    time.Duration
	RankImprovementMax int
}

func DefaultOptions() Options {
	return Options{
		CooldownWindow:     CooldownWindowHours * time.Hour,
		UrgentThreshold:    UrgentThresholdHours * time.Hour,
		RankImprovementMax: RankImprovementMax,
	}
}
