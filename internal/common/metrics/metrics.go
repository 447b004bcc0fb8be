// Package metrics exposes Prometheus counters for the entry engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the subset of metrics the engine services report to.
type Recorder interface {
	ShareRecorded(channel string)
	CooldownRejected(channel string)
	EntriesAwarded(count int)
	Confirmation(result string)
	PhaseTransition(phase string)
}

type Collector struct {
	sharesRecorded   *prometheus.CounterVec
	cooldownRejected *prometheus.CounterVec
	entriesAwarded   prometheus.Counter
	confirmations    *prometheus.CounterVec
	phaseTransitions *prometheus.CounterVec
	registry         prometheus.Gatherer
}

// NewCollector registers the engine metrics on reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		sharesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_shares_recorded_total",
			Help: "Share events written to the cooldown ledger.",
		}, []string{"channel"}),
		cooldownRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_cooldown_rejections_total",
			Help: "Share attempts rejected because the channel was still cooling down.",
		}, []string{"channel"}),
		entriesAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "giveaway_entries_awarded_total",
			Help: "Entries credited to users after confirmation.",
		}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_confirmations_total",
			Help: "Verification gate confirmations by result.",
		}, []string{"result"}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "giveaway_phase_transitions_total",
			Help: "Effective phase changes observed by the ticker.",
		}, []string{"phase"}),
		registry: reg,
	}

	reg.MustRegister(
		c.sharesRecorded,
		c.cooldownRejected,
		c.entriesAwarded,
		c.confirmations,
		c.phaseTransitions,
	)
	return c
}

func (c *Collector) ShareRecorded(channel string) {
	c.sharesRecorded.WithLabelValues(channel).Inc()
}

func (c *Collector) CooldownRejected(channel string) {
	c.cooldownRejected.WithLabelValues(channel).Inc()
}

func (c *Collector) EntriesAwarded(count int) {
	if count > 0 {
		c.entriesAwarded.Add(float64(count))
	}
}

func (c *Collector) Confirmation(result string) {
	c.confirmations.WithLabelValues(result).Inc()
}

func (c *Collector) PhaseTransition(phase string) {
	c.phaseTransitions.WithLabelValues(phase).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Nop discards everything. Used where metrics are not wired, mostly tests.
type Nop struct{}

func (Nop) ShareRecorded(string)    {}
func (Nop) CooldownRejected(string) {}
func (Nop) EntriesAwarded(int)      {}
func (Nop) Confirmation(string)     {}
func (Nop) PhaseTransition(string)  {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
