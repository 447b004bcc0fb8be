package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ShareRecorded("twitter")
	c.ShareRecorded("twitter")
	c.CooldownRejected("discord")
	c.EntriesAwarded(2)
	c.EntriesAwarded(0)
	c.Confirmation("committed")
	c.PhaseTransition("selecting-winner")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sharesRecorded.WithLabelValues("twitter")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cooldownRejected.WithLabelValues("discord")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.entriesAwarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.confirmations.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.phaseTransitions.WithLabelValues("selecting-winner")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.EntriesAwarded(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "giveaway_entries_awarded_total 3")
}
