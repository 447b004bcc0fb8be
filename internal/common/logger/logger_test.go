package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitWithWriter_LevelAndServiceField(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "entry-engine", false)

	Debug().Msg("hidden")
	Info().Str("giveaway_id", "g1").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "service:entry-engine")
	assert.Contains(t, out, "giveaway_id:g1")
}

func TestInitWithWriter_DebugEnabled(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "entry-engine", true)

	l := Component("ledger")
	l.Debug().Msg("tick")

	assert.Contains(t, buf.String(), "tick")
	assert.Contains(t, buf.String(), "component:ledger")
}
