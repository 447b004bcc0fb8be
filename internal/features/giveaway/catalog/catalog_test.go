package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository/memory"
)

func TestDefault(t *testing.T) {
	giveaways, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, giveaways)

	for _, g := range giveaways {
		_, err := g.StartTime()
		assert.NoError(t, err, g.ID)
		_, err = g.EndTime()
		assert.NoError(t, err, g.ID)
	}
}

func TestDecode_KeepsMalformedTimestamps(t *testing.T) {
	giveaways, err := Decode(strings.NewReader(`[
		{"id":"a","title":"A","status":"running","starts_at":"yesterday","ends_at":"2025-09-15T23:59:59Z"}
	]`))
	require.NoError(t, err)
	require.Len(t, giveaways, 1)
	assert.Equal(t, "yesterday", giveaways[0].StartsAt)
}

func TestDecode_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"not json":       `{`,
		"unknown field":  `[{"id":"a","status":"running","color":"red"}]`,
		"null entry":     `[null]`,
		"bad status":     `[{"id":"a","status":"upcoming"}]`,
		"duplicate id":   `[{"id":"a","status":"running"},{"id":"a","status":"running"}]`,
		"missing finish": `[{"id":"a","status":"finished"}]`,
	} {
		_, err := Decode(strings.NewReader(body))
		assert.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"x","status":"running","starts_at":"2025-09-01 00:00:00","ends_at":"2025-09-02 00:00:00"}]`), 0o600))

	giveaways, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, giveaways, 1)
	assert.Equal(t, "x", giveaways[0].ID)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	def, err := LoadFile("")
	require.NoError(t, err)
	assert.NotEmpty(t, def)
}

func TestSeed_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewGiveawayRepository()
	giveaways, err := Default()
	require.NoError(t, err)

	added, err := Seed(ctx, repo, giveaways, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, len(giveaways), added)

	added, err = Seed(ctx, repo, giveaways, zerolog.Nop())
	require.NoError(t, err)
	assert.Zero(t, added)

	g, err := repo.GetByID(ctx, "amazon-gift-card-100")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseFinished, g.StoredPhase)
	require.NotNil(t, g.Winner)
}
