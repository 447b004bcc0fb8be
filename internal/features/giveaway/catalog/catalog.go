// Package catalog seeds giveaway records into a repository at startup.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"giveaway-entry-backend/internal/features/giveaway/models"
	"giveaway-entry-backend/internal/features/giveaway/repository"
)

//go:embed seed.json
var defaultSeed []byte

// Default returns the built-in catalog.
func Default() ([]*models.Giveaway, error) {
	return Decode(bytes.NewReader(defaultSeed))
}

// LoadFile reads a catalog from path, or the built-in one when path is empty.
func LoadFile(path string) ([]*models.Giveaway, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON array of giveaways. Timestamps stay raw strings; a
// record is rejected only for structural problems, never for an unparseable date.
func Decode(r io.Reader) ([]*models.Giveaway, error) {
	var giveaways []*models.Giveaway
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&giveaways); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(giveaways))
	for i, g := range giveaways {
		if g == nil {
			return nil, fmt.Errorf("catalog entry %d is null", i)
		}
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		if seen[g.ID] {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, g.ID)
		}
		seen[g.ID] = true
	}
	return giveaways, nil
}

// Seed creates every giveaway that is not stored yet and returns how many were added.
func Seed(ctx context.Context, repo repository.GiveawayRepository, giveaways []*models.Giveaway, logger zerolog.Logger) (int, error) {
	added := 0
	for _, g := range giveaways {
		err := repo.Create(ctx, g)
		if errors.Is(err, repository.ErrGiveawayExists) {
			logger.Debug().Str("giveaway_id", g.ID).Msg("Giveaway already seeded")
			continue
		}
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", g.ID, err)
		}
		if _, err := g.StartTime(); err != nil {
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Seeded giveaway has malformed starts_at")
		}
		if _, err := g.EndTime(); err != nil {
			logger.Warn().Err(err).Str("giveaway_id", g.ID).Msg("Seeded giveaway has malformed ends_at")
		}
		added++
	}
	logger.Info().Int("added", added).Int("total", len(giveaways)).Msg("Catalog seeded")
	return added, nil
}
