package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nanohard/petal-lottery-bot/pkg/db"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
	"github.com/nanohard/petal-lottery-bot/pkg/squad"
)

type SquadService struct {
	events EventRepository
	scores ScoreRepository
	biomes []string
}

func NewSquadService(events EventRepository, scores ScoreRepository, biomes []string) *SquadService {
	return &SquadService{
		events: events,
		scores: scores,
		biomes: append([]string(nil), biomes...),
	}
}

// Build splits the winners of a drawn event into two squads balanced on
// their biome score. Winners without a score record count as 0 with no egg.
func (s *SquadService) Build(ctx context.Context, eventID, biome string) (squad.Squads, error) {
	if !contains(s.biomes, biome) {
		return squad.Squads{}, fmt.Errorf("%w: %q", ErrUnknownBiome, biome)
	}

	event, err := s.events.FindEvent(ctx, eventID)
	if errors.Is(err, db.ErrNotFound) {
		return squad.Squads{}, ErrEventNotFound
	}
	if err != nil {
		return squad.Squads{}, fmt.Errorf("s.events.FindEvent -> %w", err)
	}
	if !event.Drawn() {
		return squad.Squads{}, ErrNotDrawn
	}

	records := make(map[string]models.Score, len(event.Winners))
	for _, id := range event.Winners {
		score, err := s.scores.FindScore(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			continue
		}
		if err != nil {
			return squad.Squads{}, fmt.Errorf("s.scores.FindScore -> %w", err)
		}
		records[id] = score
	}

	return squad.Build(event.Winners, func(id string) squad.Member {
		r := records[id]
		return squad.Member{ID: id, Egg: r.Egg, Score: r.BiomeScore(biome)}
	}), nil
}
