package models

import (
	"time"

	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
)

// Score is a Discord user's inventory and the scores derived from it.
// Scores is keyed by biome. Egg is only used to seed squads.
type Score struct {
	ID        string `storm:"id"`
	Scores    map[string]float64
	Inventory []equipment.Entry
	Egg       int
	UpdatedAt time.Time
}

// BiomeScore returns the stored score for biome, 0 if never computed.
func (s Score) BiomeScore(biome string) float64 {
	return s.Scores[biome]
}
