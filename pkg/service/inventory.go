package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nanohard/petal-lottery-bot/pkg/config"
	"github.com/nanohard/petal-lottery-bot/pkg/db"
	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

// BiomeResult is the scorer output for one configured biome.
type BiomeResult struct {
	Biome  string
	Result equipment.Result
}

// Report is what an inventory update stored and what it earned.
type Report struct {
	Score   models.Score
	Results []BiomeResult
	// Grants holds the role ids the new scores qualify for.
	Grants []string
}

type InventoryService struct {
	mu     sync.Mutex
	scores ScoreRepository
	table  equipment.Table
	biomes []config.Biome
	grants []config.Grant
	now    func() time.Time
}

func NewInventoryService(scores ScoreRepository, table equipment.Table, biomes []config.Biome, grants []config.Grant) *InventoryService {
	return &InventoryService{
		scores: scores,
		table:  table,
		biomes: append([]config.Biome(nil), biomes...),
		grants: append([]config.Grant(nil), grants...),
		now:    time.Now,
	}
}

// Update replaces the inventory of userID and rescores every configured
// biome. Nothing is stored when any entry is rejected.
func (s *InventoryService) Update(ctx context.Context, userID, input string) (Report, error) {
	inventory, problems := equipment.ParseInventory(input, s.table)
	if len(problems) > 0 {
		return Report{}, &InventoryInputError{Problems: problems}
	}

	results := make([]BiomeResult, 0, len(s.biomes))
	for _, b := range s.biomes {
		results = append(results, BiomeResult{
			Biome:  b.Name,
			Result: equipment.Score(inventory, b.Name, s.table, b.SlotLimit),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.scores.FindScore(ctx, userID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return Report{}, fmt.Errorf("s.scores.FindScore -> %w", err)
	}

	record.ID = userID
	if record.Scores == nil {
		record.Scores = make(map[string]float64)
	}
	for _, r := range results {
		record.Scores[r.Biome] = r.Result.Score
	}
	record.Inventory = inventory
	record.UpdatedAt = s.now().UTC()

	if err := s.scores.SaveScore(ctx, record); err != nil {
		return Report{}, fmt.Errorf("s.scores.SaveScore -> %w", err)
	}

	return Report{
		Score:   record,
		Results: results,
		Grants:  s.RoleGrants(record.Scores),
	}, nil
}

func (s *InventoryService) Show(ctx context.Context, userID string) (models.Score, error) {
	record, err := s.scores.FindScore(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Score{}, ErrScoreNotFound
	}
	if err != nil {
		return models.Score{}, fmt.Errorf("s.scores.FindScore -> %w", err)
	}
	return record, nil
}

// SetEgg stores the egg count of userID, creating the record if needed.
func (s *InventoryService) SetEgg(ctx context.Context, userID string, egg int) (models.Score, error) {
	if egg < 0 {
		return models.Score{}, ErrNegativeEgg
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.scores.FindScore(ctx, userID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return models.Score{}, fmt.Errorf("s.scores.FindScore -> %w", err)
	}

	record.ID = userID
	record.Egg = egg
	record.UpdatedAt = s.now().UTC()
	if err := s.scores.SaveScore(ctx, record); err != nil {
		return models.Score{}, fmt.Errorf("s.scores.SaveScore -> %w", err)
	}

	return record, nil
}

// RoleGrants returns the role of every grant whose threshold any biome
// score reaches, in config order without repeats.
func (s *InventoryService) RoleGrants(scores map[string]float64) []string {
	best := 0.0
	for _, v := range scores {
		best = max(best, v)
	}

	var roles []string
	for _, g := range s.grants {
		if best >= g.Threshold && !contains(roles, g.RoleID) {
			roles = append(roles, g.RoleID)
		}
	}
	return roles
}

// Biomes lists the configured biomes in scoring order.
func (s *InventoryService) Biomes() []string {
	names := make([]string, 0, len(s.biomes))
	for _, b := range s.biomes {
		names = append(names, b.Name)
	}
	return names
}
