package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
	"github.com/nanohard/petal-lottery-bot/pkg/service"
)

func TestUpdateMessage(t *testing.T) {
	inventory := []equipment.Entry{{Name: "Ultra Fang", Count: 2}, {Name: "Super Wing", Count: 1}}
	report := service.Report{
		Score: models.Score{ID: "u1", Inventory: inventory},
		Results: []service.BiomeResult{
			{Biome: "Desert", Result: equipment.Result{
				Score:     7.5,
				UsedSlots: 3,
				UsedItems: map[equipment.Key]int{"Super Wing": 1, "Ultra Fang": 2},
				Selected:  []equipment.Key{"Super Wing", "Ultra Fang", "Ultra Fang"},
			}},
			{Biome: "Ocean", Result: equipment.Result{UsedItems: map[equipment.Key]int{}}},
		},
	}

	want := "✅ Updated <@u1>'s inventory!\n" +
		"📦 Inventory:\n" +
		"・Ultra Fang ×2\n" +
		"・Super Wing ×1\n" +
		"\n" +
		"📊 score:\n" +
		"・score-Desert: 7.5 (3) ``Super Wing x1, Ultra Fang x2``\n" +
		"・score-Ocean: 0 (0) ````"
	assert.Equal(t, want, updateMessage("u1", report))
}

func TestShowMessage(t *testing.T) {
	record := models.Score{
		ID:        "u1",
		Scores:    map[string]float64{"Ocean": 2, "Desert": 8.5, "Retired": 1},
		Inventory: []equipment.Entry{{Name: "Ultra Fang", Count: 2}},
		Egg:       1,
	}

	want := "📦 <@u1>'s inventory:\n" +
		"・Ultra Fang ×2\n" +
		"🥚 egg: 1\n" +
		"\n" +
		"📊 score:\n" +
		"・score-Desert: 8.5\n" +
		"・score-Ocean: 2"
	assert.Equal(t, want, showMessage(record, []string{"Fire Ant Hell", "Desert", "Ocean"}))
}
