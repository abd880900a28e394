package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

func TestEventRowKeepsUndrawnState(t *testing.T) {
	event := models.Event{
		ID:           "1-2",
		Title:        "t",
		EndsAt:       time.Date(2025, 7, 20, 3, 0, 0, 0, time.UTC),
		Participants: []string{"a"},
	}

	row, err := newEventRow(event)
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(row.Winners))

	got, err := row.event()
	require.NoError(t, err)
	assert.False(t, got.Drawn())
	assert.Equal(t, []string{"a"}, got.Participants)

	event.Winners = []string{}
	row, err = newEventRow(event)
	require.NoError(t, err)
	got, err = row.event()
	require.NoError(t, err)
	assert.True(t, got.Drawn())
}

func TestScoreRow(t *testing.T) {
	score := models.Score{
		ID:        "u1",
		Scores:    map[string]float64{"Desert": 4},
		Inventory: []equipment.Entry{{Name: "Super Wing", Count: 2}},
		Egg:       1,
		UpdatedAt: time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC),
	}

	row, err := newScoreRow(score)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Super Wing","count":2}]`, string(row.Inventory))

	got, err := row.score()
	require.NoError(t, err)
	assert.Equal(t, score, got)
}
