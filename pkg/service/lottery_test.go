package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanohard/petal-lottery-bot/pkg/lottery"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

func TestCreateEvent(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, []string{"lurer"}, biomes, 1)
	ctx := context.Background()

	event, err := svc.CreateEvent(ctx, NewEvent{
		ID:            "e1",
		Title:         "Desert carry",
		EndsAt:        endsAt,
		RequiredBiome: "Desert",
		RequiredScore: 5,
		CreatedAt:     created,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lurer"}, event.Lurer)
	assert.Empty(t, event.Participants)
	assert.False(t, event.Drawn())
	assert.True(t, event.HasRequirement())

	stored, err := svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, event, stored)

	invalid := []struct {
		name string
		in   NewEvent
	}{
		{"no title", NewEvent{ID: "x", EndsAt: endsAt, CreatedAt: created}},
		{"long title", NewEvent{ID: "x", Title: string(make([]rune, 101)), EndsAt: endsAt, CreatedAt: created}},
		{"ends in the past", NewEvent{ID: "x", Title: "t", EndsAt: created.Add(-time.Minute), CreatedAt: created}},
		{"unknown biome", NewEvent{ID: "x", Title: "t", EndsAt: endsAt, CreatedAt: created, RequiredBiome: "Sewers"}},
		{"negative score", NewEvent{ID: "x", Title: "t", EndsAt: endsAt, CreatedAt: created, RequiredScore: -1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateEvent(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestAttachMessage(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, nil, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1")

	require.NoError(t, svc.AttachMessage(ctx, "e1", "c1", "m1"))
	event, err := svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "c1", event.ChannelID)
	assert.Equal(t, "m1", event.MessageID)

	assert.ErrorIs(t, svc.AttachMessage(ctx, "nope", "c1", "m1"), ErrEventNotFound)
}

func TestJoinAndLeave(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, nil, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1")
	open := created.Add(time.Minute)

	event, err := svc.Join(ctx, "e1", "a", open)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, event.Participants)

	_, err = svc.Join(ctx, "e1", "a", open)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = svc.Join(ctx, "e1", "b", endsAt.Add(time.Second))
	assert.ErrorIs(t, err, ErrEntryClosed)

	_, err = svc.Join(ctx, "nope", "a", open)
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Leave(ctx, "e1", "b")
	assert.ErrorIs(t, err, ErrNotJoined)

	event, err = svc.Leave(ctx, "e1", "a")
	require.NoError(t, err)
	assert.Empty(t, event.Participants)
}

func TestJoinScoreRequirement(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, nil, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1", func(in *NewEvent) {
		in.RequiredBiome = "Desert"
		in.RequiredScore = 5
	})
	open := created.Add(time.Minute)

	_, err := svc.Join(ctx, "e1", "unscored", open)
	var reqErr *ScoreRequirementError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0.0, reqErr.Actual)
	assert.Equal(t, "Desert", reqErr.Biome)

	require.NoError(t, store.SaveScore(ctx, models.Score{ID: "weak", Scores: map[string]float64{"Desert": 4, "Ocean": 9}}))
	_, err = svc.Join(ctx, "e1", "weak", open)
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 4.0, reqErr.Actual)

	require.NoError(t, store.SaveScore(ctx, models.Score{ID: "strong", Scores: map[string]float64{"Desert": 5}}))
	_, err = svc.Join(ctx, "e1", "strong", open)
	assert.NoError(t, err)
}

func TestPrioritize(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, nil, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1")
	_, err := svc.Join(ctx, "e1", "a", created)
	require.NoError(t, err)

	_, err = svc.Prioritize(ctx, "e1", "b")
	assert.ErrorIs(t, err, ErrNotJoined)

	event, err := svc.Prioritize(ctx, "e1", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, event.Prioritized)

	_, err = svc.Prioritize(ctx, "e1", "a")
	assert.ErrorIs(t, err, ErrAlreadyPrioritized)
}

func TestEditList(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, []string{"l"}, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1")

	event, changed, err := svc.EditList(ctx, "e1", ListParticipants, OpAdd, "a")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a"}, event.Participants)

	_, changed, err = svc.EditList(ctx, "e1", ListParticipants, OpAdd, "a")
	require.NoError(t, err)
	assert.False(t, changed)

	event, changed, err = svc.EditList(ctx, "e1", ListLurer, OpRemove, "l")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Empty(t, event.Lurer)

	_, changed, err = svc.EditList(ctx, "e1", ListPrioritized, OpRemove, "zzz")
	require.NoError(t, err)
	assert.False(t, changed)

	event, changed, err = svc.EditList(ctx, "e1", ListWinners, OpAdd, "a")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a"}, event.Winners)

	event, changed, err = svc.EditList(ctx, "e1", ListWinners, OpAdd, "b")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"a", "b"}, event.Winners)
	assert.Equal(t, []string{"a", "b"}, event.Participants)

	event, changed, err = svc.EditList(ctx, "e1", ListParticipants, OpRemove, "a")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"b"}, event.Participants)
	assert.Equal(t, []string{"b"}, event.Winners)

	stored, err := svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Subset(t, stored.Participants, stored.Winners)

	_, _, err = svc.EditList(ctx, "e1", List("-1"), OpAdd, "a")
	assert.ErrorIs(t, err, ErrUnknownList)

	_, _, err = svc.EditList(ctx, "nope", ListWinners, OpAdd, "a")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDraw(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, []string{"l"}, biomes, 7)
	ctx := context.Background()
	newEvent(t, svc, "e1")

	for _, id := range []string{"a", "l", "b", "c"} {
		_, err := svc.Join(ctx, "e1", id, created)
		require.NoError(t, err)
	}
	_, err := svc.Prioritize(ctx, "e1", "b")
	require.NoError(t, err)

	_, _, err = svc.Draw(ctx, "e1", 2, created.Add(time.Minute))
	assert.ErrorIs(t, err, ErrEventOpen)

	event, draw, err := svc.Draw(ctx, "e1", 2, endsAt)
	require.NoError(t, err)
	assert.Equal(t, []string{"l", "b"}, draw.Winners)
	assert.Equal(t, []string{"a", "c"}, draw.Losers)
	assert.Equal(t, draw.Winners, event.Winners)

	stored, err := svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.True(t, stored.Drawn())

	_, _, err = svc.Draw(ctx, "e1", 2, endsAt)
	assert.ErrorIs(t, err, ErrAlreadyDrawn)

	_, _, err = svc.Draw(ctx, "nope", 2, endsAt)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDrawWithoutParticipantsDeletesEvent(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, []string{"l"}, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1")

	_, _, err := svc.Draw(ctx, "e1", 0, endsAt.Add(time.Hour))
	assert.ErrorIs(t, err, lottery.ErrNoParticipants)

	_, err = svc.Get(ctx, "e1")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDrawEveryone(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, nil, biomes, 3)
	ctx := context.Background()
	newEvent(t, svc, "e1")
	for _, id := range []string{"a", "b", "c"} {
		_, err := svc.Join(ctx, "e1", id, created)
		require.NoError(t, err)
	}

	_, draw, err := svc.Draw(ctx, "e1", 0, endsAt)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, draw.Winners)
	assert.Empty(t, draw.Losers)
}

func TestJoinLeaveConcurrently(t *testing.T) {
	store := openStore(t)
	svc := NewLotteryService(store, store, nil, biomes, 1)
	ctx := context.Background()
	newEvent(t, svc, "e1")

	const n = 24
	ids := make([]string, n)
	for k := range ids {
		ids[k] = fmt.Sprintf("u%02d", k)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Join(ctx, "e1", id, created)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	event, err := svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, event.Participants)

	var (
		mu      sync.Mutex
		joined  int
		already int
	)
	for k, id := range ids {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Join(ctx, "e1", "late", created)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case errors.Is(err, ErrAlreadyJoined):
				already++
			default:
				t.Errorf("join: %v", err)
			}
		}()
		go func(id string, leave bool) {
			defer wg.Done()
			if leave {
				_, err := svc.Leave(ctx, "e1", id)
				assert.NoError(t, err)
			}
		}(id, k%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, joined)
	assert.Equal(t, n-1, already)

	want := []string{"late"}
	for k, id := range ids {
		if k%2 == 1 {
			want = append(want, id)
		}
	}
	event, err = svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.ElementsMatch(t, want, event.Participants)
}
