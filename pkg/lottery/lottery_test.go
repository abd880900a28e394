package lottery

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWinners(t *testing.T) {
	participants := []string{"A", "B", "C", "D", "E"}

	t.Run("tiers come first", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 50; i++ {
			draw, err := SelectWinners(participants, []string{"A"}, []string{"B"}, 3, rng)
			require.NoError(t, err)
			require.Len(t, draw.Winners, 3)
			assert.Equal(t, "A", draw.Winners[0])
			assert.Equal(t, "B", draw.Winners[1])
			assert.Contains(t, []string{"C", "D", "E"}, draw.Winners[2])
			assert.Len(t, draw.Losers, 2)
			assert.NotContains(t, draw.Losers, "A")
			assert.NotContains(t, draw.Losers, "B")
			assert.NotContains(t, draw.Losers, draw.Winners[2])
		}
	})

	t.Run("regular tier is drawn uniformly", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		counts := map[string]int{}
		const rounds = 6000
		for i := 0; i < rounds; i++ {
			draw, err := SelectWinners(participants, []string{"A"}, []string{"B"}, 3, rng)
			require.NoError(t, err)
			counts[draw.Winners[2]]++
		}
		for _, id := range []string{"C", "D", "E"} {
			assert.InDelta(t, rounds/3, counts[id], rounds*0.05, "winner %s drawn %d times", id, counts[id])
		}
	})

	t.Run("no count means everyone wins", func(t *testing.T) {
		rng := rand.New(rand.NewSource(3))
		draw, err := SelectWinners(participants, []string{"E"}, []string{"D"}, 0, rng)
		require.NoError(t, err)
		require.Len(t, draw.Winners, 5)
		assert.Equal(t, []string{"E", "D"}, draw.Winners[:2])
		assert.ElementsMatch(t, []string{"A", "B", "C"}, draw.Winners[2:])
		assert.Empty(t, draw.Losers)
	})

	t.Run("count above pool means everyone wins", func(t *testing.T) {
		rng := rand.New(rand.NewSource(4))
		draw, err := SelectWinners(participants, nil, nil, 9, rng)
		require.NoError(t, err)
		assert.ElementsMatch(t, participants, draw.Winners)
		assert.Empty(t, draw.Losers)
	})

	t.Run("lurers are never truncated", func(t *testing.T) {
		rng := rand.New(rand.NewSource(5))
		draw, err := SelectWinners(participants, []string{"C", "D", "E"}, []string{"A"}, 2, rng)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "D", "E"}, draw.Winners)
		assert.Equal(t, []string{"A", "B"}, draw.Losers)
	})

	t.Run("prioritized fill before others", func(t *testing.T) {
		rng := rand.New(rand.NewSource(6))
		draw, err := SelectWinners(participants, nil, []string{"E", "C", "A"}, 2, rng)
		require.NoError(t, err)
		assert.Equal(t, []string{"E", "C"}, draw.Winners)
		assert.Equal(t, []string{"A", "B", "D"}, draw.Losers)
	})

	t.Run("tiers outside the pool are ignored", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		draw, err := SelectWinners([]string{"A", "B"}, []string{"X", "A"}, []string{"A", "Y"}, 1, rng)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, draw.Winners)
		assert.Equal(t, []string{"B"}, draw.Losers)
	})

	t.Run("winners and losers partition participants", func(t *testing.T) {
		rng := rand.New(rand.NewSource(8))
		for count := 0; count <= 6; count++ {
			draw, err := SelectWinners(participants, []string{"B"}, []string{"D"}, count, rng)
			require.NoError(t, err)

			want := count
			if count == 0 || count > len(participants) {
				want = len(participants)
			}
			assert.Len(t, draw.Winners, want)
			assert.ElementsMatch(t, participants, append(append([]string{}, draw.Winners...), draw.Losers...))
		}
	})

	t.Run("losers keep participant order", func(t *testing.T) {
		rng := rand.New(rand.NewSource(9))
		draw, err := SelectWinners(participants, []string{"C"}, nil, 1, rng)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "D", "E"}, draw.Losers)
	})

	t.Run("same seed gives the same draw", func(t *testing.T) {
		first, err := SelectWinners(participants, nil, nil, 2, rand.New(rand.NewSource(11)))
		require.NoError(t, err)
		second, err := SelectWinners(participants, nil, nil, 2, rand.New(rand.NewSource(11)))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("empty pool", func(t *testing.T) {
		_, err := SelectWinners(nil, []string{"A"}, nil, 1, rand.New(rand.NewSource(1)))
		assert.ErrorIs(t, err, ErrNoParticipants)
	})

	t.Run("input is not modified", func(t *testing.T) {
		in := []string{"A", "B", "C", "D", "E"}
		_, err := SelectWinners(in, nil, nil, 2, rand.New(rand.NewSource(12)))
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C", "D", "E"}, in)
	})
}

func TestRoster(t *testing.T) {
	roster := Roster([]string{"r1", "p1", "l1", "r2", "p2"}, []string{"l1", "ghost"}, []string{"p1", "p2", "l1"})

	require.Len(t, roster, 5)
	assert.Equal(t, []Entry{
		{UserID: "l1", Tier: TierLurer},
		{UserID: "p1", Tier: TierPrioritized},
		{UserID: "p2", Tier: TierPrioritized},
		{UserID: "r1", Tier: TierRegular},
		{UserID: "r2", Tier: TierRegular},
	}, roster)
	assert.Equal(t, "lurer", TierLurer.String())
}
