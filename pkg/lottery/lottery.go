// Package lottery picks winners for a lottery event.
//
// Participants fall into three tiers. Lurers always win, prioritized users are
// taken next, and everyone else is drawn in a uniformly random order until the
// requested number of winners is reached.
package lottery

import (
	"errors"
	"math/rand"
	"time"
)

var ErrNoParticipants = errors.New("lottery has no participants")

// Draw is the outcome of SelectWinners.
type Draw struct {
	Winners []string
	Losers  []string
}

// NewRand returns a generator for SelectWinners. A zero seed uses the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// SelectWinners draws count winners from participants.
//
// Lurer and prioritized ids that never entered are ignored. A count of zero
// or less, or one covering the whole pool, makes every participant a winner.
// Lurers are never cut, even when they alone exceed count.
func SelectWinners(participants, lurer, prioritized []string, count int, rng *rand.Rand) (Draw, error) {
	pool := unique(participants)
	if len(pool) == 0 {
		return Draw{}, ErrNoParticipants
	}

	entered := make(map[string]bool, len(pool))
	for _, id := range pool {
		entered[id] = true
	}

	claimed := make(map[string]bool)
	lurerIn := claim(lurer, entered, claimed)
	prioritizedIn := claim(prioritized, entered, claimed)

	var others []string
	for _, id := range pool {
		if !claimed[id] {
			others = append(others, id)
		}
	}
	shuffle(others, rng)

	var winners []string
	if count <= 0 || count >= len(pool) {
		winners = append(winners, lurerIn...)
		winners = append(winners, prioritizedIn...)
		winners = append(winners, others...)
	} else {
		winners = append(winners, lurerIn...)
		winners = append(winners, take(prioritizedIn, count-len(winners))...)
		winners = append(winners, take(others, count-len(winners))...)
	}

	won := make(map[string]bool, len(winners))
	for _, id := range winners {
		won[id] = true
	}
	var losers []string
	for _, id := range pool {
		if !won[id] {
			losers = append(losers, id)
		}
	}

	return Draw{Winners: winners, Losers: losers}, nil
}

// claim keeps the ids of tier that entered and were not claimed by a higher tier.
func claim(tier []string, entered, claimed map[string]bool) []string {
	var out []string
	for _, id := range tier {
		if entered[id] && !claimed[id] {
			claimed[id] = true
			out = append(out, id)
		}
	}
	return out
}

func take(ids []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}

// shuffle is a Fisher-Yates shuffle.
func shuffle(ids []string, rng *rand.Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
