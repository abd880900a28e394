// Package squad splits lottery winners into two squads of three.
package squad

import "sort"

// Size is the capacity of each squad.
const Size = 3

// Member is a winner with the values squads are balanced on.
type Member struct {
	ID    string
	Egg   int
	Score float64
}

// Squads is the result of Build. Overflow holds winners that did not fit
// once both squads were full.
type Squads struct {
	First    []Member
	Second   []Member
	Overflow []Member
}

// Build seeds the first squad with the three biggest egg holders and the
// second squad with the next ones, then hands out the remaining winners by
// score, always topping up the squad with the lower score sum.
func Build(winners []string, lookup func(id string) Member) Squads {
	var eggHolders, pool []Member
	seen := make(map[string]bool, len(winners))
	for _, id := range winners {
		if seen[id] {
			continue
		}
		seen[id] = true

		m := lookup(id)
		m.ID = id
		if m.Egg > 0 {
			eggHolders = append(eggHolders, m)
		} else {
			pool = append(pool, m)
		}
	}

	sort.SliceStable(eggHolders, func(i, j int) bool {
		return eggHolders[i].Egg > eggHolders[j].Egg
	})

	var s Squads
	for i, m := range eggHolders {
		switch {
		case i < Size:
			s.First = append(s.First, m)
		case len(s.Second) < Size:
			s.Second = append(s.Second, m)
		default:
			s.Overflow = append(s.Overflow, m)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Score > pool[j].Score
	})

	for len(pool) > 0 && (len(s.First) < Size || len(s.Second) < Size) {
		next := pool[0]
		pool = pool[1:]

		switch {
		case len(s.Second) < Size && sum(s.Second) < sum(s.First):
			s.Second = append(s.Second, next)
		case len(s.First) < Size:
			s.First = append(s.First, next)
		default:
			s.Second = append(s.Second, next)
		}
	}
	s.Overflow = append(s.Overflow, pool...)

	return s
}

// IDs returns the ids of members in order.
func IDs(members []Member) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func sum(members []Member) float64 {
	total := 0.0
	for _, m := range members {
		total += m.Score
	}
	return total
}
