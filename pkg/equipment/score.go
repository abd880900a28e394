package equipment

import "sort"

// Entry is one line of an inventory.
type Entry struct {
	Name  Key `json:"name"`
	Count int `json:"count"`
}

// Result is the outcome of scoring an inventory for one biome.
type Result struct {
	Score     float64
	UsedSlots int
	UsedItems map[Key]int
	// Selected lists the chosen instances, best first.
	Selected []Key
}

// ItemCount is a key with the number of its instances in use.
type ItemCount struct {
	Name  Key
	Count int
}

// Items returns UsedItems ordered by first selection.
func (r Result) Items() []ItemCount {
	var items []ItemCount
	index := make(map[Key]int)
	for _, k := range r.Selected {
		i, ok := index[k]
		if !ok {
			index[k] = len(items)
			items = append(items, ItemCount{Name: k, Count: 1})
			continue
		}
		items[i].Count++
	}
	return items
}

// Score fills up to slotLimit slots with the highest scoring instances for
// biome and adds the bonuses selected items grant each other.
//
// The choice is greedy on base score only: an item whose value comes from
// bonuses can lose its slot to one with a higher base. Bonuses only count
// for targets that made it into the selection. Unknown keys score 0 but
// still take a slot.
//
// No more than slotLimit instances of one entry can be selected, so each
// entry is expanded to at most that many.
func Score(inventory []Entry, biome string, table Table, slotLimit int) Result {
	slotLimit = max(slotLimit, 0)

	var tokens []Key
	for _, e := range inventory {
		for i := 0; i < min(e.Count, slotLimit); i++ {
			tokens = append(tokens, e.Name)
		}
	}

	sort.SliceStable(tokens, func(i, j int) bool {
		return table.Base(tokens[i], biome) > table.Base(tokens[j], biome)
	})

	selected := tokens
	if slotLimit < len(tokens) {
		selected = tokens[:slotLimit]
	}

	used := make(map[Key]int)
	for _, k := range selected {
		used[k]++
	}

	bonus := make(map[Key]float64)
	for _, k := range selected {
		for target, scores := range table[k].Effect {
			bonus[target] += scores[biome]
		}
	}

	total := 0.0
	for _, k := range selected {
		total += table.Base(k, biome) + bonus[k]
	}

	return Result{
		Score:     total,
		UsedSlots: len(selected),
		UsedItems: used,
		Selected:  append([]Key(nil), selected...),
	}
}
