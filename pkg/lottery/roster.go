package lottery

// Tier is the priority class of a participant.
type Tier int

const (
	TierRegular Tier = iota
	TierPrioritized
	TierLurer
)

func (t Tier) String() string {
	switch t {
	case TierLurer:
		return "lurer"
	case TierPrioritized:
		return "prioritized"
	default:
		return "regular"
	}
}

// Entry is one line of a roster.
type Entry struct {
	UserID string
	Tier   Tier
}

// Roster orders participants for display: lurers, then prioritized users,
// then everyone else. Each block keeps participant order.
func Roster(participants, lurer, prioritized []string) []Entry {
	lurers := toSet(lurer)
	elevated := toSet(prioritized)

	blocks := make([][]Entry, 3)
	for _, id := range unique(participants) {
		switch {
		case lurers[id]:
			blocks[TierLurer] = append(blocks[TierLurer], Entry{UserID: id, Tier: TierLurer})
		case elevated[id]:
			blocks[TierPrioritized] = append(blocks[TierPrioritized], Entry{UserID: id, Tier: TierPrioritized})
		default:
			blocks[TierRegular] = append(blocks[TierRegular], Entry{UserID: id, Tier: TierRegular})
		}
	}

	roster := make([]Entry, 0, len(participants))
	roster = append(roster, blocks[TierLurer]...)
	roster = append(roster, blocks[TierPrioritized]...)
	roster = append(roster, blocks[TierRegular]...)
	return roster
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
