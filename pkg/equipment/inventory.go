package equipment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrEntryFormat    = errors.New("entry must look like <Ultra|Super|Unique> <type> <count>")
	ErrDuplicateEntry = errors.New("duplicate equipment")
	ErrUnknownEntry   = errors.New("unknown equipment")
	ErrZeroCount      = errors.New("count must be at least 1")
	ErrCountTooLarge  = fmt.Errorf("count must be at most %d", MaxCount)
)

// MaxCount is the largest count accepted for one entry.
const MaxCount = 9999

var entryPattern = regexp.MustCompile(`(?i)(Ultra|Super|Unique)\s+([a-zA-Z_]+)\s+(\d+)`)

// EntryError describes why one inventory entry was rejected.
type EntryError struct {
	Input string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// ParseInventory reads comma separated entries such as
// "Ultra Fang 3, super wing 2" and checks each key against table.
// Every rejected entry is reported; the inventory is only valid when the
// returned slice of errors is empty.
func ParseInventory(input string, table Table) ([]Entry, []*EntryError) {
	var (
		inventory []Entry
		problems  []*EntryError
	)
	seen := make(map[Key]bool)

	for _, raw := range strings.Split(input, ",") {
		raw = strings.TrimSpace(raw)

		m := entryPattern.FindStringSubmatch(raw)
		if m == nil {
			problems = append(problems, &EntryError{Input: raw, Err: ErrEntryFormat})
			continue
		}

		rarity, err := ParseRarity(m[1])
		if err != nil {
			problems = append(problems, &EntryError{Input: raw, Err: ErrEntryFormat})
			continue
		}
		key := NewKey(rarity, m[2])
		count, err := strconv.Atoi(m[3])
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			problems = append(problems, &EntryError{Input: raw, Err: ErrEntryFormat})
			continue
		}

		if seen[key] {
			problems = append(problems, &EntryError{Input: string(key), Err: ErrDuplicateEntry})
			continue
		}
		seen[key] = true

		if !table.Has(key) {
			problems = append(problems, &EntryError{Input: string(key), Err: ErrUnknownEntry})
			continue
		}

		if count == 0 {
			problems = append(problems, &EntryError{Input: raw, Err: ErrZeroCount})
			continue
		}
		if err != nil || count > MaxCount {
			problems = append(problems, &EntryError{Input: raw, Err: ErrCountTooLarge})
			continue
		}

		inventory = append(inventory, Entry{Name: key, Count: count})
	}

	return inventory, problems
}
