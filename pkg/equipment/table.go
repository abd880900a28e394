package equipment

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var ErrInvalidTable = errors.New("invalid equipment table")

// Definition holds the base score per biome and the bonuses an item grants
// to other items selected alongside it.
type Definition struct {
	Scores map[string]float64
	Effect map[Key]map[string]float64
}

// Table maps equipment keys to their definitions.
type Table map[Key]Definition

// Base returns the base score of k in biome, or 0 when either is unknown.
func (t Table) Base(k Key, biome string) float64 {
	return t[k].Scores[biome]
}

// Has reports whether k is defined.
func (t Table) Has(k Key) bool {
	_, ok := t[k]
	return ok
}

// LoadTable reads an equipment table from a JSON file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile -> %w", err)
	}
	return ParseTable(data)
}

// ParseTable reads an equipment table shaped like
//
//	{"Ultra Fang": {"scores": {"Desert": 2}, "effect": {"Ultra Wing": {"scores": {"Desert": 1}}}}}
func ParseTable(data []byte) (Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidTable)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidTable)
	}

	table := make(Table)
	var err error
	root.ForEach(func(name, v gjson.Result) bool {
		if !v.IsObject() {
			err = fmt.Errorf("%w: entry %q is not an object", ErrInvalidTable, name.String())
			return false
		}
		def := Definition{
			Scores: biomeScores(v.Get("scores")),
			Effect: make(map[Key]map[string]float64),
		}
		v.Get("effect").ForEach(func(target, e gjson.Result) bool {
			def.Effect[Key(target.String())] = biomeScores(e.Get("scores"))
			return true
		})
		table[Key(name.String())] = def
		return true
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

func biomeScores(v gjson.Result) map[string]float64 {
	scores := make(map[string]float64)
	v.ForEach(func(biome, score gjson.Result) bool {
		scores[biome.String()] = score.Float()
		return true
	})
	return scores
}
