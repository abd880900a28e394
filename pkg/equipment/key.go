// Package equipment scores a player's petal inventory for a biome.
package equipment

import (
	"fmt"
	"strings"
)

// Rarity is the tier prefix of an equipment key.
type Rarity string

const (
	Ultra  Rarity = "Ultra"
	Super  Rarity = "Super"
	Unique Rarity = "Unique"
)

// Rarities lists the rarities accepted in inventory input.
var Rarities = []Rarity{Ultra, Super, Unique}

// ParseRarity matches s against the known rarities, ignoring case.
func ParseRarity(s string) (Rarity, error) {
	for _, r := range Rarities {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown rarity %q", s)
}

// Key identifies an equipment definition, e.g. "Ultra Fang".
type Key string

// NewKey joins a rarity and a type name.
func NewKey(r Rarity, kind string) Key {
	return Key(string(r) + " " + kind)
}

func (k Key) String() string {
	return string(k)
}
