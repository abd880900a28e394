package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
)

var (
	ErrInvalidEvent       = errors.New("invalid event")
	ErrEventNotFound      = errors.New("event not found")
	ErrEntryClosed        = errors.New("entry period has ended")
	ErrAlreadyJoined      = errors.New("already joined")
	ErrNotJoined          = errors.New("not a participant")
	ErrAlreadyPrioritized = errors.New("already prioritized")
	ErrEventOpen          = errors.New("event has not ended yet")
	ErrAlreadyDrawn       = errors.New("winners already drawn")
	ErrNotDrawn           = errors.New("winners not drawn yet")
	ErrUnknownBiome       = errors.New("unknown biome")
	ErrUnknownList        = errors.New("unknown list")
	ErrScoreNotFound      = errors.New("no inventory recorded")
	ErrNegativeEgg        = errors.New("egg count must not be negative")
)

// ScoreRequirementError is returned when a member's score is below what an
// event asks for.
type ScoreRequirementError struct {
	Biome    string
	Required float64
	Actual   float64
}

func (e *ScoreRequirementError) Error() string {
	return fmt.Sprintf("score %g in %s is below the required %g", e.Actual, e.Biome, e.Required)
}

// InventoryInputError carries every rejected entry of an inventory update.
type InventoryInputError struct {
	Problems []*equipment.EntryError
}

func (e *InventoryInputError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid inventory: " + strings.Join(msgs, "; ")
}
