package models

import (
	"time"
)

// Event is a lottery members enter by pressing a button until EndsAt.
// Lurer ids are copied from config on creation and always win.
// Winners stays nil until the draw.
type Event struct {
	ID            string `storm:"id"`
	Title         string
	EndsAt        time.Time
	RequiredBiome string
	RequiredScore float64
	Lurer         []string
	Prioritized   []string
	Participants  []string
	Winners       []string
	ChannelID     string
	MessageID     string
	CreatedAt     time.Time
}

// HasRequirement reports whether entering needs a minimum biome score.
func (e Event) HasRequirement() bool {
	return e.RequiredBiome != "" && e.RequiredScore > 0
}

// Drawn reports whether winners have been picked.
func (e Event) Drawn() bool {
	return e.Winners != nil
}

// Joined reports whether userID entered the event.
func (e Event) Joined(userID string) bool {
	return contains(e.Participants, userID)
}

func contains(s []string, l string) bool {
	for _, v := range s {
		if v == l {
			return true
		}
	}
	return false
}
