package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nanohard/petal-lottery-bot/pkg/squad"
)

func (b *bot) commandCreateSquad(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)

	ctx := context.Background()
	eventID := opts.str("eventid")

	squads, err := b.squads.Build(ctx, eventID, opts.str("biome"))
	if err != nil {
		fail(s, i, false, err)
		return
	}
	event, err := b.lotteries.Get(ctx, eventID)
	if err != nil {
		fail(s, i, false, err)
		return
	}

	reply(s, i, false, message{Content: squadMessage(event.Title, squads)})
}

func squadMessage(title string, squads squad.Squads) string {
	rows := []string{
		fmt.Sprintf("⚔️ **%s**", title),
		squadRow("squad1", squads.First),
		squadRow("squad2", squads.Second),
	}
	if len(squads.Overflow) > 0 {
		rows = append(rows, squadRow("reserve", squads.Overflow))
	}
	return strings.Join(rows, "\n")
}

func squadRow(name string, members []squad.Member) string {
	mentions := make([]string, len(members))
	total := 0.0
	for n, m := range members {
		mentions[n] = mention(m.ID)
		total += m.Score
	}
	return fmt.Sprintf("**%s** (%g): %s", name, total, strings.Join(mentions, " "))
}
