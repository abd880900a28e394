package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nanohard/petal-lottery-bot/pkg/lottery"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
	"github.com/nanohard/petal-lottery-bot/pkg/service"
)

const embedColor = 0x00b0f4

func (b *bot) commandCreateLottery(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	ctx := context.Background()
	opts := optionMap(data)
	now := b.now()

	endsAt, err := lottery.ParseEndTime(opts.str("endtime"), now, b.loc)
	if err != nil {
		fail(s, i, false, err)
		return
	}

	event, err := b.lotteries.CreateEvent(ctx, service.NewEvent{
		ID:            fmt.Sprintf("%s-%d", i.ID, now.UnixMilli()),
		Title:         opts.str("title"),
		EndsAt:        endsAt,
		RequiredBiome: opts.str("rqbiome"),
		RequiredScore: opts.number("rqscore"),
		ChannelID:     i.ChannelID,
		CreatedAt:     now,
	})
	if err != nil {
		fail(s, i, false, err)
		return
	}

	err = respond(s, i, message{
		Embeds:     []*discordgo.MessageEmbed{eventEmbed(event)},
		Components: []discordgo.MessageComponent{joinButton(event.ID)},
	})
	if err != nil {
		zap.L().Error("failed to post event", zap.String("event", event.ID), zap.Error(err))
		return
	}

	msg, err := s.InteractionResponse(i)
	if err != nil {
		zap.L().Error("s.InteractionResponse", zap.String("event", event.ID), zap.Error(err))
		return
	}
	if err := b.lotteries.AttachMessage(ctx, event.ID, msg.ChannelID, msg.ID); err != nil {
		zap.L().Error("b.lotteries.AttachMessage", zap.String("event", event.ID), zap.Error(err))
		reply(s, i, true, message{Content: "⚠️ The event was created but its message could not be linked.", Ephemeral: true})
		return
	}

	zap.L().Info("event created", zap.String("event", event.ID), zap.Time("ends_at", event.EndsAt))
}

func (b *bot) commandDrawWinner(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)

	event, draw, err := b.lotteries.Draw(context.Background(), opts.str("eventid"), opts.integer("winners"), b.now())
	if errors.Is(err, lottery.ErrNoParticipants) {
		reply(s, i, false, message{Content: "📭 Nobody entered, the event was removed."})
		return
	}
	if err != nil {
		fail(s, i, false, err)
		return
	}

	reply(s, i, false, message{Content: drawMessage(event.Title, draw)})
	b.refreshEmbed(s, event)

	zap.L().Info("winners drawn", zap.String("event", event.ID), zap.Int("winners", len(draw.Winners)), zap.Int("losers", len(draw.Losers)))
}

func (b *bot) commandLottery(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)
	list := service.List(opts.str("at"))
	op := service.Op(opts.str("edit"))
	user := opts.user("user", data)

	event, changed, err := b.lotteries.EditList(context.Background(), opts.str("id"), list, op, user.ID)
	if err != nil {
		fail(s, i, false, err)
		return
	}

	var content string
	switch {
	case op == service.OpAdd && changed:
		content = fmt.Sprintf("✅ Added %s to **%s**.", mention(user.ID), list)
	case op == service.OpAdd:
		content = fmt.Sprintf("⚠️ %s is already in **%s**.", mention(user.ID), list)
	case changed:
		content = fmt.Sprintf("🗑️ Removed %s from **%s**.", mention(user.ID), list)
	default:
		content = fmt.Sprintf("⚠️ %s is not in **%s**.", mention(user.ID), list)
	}

	reply(s, i, false, message{Content: content})
	if changed {
		b.refreshEmbed(s, event)
	}
}

func (b *bot) commandPrioritize(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)
	user := opts.user("user", data)

	event, err := b.lotteries.Prioritize(context.Background(), opts.str("eventid"), user.ID)
	if err != nil {
		fail(s, i, false, err)
		return
	}

	reply(s, i, false, message{Content: fmt.Sprintf("✅ %s is now prioritized in **%s**.", mention(user.ID), event.Title)})
	b.refreshEmbed(s, event)
}

func (b *bot) buttonJoin(s *discordgo.Session, i *discordgo.Interaction, eventID string) {
	if err := deferReply(s, i, true); err != nil {
		zap.L().Error("deferReply", zap.Error(err))
		return
	}
	user := invoker(i)

	event, err := b.lotteries.Join(context.Background(), eventID, user.ID, b.now())
	if errors.Is(err, service.ErrAlreadyJoined) {
		reply(s, i, true, message{
			Content:    "📌 You already entered. Press the button below to withdraw.",
			Components: []discordgo.MessageComponent{cancelButton(eventID)},
			Ephemeral:  true,
		})
		return
	}
	if err != nil {
		fail(s, i, true, err)
		return
	}

	b.refreshEmbed(s, event)
	reply(s, i, true, message{Content: "✅ Your entry was accepted!", Ephemeral: true})
}

func (b *bot) buttonCancel(s *discordgo.Session, i *discordgo.Interaction, eventID string) {
	if err := deferReply(s, i, true); err != nil {
		zap.L().Error("deferReply", zap.Error(err))
		return
	}

	event, err := b.lotteries.Leave(context.Background(), eventID, invoker(i).ID)
	if errors.Is(err, service.ErrNotJoined) {
		reply(s, i, true, message{Content: "❓ You have not entered, there is nothing to withdraw.", Ephemeral: true})
		return
	}
	if err != nil {
		fail(s, i, true, err)
		return
	}

	b.refreshEmbed(s, event)
	reply(s, i, true, message{Content: "🗑️ Your entry was withdrawn.", Ephemeral: true})
}

// refreshEmbed re-renders the event message after its lists changed.
func (b *bot) refreshEmbed(s *discordgo.Session, event models.Event) {
	if event.MessageID == "" || event.ChannelID == "" {
		return
	}
	_, err := s.ChannelMessageEditEmbeds(event.ChannelID, event.MessageID, []*discordgo.MessageEmbed{eventEmbed(event)})
	if err != nil {
		zap.L().Warn("failed to update event message", zap.String("event", event.ID), zap.Error(err))
	}
}

func joinButton(eventID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "🎟️ Enter", Style: discordgo.PrimaryButton, CustomID: joinPrefix + eventID},
	}}
}

func cancelButton(eventID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "❌ Withdraw", Style: discordgo.DangerButton, CustomID: cancelPrefix + eventID},
	}}
}

func eventEmbed(event models.Event) *discordgo.MessageEmbed {
	biome, score := "-", "-"
	if event.RequiredBiome != "" {
		biome = event.RequiredBiome
	}
	if event.RequiredScore > 0 {
		score = fmt.Sprintf("%g", event.RequiredScore)
	}

	embed := &discordgo.MessageEmbed{
		Title:       event.Title,
		Description: fmt.Sprintf("endtime: <t:%d:f>\nbiome: %s\nscore: %s", event.EndsAt.Unix(), biome, score),
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("participants (%d)", len(event.Participants)), Value: rosterText(event)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: event.ID},
	}
	if event.Drawn() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("winners (%d)", len(event.Winners)),
			Value: joinLines(mentionRows(event.Winners, "🏆 "), fieldLimit),
		})
	}
	return embed
}

// rosterText lists participants by tier: lurer and prioritized first with
// 🔶, then everyone else with 🔷.
func rosterText(event models.Event) string {
	roster := lottery.Roster(event.Participants, event.Lurer, event.Prioritized)
	if len(roster) == 0 {
		return "(none)"
	}
	rows := make([]string, len(roster))
	for n, e := range roster {
		marker := "🔷"
		if e.Tier != lottery.TierRegular {
			marker = "🔶"
		}
		rows[n] = marker + " " + mention(e.UserID)
	}
	return joinLines(rows, fieldLimit)
}

func mentionRows(ids []string, prefix string) []string {
	rows := make([]string, len(ids))
	for n, id := range ids {
		rows[n] = prefix + mention(id)
	}
	return rows
}

func drawMessage(title string, draw lottery.Draw) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎊 Results for **%s**:\n", title)
	fmt.Fprintf(&b, "🏆 **Winners (%d)**:\n%s\n", len(draw.Winners), mentionList(draw.Winners, "(none)"))
	fmt.Fprintf(&b, "😢 **Losers (%d)**:\n%s", len(draw.Losers), mentionList(draw.Losers, "(none)"))
	return b.String()
}
