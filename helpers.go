package main

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nanohard/petal-lottery-bot/pkg/lottery"
	"github.com/nanohard/petal-lottery-bot/pkg/service"
)

const (
	messageLimit = 2000
	fieldLimit   = 1024
)

// noMentions keeps rendered <@id> tags from pinging anyone.
var noMentions = &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}

type message struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
	// Ping lets mentions in Content notify their users.
	Ping bool
}

func (m message) flags() discordgo.MessageFlags {
	if m.Ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (m message) allowedMentions() *discordgo.MessageAllowedMentions {
	if m.Ping {
		return nil
	}
	return noMentions
}

func respond(s *discordgo.Session, i *discordgo.Interaction, m message) error {
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         clip(m.Content, messageLimit),
			Embeds:          m.Embeds,
			Components:      m.Components,
			Flags:           m.flags(),
			AllowedMentions: m.allowedMentions(),
		},
	})
}

// deferReply acknowledges i so the answer can come later with followUp.
func deferReply(s *discordgo.Session, i *discordgo.Interaction, ephemeral bool) error {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	return s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
}

func followUp(s *discordgo.Session, i *discordgo.Interaction, m message) error {
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content:         clip(m.Content, messageLimit),
		Embeds:          m.Embeds,
		Components:      m.Components,
		Flags:           m.flags(),
		AllowedMentions: m.allowedMentions(),
	})
	return err
}

// reply answers i directly or, when it was deferred, with a follow-up.
func reply(s *discordgo.Session, i *discordgo.Interaction, deferred bool, m message) {
	var err error
	if deferred {
		err = followUp(s, i, m)
	} else {
		err = respond(s, i, m)
	}
	if err != nil {
		zap.L().Error("failed to answer interaction", zap.String("interaction", i.ID), zap.Error(err))
	}
}

// fail answers with the user facing text of err. Unexpected errors are
// logged and answered with a generic message.
func fail(s *discordgo.Session, i *discordgo.Interaction, deferred bool, err error) {
	text, known := errorText(err)
	if !known {
		zap.L().Error("interaction failed", zap.String("interaction", i.ID), zap.String("user", invoker(i).ID), zap.Error(err))
	}
	reply(s, i, deferred, message{Content: text, Ephemeral: true})
}

func errorText(err error) (string, bool) {
	var (
		reqErr   *service.ScoreRequirementError
		inputErr *service.InventoryInputError
	)
	switch {
	case errors.As(err, &reqErr):
		return fmt.Sprintf("❌ Your score (%g) does not meet this event's requirement (%s: %g).", reqErr.Actual, reqErr.Biome, reqErr.Required), true
	case errors.As(err, &inputErr):
		lines := make([]string, 0, len(inputErr.Problems))
		for _, p := range inputErr.Problems {
			lines = append(lines, "❌ "+p.Error())
		}
		return strings.Join(lines, "\n"), true
	case errors.Is(err, service.ErrInvalidEvent):
		return "❌ " + err.Error(), true
	case errors.Is(err, lottery.ErrEndTimeFormat):
		return "❌ Invalid end time. Use `YYYY-M-D H:m`, `M-D H:m` or `H:m`, e.g. `2025-06-01 18:00`.", true
	case errors.Is(err, service.ErrEventNotFound):
		return "❓ No event with that id.", true
	case errors.Is(err, service.ErrEntryClosed):
		return "⌛ Entries for this event are closed.", true
	case errors.Is(err, service.ErrNotJoined):
		return "❓ That user has not entered this event.", true
	case errors.Is(err, service.ErrAlreadyPrioritized):
		return "📌 That user is already prioritized.", true
	case errors.Is(err, service.ErrEventOpen):
		return "⏳ This event has not ended yet.", true
	case errors.Is(err, service.ErrAlreadyDrawn):
		return "🎲 Winners were already drawn. Use /lottery to edit them.", true
	case errors.Is(err, service.ErrNotDrawn):
		return "❓ Winners have not been drawn for this event.", true
	case errors.Is(err, service.ErrUnknownBiome):
		return "❓ Unknown biome.", true
	case errors.Is(err, service.ErrUnknownList):
		return "❓ Unknown list.", true
	case errors.Is(err, service.ErrScoreNotFound):
		return "❓ No inventory recorded for that user.", true
	case errors.Is(err, service.ErrNegativeEgg):
		return "❌ Egg count must not be negative.", true
	case errors.Is(err, errPermission):
		return "❌ You are not allowed to use this command.", true
	default:
		return "⚠️ Something went wrong. Please contact an administrator.", false
	}
}

// invoker returns the user who triggered i, in a guild or a DM.
func invoker(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	if i.User != nil {
		return i.User
	}
	return &discordgo.User{}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(data discordgo.ApplicationCommandInteractionData) options {
	m := make(options, len(data.Options))
	for _, opt := range data.Options {
		m[opt.Name] = opt
	}
	return m
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func (o options) integer(name string) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return 0
}

func (o options) number(name string) float64 {
	if opt, ok := o[name]; ok {
		return opt.FloatValue()
	}
	return 0
}

// user resolves a user option without an API call when Discord sent the
// resolved user along.
func (o options) user(name string, data discordgo.ApplicationCommandInteractionData) *discordgo.User {
	opt, ok := o[name]
	if !ok {
		return nil
	}
	u := opt.UserValue(nil)
	if data.Resolved != nil {
		if full, ok := data.Resolved.Users[u.ID]; ok {
			return full
		}
	}
	return u
}

func mention(id string) string {
	return "<@" + id + ">"
}

// mentionList renders ids as "・<@a> ・<@b>", or empty when there are none.
func mentionList(ids []string, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "・" + mention(id)
	}
	return strings.Join(parts, " ")
}

// clip cuts s to limit runes, marking the cut.
func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}

// joinLines joins rows with newlines. Once limit runes would be exceeded
// the tail is replaced by a "…and N more" line.
func joinLines(rows []string, limit int) string {
	out := strings.Join(rows, "\n")
	if utf8.RuneCountInString(out) <= limit {
		return out
	}
	for n := len(rows) - 1; n >= 0; n-- {
		kept := strings.Join(rows[:n], "\n")
		more := fmt.Sprintf("…and %d more", len(rows)-n)
		if n > 0 {
			more = "\n" + more
		}
		if utf8.RuneCountInString(kept)+utf8.RuneCountInString(more) <= limit {
			return kept + more
		}
	}
	return clip(out, limit)
}
