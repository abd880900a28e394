package main

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var errPermission = errors.New("permission denied")

const (
	joinPrefix   = "lottery_"
	cancelPrefix = "cancel_"
)

// moderatorOnly lists commands reserved to access.allowed_user_ids.
var moderatorOnly = map[string]bool{
	"draw-winner":  true,
	"create-squad": true,
	"lottery":      true,
	"prioritize":   true,
	"update-egg":   true,
}

func biomeChoices(biomes []string) []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(biomes))
	for _, b := range biomes {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: b, Value: b})
	}
	return choices
}

func commandDefinitions(biomes []string, requests bool) []*discordgo.ApplicationCommand {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "create-lottery",
			Description: "Create a lottery event",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Event title", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "endtime", Description: "End time, e.g. 2025-06-01 18:00", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "rqbiome", Description: "Biome the required score is read from", Choices: biomeChoices(biomes)},
				{Type: discordgo.ApplicationCommandOptionNumber, Name: "rqscore", Description: "Minimum score to enter"},
			},
		},
		{
			Name:        "draw-winner",
			Description: "Draw the winners of an ended event",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "eventid", Description: "Event id", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "winners", Description: "Number of winners, everyone when omitted"},
			},
		},
		{
			Name:        "create-squad",
			Description: "Split the winners into a 3+3 squad",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "eventid", Description: "Event id", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "biome", Description: "Biome to balance on", Required: true, Choices: biomeChoices(biomes)},
			},
		},
		{
			Name:        "lottery",
			Description: "Add or remove a user on an event list",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "Event id", Required: true},
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "at", Description: "List to edit", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "participants", Value: "participants"},
						{Name: "winners", Value: "winners"},
						{Name: "prioritized", Value: "prioritized"},
						{Name: "lurer", Value: "lurer"},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionString, Name: "edit", Description: "Edit", Required: true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "add", Value: "add"},
						{Name: "remove", Value: "remove"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User", Required: true},
			},
		},
		{
			Name:        "prioritize",
			Description: "Prioritize a participant in the draw",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "eventid", Description: "Event id", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Participant", Required: true},
			},
		},
		{
			Name:        "update-inventory",
			Description: "Record an inventory and compute its scores",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "petal", Description: "e.g. Ultra Wing 3, Super Stinger 2", Required: true},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Whose inventory, yourself when omitted"},
			},
		},
		{
			Name:        "show-inventory",
			Description: "Show a recorded inventory",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Whose inventory, yourself when omitted"},
			},
		},
		{
			Name:        "update-egg",
			Description: "Set how many eggs a user brings",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "count", Description: "Egg count", Required: true},
			},
		},
	}

	if requests {
		commands = append(commands, &discordgo.ApplicationCommand{
			Name:        "request",
			Description: "File a feature request or bug report",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "What should change", Required: true},
			},
		})
	}

	return commands
}

func (b *bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	i := ic.Interaction
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("interaction handler panicked", zap.String("interaction", i.ID), zap.Any("panic", r))
		}
	}()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		zap.L().Info("command", zap.String("name", data.Name), zap.String("user", invoker(i).ID), zap.String("guild", i.GuildID))
		if moderatorOnly[data.Name] && !b.conf.Access.Allowed(invoker(i).ID) {
			fail(s, i, false, errPermission)
			return
		}
		b.passCommand(s, i, data)
	case discordgo.InteractionMessageComponent:
		b.passButton(s, i, i.MessageComponentData().CustomID)
	}
}

func (b *bot) passCommand(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	switch data.Name {
	// Lottery
	case "create-lottery":
		b.commandCreateLottery(s, i, data)
	case "draw-winner":
		b.commandDrawWinner(s, i, data)
	case "lottery":
		b.commandLottery(s, i, data)
	case "prioritize":
		b.commandPrioritize(s, i, data)
	case "create-squad":
		b.commandCreateSquad(s, i, data)
	// Inventory
	case "update-inventory":
		b.commandUpdateInventory(s, i, data)
	case "show-inventory":
		b.commandShowInventory(s, i, data)
	case "update-egg":
		b.commandUpdateEgg(s, i, data)
	// Utility
	case "request":
		b.commandRequest(s, i, data)
	default:
		zap.L().Warn("unknown command", zap.String("name", data.Name))
	}
}

func (b *bot) passButton(s *discordgo.Session, i *discordgo.Interaction, customID string) {
	if id, ok := strings.CutPrefix(customID, joinPrefix); ok {
		b.buttonJoin(s, i, id)
		return
	}
	if id, ok := strings.CutPrefix(customID, cancelPrefix); ok {
		b.buttonCancel(s, i, id)
		return
	}
	zap.L().Warn("unknown button", zap.String("custom_id", customID))
}
