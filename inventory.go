package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nanohard/petal-lottery-bot/pkg/equipment"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
	"github.com/nanohard/petal-lottery-bot/pkg/service"
)

func (b *bot) commandUpdateInventory(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)
	caller := invoker(i)
	target := opts.user("user", data)
	if target == nil {
		target = caller
	}

	if target.ID != caller.ID && !b.conf.Access.Allowed(caller.ID) {
		fail(s, i, false, errPermission)
		return
	}

	if err := deferReply(s, i, false); err != nil {
		zap.L().Error("deferReply", zap.Error(err))
		return
	}

	report, err := b.inventory.Update(context.Background(), target.ID, opts.str("petal"))
	if err != nil {
		fail(s, i, true, err)
		return
	}

	reply(s, i, true, message{Content: updateMessage(target.ID, report)})

	if b.conf.Roles.Applies(i.GuildID, i.ChannelID) && !target.Bot {
		b.grantRoles(s, i, target.ID, report.Grants)
	}
}

// grantRoles adds every role the new scores qualify for.
func (b *bot) grantRoles(s *discordgo.Session, i *discordgo.Interaction, userID string, roles []string) {
	for _, roleID := range roles {
		if err := s.GuildMemberRoleAdd(i.GuildID, userID, roleID); err != nil {
			zap.L().Error("failed to grant role", zap.String("user", userID), zap.String("role", roleID), zap.Error(err))
			reply(s, i, true, message{Content: "⚠️ A role could not be granted. Please contact an administrator.", Ephemeral: true})
			return
		}
		zap.L().Info("role granted", zap.String("user", userID), zap.String("role", roleID))
	}
}

func (b *bot) commandShowInventory(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)
	target := opts.user("user", data)
	if target == nil {
		target = invoker(i)
	}

	record, err := b.inventory.Show(context.Background(), target.ID)
	if err != nil {
		fail(s, i, false, err)
		return
	}

	reply(s, i, false, message{Content: showMessage(record, b.inventory.Biomes()), Ephemeral: true})
}

func (b *bot) commandUpdateEgg(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)
	target := opts.user("user", data)

	record, err := b.inventory.SetEgg(context.Background(), target.ID, opts.integer("count"))
	if err != nil {
		fail(s, i, false, err)
		return
	}

	reply(s, i, false, message{Content: fmt.Sprintf("🥚 %s now brings %d egg(s).", mention(record.ID), record.Egg)})
}

func inventoryRows(inventory []equipment.Entry) []string {
	rows := make([]string, len(inventory))
	for n, e := range inventory {
		rows[n] = fmt.Sprintf("・%s ×%d", e.Name, e.Count)
	}
	return rows
}

func updateMessage(userID string, report service.Report) string {
	rows := []string{fmt.Sprintf("✅ Updated %s's inventory!", mention(userID)), "📦 Inventory:"}
	rows = append(rows, inventoryRows(report.Score.Inventory)...)

	rows = append(rows, "", "📊 score:")
	for _, r := range report.Results {
		items := make([]string, 0, len(r.Result.UsedItems))
		for _, it := range r.Result.Items() {
			items = append(items, fmt.Sprintf("%s x%d", it.Name, it.Count))
		}
		rows = append(rows, fmt.Sprintf("・score-%s: %g (%d) ``%s``", r.Biome, r.Result.Score, r.Result.UsedSlots, strings.Join(items, ", ")))
	}

	return strings.Join(rows, "\n")
}

func showMessage(record models.Score, biomes []string) string {
	rows := []string{fmt.Sprintf("📦 %s's inventory:", mention(record.ID))}
	rows = append(rows, inventoryRows(record.Inventory)...)
	if record.Egg > 0 {
		rows = append(rows, fmt.Sprintf("🥚 egg: %d", record.Egg))
	}

	rows = append(rows, "", "📊 score:")
	for _, biome := range biomes {
		if v, ok := record.Scores[biome]; ok {
			rows = append(rows, fmt.Sprintf("・score-%s: %g", biome, v))
		}
	}

	return strings.Join(rows, "\n")
}
