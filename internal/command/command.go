// Package command declares slash commands and routes their invocations through go-sarah.
package command

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/rolegate/slashbot/discord"
)

// Data is the part of a command that is published to Discord.
type Data struct {
	Name        string
	Description string
}

// Options control where and by whom a command may be used.
type Options struct {
	// BotPermissions lists permissions the bot itself needs in the channel.
	BotPermissions []int64
	// UserPermissions lists permissions the invoking member needs.
	// They are also published as the command's default member permissions.
	UserPermissions []int64
	// Deleted commands are removed from Discord and never run.
	Deleted bool
	// DevOnly commands are published to the development guilds only
	// and may be run by development users only.
	DevOnly bool
	// GuildOnly commands may not be used in direct messages.
	GuildOnly bool
	// UserRoles lists role IDs of which the invoking member needs at least one.
	UserRoles []string
}

// Props is handed to a command's Run function.
type Props struct {
	Input       *discord.InteractionInput
	Interaction *discordgo.Interaction
	Command     *Command
}

// RunFunc executes a command and returns the reply.
type RunFunc func(ctx context.Context, props *Props) (*sarah.CommandResponse, error)

// Command is a slash command declaration.
type Command struct {
	Data    Data
	Run     RunFunc
	Options Options
}

// ApplicationCommand converts the declaration to its Discord representation.
func (c *Command) ApplicationCommand() *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Type:        discordgo.ChatApplicationCommand,
		Name:        c.Data.Name,
		Description: c.Data.Description,
	}

	if len(c.Options.UserPermissions) > 0 {
		perms := combine(c.Options.UserPermissions)
		cmd.DefaultMemberPermissions = &perms
	}

	if c.Options.GuildOnly {
		cmd.Contexts = &[]discordgo.InteractionContextType{discordgo.InteractionContextGuild}
	}

	return cmd
}

func combine(perms []int64) int64 {
	var all int64
	for _, p := range perms {
		all |= p
	}
	return all
}
