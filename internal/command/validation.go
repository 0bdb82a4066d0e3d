package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rolegate/slashbot/discord"
)

// RefusalMessage answers a blocked invocation when the blocking validation set no reply.
const RefusalMessage = "You cannot run this command."

// Validation runs before a command.
// Returning true blocks the command. The reply set through props.Reply is sent to the
// invoker, or RefusalMessage when there is none.
type Validation func(ctx context.Context, props *ValidationProps) bool

// ValidationProps is handed to a Validation.
type ValidationProps struct {
	Interaction *discordgo.Interaction
	Command     *Command
	response    *discordgo.InteractionResponseData
}

// Reply sets the response sent to the invoker when the validation blocks the command.
func (p *ValidationProps) Reply(data *discordgo.InteractionResponseData) {
	p.response = data
}

// Response returns the reply set through Reply, if any.
func (p *ValidationProps) Response() *discordgo.InteractionResponseData {
	return p.response
}

func ephemeral(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// builtinValidations enforce Options other than UserRoles. They run before any user validation.
func (h *Handler) builtinValidations() []Validation {
	return []Validation{
		h.devOnly,
		guildOnly,
		userPermissions,
		botPermissions,
	}
}

func (h *Handler) devOnly(_ context.Context, props *ValidationProps) bool {
	if !props.Command.Options.DevOnly {
		return false
	}

	i := props.Interaction
	if i.GuildID != "" && !contains(h.config.DevGuildIDs, i.GuildID) {
		props.Reply(ephemeral("This command can only be used inside development servers."))
		return true
	}

	if user := discord.InvokingUser(i); user != nil && contains(h.config.DevUserIDs, user.ID) {
		return false
	}
	if i.Member != nil {
		for _, role := range i.Member.Roles {
			if contains(h.config.DevRoleIDs, role) {
				return false
			}
		}
	}

	props.Reply(ephemeral("This command can only be used by developers."))
	return true
}

func guildOnly(_ context.Context, props *ValidationProps) bool {
	if !props.Command.Options.GuildOnly || props.Interaction.GuildID != "" {
		return false
	}

	props.Reply(ephemeral("This command can only be used inside a server."))
	return true
}

func userPermissions(_ context.Context, props *ValidationProps) bool {
	required := props.Command.Options.UserPermissions
	member := props.Interaction.Member
	if len(required) == 0 || member == nil {
		return false
	}

	missing := missingPermissions(member.Permissions, required)
	if len(missing) == 0 {
		return false
	}

	props.Reply(ephemeral(fmt.Sprintf("You need the following permissions to run this command: %s", strings.Join(missing, ", "))))
	return true
}

func botPermissions(_ context.Context, props *ValidationProps) bool {
	required := props.Command.Options.BotPermissions
	if len(required) == 0 || props.Interaction.GuildID == "" {
		return false
	}

	missing := missingPermissions(props.Interaction.AppPermissions, required)
	if len(missing) == 0 {
		return false
	}

	props.Reply(ephemeral(fmt.Sprintf("I need the following permissions to run this command: %s", strings.Join(missing, ", "))))
	return true
}

func missingPermissions(granted int64, required []int64) []string {
	if granted&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return nil
	}

	var missing []string
	for _, p := range required {
		if granted&p != p {
			missing = append(missing, PermissionName(p))
		}
	}
	return missing
}
