// Package validation holds the checks that run before a command.
package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/rolegate/slashbot/internal/command"
)

// All returns every validation in the order they run.
func All() []command.Validation {
	return []command.Validation{
		UserRoles,
	}
}

// UserRoles blocks a command when the invoking member holds none of the roles
// listed in the command's UserRoles option.
// Commands without required roles are never blocked.
func UserRoles(_ context.Context, props *command.ValidationProps) bool {
	required := requiredRoles(props.Command.Options.UserRoles)
	if len(required.ordered) == 0 {
		return false
	}

	if member := props.Interaction.Member; member != nil {
		for _, role := range member.Roles {
			if _, ok := required.set[role]; ok {
				return false
			}
		}
	}

	props.Reply(InsufficientRoles(required.ordered))
	return true
}

// InsufficientRoles builds the ephemeral reply that lists the roles a member needs.
func InsufficientRoles(roles []string) *discordgo.InteractionResponseData {
	mentions := make([]string, 0, len(roles))
	for _, role := range roles {
		mentions = append(mentions, fmt.Sprintf("• <@&%s>", role))
	}

	spacing := discordgo.SeparatorSpacingSizeLarge
	return &discordgo.InteractionResponseData{
		Flags: discordgo.MessageFlagsEphemeral | discordgo.MessageFlagsIsComponentsV2,
		Components: []discordgo.MessageComponent{
			discordgo.Container{
				Components: []discordgo.MessageComponent{
					discordgo.TextDisplay{Content: "## ⛔ **Insufficient Permissions**"},
					discordgo.Separator{Spacing: &spacing},
					discordgo.TextDisplay{Content: "You need the following roles:\n\n" + strings.Join(mentions, "\n")},
				},
			},
		},
	}
}

type roleSet struct {
	set     map[string]struct{}
	ordered []string
}

// requiredRoles de-duplicates roles while keeping their declaration order.
func requiredRoles(roles []string) roleSet {
	rs := roleSet{set: make(map[string]struct{}, len(roles))}
	for _, role := range roles {
		if _, ok := rs.set[role]; ok {
			continue
		}
		rs.set[role] = struct{}{}
		rs.ordered = append(rs.ordered, role)
	}
	return rs
}
