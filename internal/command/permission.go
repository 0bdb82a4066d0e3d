package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

var permissionNames = map[int64]string{
	discordgo.PermissionCreateInstantInvite:    "Create Invite",
	discordgo.PermissionKickMembers:            "Kick Members",
	discordgo.PermissionBanMembers:             "Ban Members",
	discordgo.PermissionAdministrator:          "Administrator",
	discordgo.PermissionManageChannels:         "Manage Channels",
	discordgo.PermissionManageGuild:            "Manage Server",
	discordgo.PermissionAddReactions:           "Add Reactions",
	discordgo.PermissionViewAuditLogs:          "View Audit Log",
	discordgo.PermissionViewChannel:            "View Channel",
	discordgo.PermissionSendMessages:           "Send Messages",
	discordgo.PermissionManageMessages:         "Manage Messages",
	discordgo.PermissionEmbedLinks:             "Embed Links",
	discordgo.PermissionAttachFiles:            "Attach Files",
	discordgo.PermissionReadMessageHistory:     "Read Message History",
	discordgo.PermissionMentionEveryone:        "Mention Everyone",
	discordgo.PermissionUseExternalEmojis:      "Use External Emojis",
	discordgo.PermissionChangeNickname:         "Change Nickname",
	discordgo.PermissionManageNicknames:        "Manage Nicknames",
	discordgo.PermissionManageRoles:            "Manage Roles",
	discordgo.PermissionManageWebhooks:         "Manage Webhooks",
	discordgo.PermissionUseApplicationCommands: "Use Application Commands",
	discordgo.PermissionManageThreads:          "Manage Threads",
	discordgo.PermissionModerateMembers:        "Timeout Members",
}

// PermissionName returns a human-readable name of a single permission bit.
func PermissionName(p int64) string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", p)
}
