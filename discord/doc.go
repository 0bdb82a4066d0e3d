// Package discord provides a sarah.Adapter implementation for Discord.
//
// This package bridges go-sarah's bot framework with Discord using discordgo
// for the underlying API integration. It converts Discord message events and
// slash command interactions into sarah.Input, and dispatches sarah.Output as
// Discord messages or interaction responses.
package discord
