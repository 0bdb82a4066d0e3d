package command

import (
	"context"

	"github.com/oklahomer/go-sarah/v4"

	"github.com/rolegate/slashbot/discord"
)

// Ping replies "Pong!".
var Ping = &Command{
	Data: Data{
		Name:        "ping",
		Description: "Poing!",
	},
	Run: func(_ context.Context, props *Props) (*sarah.CommandResponse, error) {
		return discord.NewResponse(props.Input, "Pong!")
	},
	Options: Options{
		BotPermissions:  []int64{},
		UserPermissions: []int64{},
		Deleted:         false,
		DevOnly:         false,
		GuildOnly:       false,
	},
}

// All returns every command the bot declares.
func All() []*Command {
	return []*Command{
		Ping,
	}
}
