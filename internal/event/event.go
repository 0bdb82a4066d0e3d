// Package event holds the discordgo event handlers registered alongside the adapter.
package event

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"

	"github.com/rolegate/slashbot/discord"
	"github.com/rolegate/slashbot/internal/command"
	"github.com/rolegate/slashbot/internal/database"
)

// syncer publishes commands to Discord. *command.Handler satisfies this interface.
type syncer interface {
	Sync(s command.ApplicationCommander, appID string) error
}

// userEnsurer records invoking users. *database.UserRepository satisfies this interface.
type userEnsurer interface {
	Ensure(ctx context.Context, id, username string) (*database.User, error)
}

// All returns every event handler, ready to be passed to discord.WithHandlers.
func All(commands syncer, users userEnsurer) []interface{} {
	return []interface{}{
		Ready(commands),
		TrackUser(users),
	}
}

// Ready logs the bot's identity and publishes the commands once the gateway session is ready.
func Ready(commands syncer) func(*discordgo.Session, *discordgo.Ready) {
	return func(s *discordgo.Session, r *discordgo.Ready) {
		if r.User != nil {
			logger.Infof("Logged in as %s (%s) in %d guild(s)", r.User.Username, r.User.ID, len(r.Guilds))
		}

		appID := ""
		if r.Application != nil {
			appID = r.Application.ID
		} else if r.User != nil {
			appID = r.User.ID
		}

		if err := commands.Sync(s, appID); err != nil {
			logger.Errorf("Failed to publish commands: %+v", err)
		}
	}
}

// TrackUser keeps a users row for everyone who invokes a slash command.
func TrackUser(users userEnsurer) func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		user := discord.InvokingUser(i.Interaction)
		if user == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := users.Ensure(ctx, user.ID, user.Username); err != nil {
			logger.Errorf("Failed to record user %s: %+v", user.ID, err)
		}
	}
}
