package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-sarah/v4"
)

// CommandPrefix is prepended to a slash command's name to form InteractionInput.Message.
const CommandPrefix = "/"

// InteractionInput is a sarah.Input implementation that represents a slash command invocation.
type InteractionInput struct {
	Event       *discordgo.InteractionCreate
	senderKey   string
	text        string
	sentAt      time.Time
	destination *InteractionDestination
}

var _ sarah.Input = (*InteractionInput)(nil)

// SenderKey returns a unique key representing the invoker in the channel.
func (i *InteractionInput) SenderKey() string {
	return i.senderKey
}

// Message returns the invoked command name in the form of "/name".
func (i *InteractionInput) Message() string {
	return i.text
}

// SentAt returns when the interaction was created.
func (i *InteractionInput) SentAt() time.Time {
	return i.sentAt
}

// ReplyTo returns the interaction to be answered.
func (i *InteractionInput) ReplyTo() sarah.OutputDestination {
	return i.destination
}

// Interaction returns the underlying interaction.
func (i *InteractionInput) Interaction() *discordgo.Interaction {
	return i.destination.Interaction
}

// InteractionToInput converts an application command interaction to *InteractionInput.
func InteractionToInput(i *discordgo.InteractionCreate) (*InteractionInput, error) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return nil, ErrNotCommand
	}

	user := InvokingUser(i.Interaction)
	if user == nil {
		return nil, ErrNoAuthor
	}

	sentAt, err := discordgo.SnowflakeTimestamp(i.ID)
	if err != nil {
		sentAt = time.Now()
	}

	return &InteractionInput{
		Event:       i,
		senderKey:   fmt.Sprintf("%s_%s", i.ChannelID, user.ID),
		text:        CommandPrefix + i.ApplicationCommandData().Name,
		sentAt:      sentAt,
		destination: &InteractionDestination{Interaction: i.Interaction},
	}, nil
}

// InvokingUser returns the user who triggered the interaction.
// Guild interactions carry the user inside Member while DM interactions carry it in User.
func InvokingUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}
