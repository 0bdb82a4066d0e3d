package command

import (
	"context"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"

	"github.com/rolegate/slashbot/discord"
)

// Config contains the development targets used by DevOnly commands.
type Config struct {
	DevGuildIDs []string `json:"dev_guild_ids" yaml:"dev_guild_ids"`
	DevUserIDs  []string `json:"dev_user_ids" yaml:"dev_user_ids"`
	DevRoleIDs  []string `json:"dev_role_ids" yaml:"dev_role_ids"`
}

// ApplicationCommander is the part of *discordgo.Session used by Sync.
type ApplicationCommander interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// Handler owns the declared commands and validations.
type Handler struct {
	config      *Config
	commands    []*Command
	validations []Validation
}

// NewHandler creates a Handler.
// validations run in the given order after the built-in ones.
func NewHandler(config *Config, commands []*Command, validations ...Validation) *Handler {
	if config == nil {
		config = &Config{}
	}
	return &Handler{
		config:      config,
		commands:    commands,
		validations: validations,
	}
}

// Commands returns the declared commands.
func (h *Handler) Commands() []*Command {
	return h.commands
}

// Props builds go-sarah command properties for every command that is not deleted.
func (h *Handler) Props(botType sarah.BotType) ([]*sarah.CommandProps, error) {
	var props []*sarah.CommandProps
	for _, cmd := range h.commands {
		if cmd.Options.Deleted {
			continue
		}

		cmd := cmd
		p, err := sarah.NewCommandPropsBuilder().
			BotType(botType).
			Identifier(cmd.Data.Name).
			MatchPattern(regexp.MustCompile(`^` + regexp.QuoteMeta(discord.CommandPrefix+cmd.Data.Name) + `$`)).
			Func(func(ctx context.Context, input sarah.Input) (*sarah.CommandResponse, error) {
				return h.Execute(ctx, cmd, input)
			}).
			Instruction(fmt.Sprintf("%s%s: %s", discord.CommandPrefix, cmd.Data.Name, cmd.Data.Description)).
			Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build command %s: %w", cmd.Data.Name, err)
		}
		props = append(props, p)
	}
	return props, nil
}

// Register hands every command's props to register, which is sarah.RegisterCommandProps
// outside of tests.
func (h *Handler) Register(botType sarah.BotType, register func(*sarah.CommandProps)) error {
	props, err := h.Props(botType)
	if err != nil {
		return err
	}
	for _, p := range props {
		register(p)
	}
	return nil
}

// Execute runs the validations and, when none of them blocks, the command itself.
func (h *Handler) Execute(ctx context.Context, cmd *Command, input sarah.Input) (*sarah.CommandResponse, error) {
	in, ok := input.(*discord.InteractionInput)
	if !ok {
		// A plain message that happens to look like a slash command.
		logger.Debugf("Ignoring non-interaction input for /%s: %T", cmd.Data.Name, input)
		return nil, nil
	}

	id := uuid.NewString()
	logger.Debugf("[%s] /%s invoked by %s", id, cmd.Data.Name, in.SenderKey())

	props := &ValidationProps{
		Interaction: in.Interaction(),
		Command:     cmd,
	}
	for _, v := range append(h.builtinValidations(), h.validations...) {
		if !v(ctx, props) {
			continue
		}

		logger.Infof("[%s] /%s blocked for %s", id, cmd.Data.Name, in.SenderKey())
		if props.Response() == nil {
			// Discord reports an unanswered interaction as a failure.
			return discord.NewResponse(in, ephemeral(RefusalMessage))
		}
		return discord.NewResponse(in, props.Response())
	}

	res, err := cmd.Run(ctx, &Props{
		Input:       in,
		Interaction: in.Interaction(),
		Command:     cmd,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] /%s failed: %w", id, cmd.Data.Name, err)
	}
	logger.Debugf("[%s] /%s completed", id, cmd.Data.Name)
	return res, nil
}

// Sync publishes the commands to Discord.
// Global commands are overwritten with every command that is neither deleted nor DevOnly,
// and each development guild's commands are overwritten with the DevOnly ones.
// Overwriting removes deleted commands from Discord.
func (h *Handler) Sync(s ApplicationCommander, appID string) error {
	global := []*discordgo.ApplicationCommand{}
	dev := []*discordgo.ApplicationCommand{}
	for _, cmd := range h.commands {
		switch {
		case cmd.Options.Deleted:
			logger.Infof("Removing deleted command /%s", cmd.Data.Name)
		case cmd.Options.DevOnly:
			dev = append(dev, cmd.ApplicationCommand())
		default:
			global = append(global, cmd.ApplicationCommand())
		}
	}

	if _, err := s.ApplicationCommandBulkOverwrite(appID, "", global); err != nil {
		return fmt.Errorf("failed to overwrite global commands: %w", err)
	}
	logger.Infof("Published %d global command(s)", len(global))

	if len(dev) > 0 && len(h.config.DevGuildIDs) == 0 {
		logger.Warnf("%d development command(s) declared but no development guild is configured", len(dev))
	}
	for _, guildID := range h.config.DevGuildIDs {
		if _, err := s.ApplicationCommandBulkOverwrite(appID, guildID, dev); err != nil {
			return fmt.Errorf("failed to overwrite commands of guild %s: %w", guildID, err)
		}
		logger.Infof("Published %d development command(s) to guild %s", len(dev), guildID)
	}

	return nil
}
