// Package app wires the stores, the command handler and the Discord adapter together
// and drives the bot's lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"gorm.io/gorm"

	"github.com/rolegate/slashbot/discord"
	"github.com/rolegate/slashbot/internal/command"
	"github.com/rolegate/slashbot/internal/database"
	"github.com/rolegate/slashbot/internal/event"
	"github.com/rolegate/slashbot/internal/store"
	"github.com/rolegate/slashbot/internal/validation"
)

// Keys read from the settings file.
const (
	KeyToken       = "Token"
	KeyDevGuildIDs = "DevGuildIDs"
	KeyDevUserIDs  = "DevUserIDs"
	KeyDevRoleIDs  = "DevRoleIDs"
)

// Paths locates the files the bot reads and writes.
type Paths struct {
	Settings string
	Random   string
	Database string
}

// DefaultPaths returns the standard layout: the settings file in the working
// directory and everything else under dataDir.
func DefaultPaths(dataDir string) Paths {
	return Paths{
		Settings: "Config.yaml",
		Random:   filepath.Join(dataDir, "Random.json"),
		Database: filepath.Join(dataDir, "Database.sqlite"),
	}
}

// Registration with go-sarah is process-wide; tests swap these out.
var (
	registerBot          = sarah.RegisterBot
	registerCommandProps = sarah.RegisterCommandProps
)

// Option defines a function signature for App's functional options.
type Option func(*App)

// WithSession injects a pre-configured Discord session.
func WithSession(session *discordgo.Session) Option {
	return func(a *App) {
		a.session = session
	}
}

// WithToken sets the bot token so that the settings file is not consulted for it.
func WithToken(token string) Option {
	return func(a *App) {
		a.token = token
	}
}

// WithPaths overrides DefaultPaths("Data").
func WithPaths(paths Paths) Option {
	return func(a *App) {
		a.paths = paths
	}
}

// App is the bot's lifecycle object.
type App struct {
	session *discordgo.Session
	token   string
	paths   Paths

	// Settings is the YAML-backed settings store.
	Settings *store.Database
	// Random is a general-purpose JSON-backed store.
	Random *store.Database
	// DB is the ORM client.
	DB    *gorm.DB
	Users *database.UserRepository

	handler *command.Handler
	adapter *discord.Adapter
}

// New creates an App. Nothing is opened until InitDatabase or Start is called.
func New(options ...Option) *App {
	a := &App{
		paths: DefaultPaths("Data"),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// InitDatabase opens the settings store, the key-value store and the SQL database,
// and brings the database schema up to date.
func (a *App) InitDatabase() error {
	settings, err := store.Open(store.NewYAMLDriver(a.paths.Settings))
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	a.Settings = settings

	random, err := store.Open(store.NewJSONDriver(a.paths.Random))
	if err != nil {
		return fmt.Errorf("failed to open key-value store: %w", err)
	}
	a.Random = random

	db, err := database.Open(a.paths.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Sync(db); err != nil {
		_ = database.Close(db)
		return err
	}
	a.DB = db
	a.Users = database.NewUserRepository(db)

	return nil
}

// Init resolves the token, builds the Discord adapter with the commands, events and
// validations, and registers them with go-sarah.
// InitDatabase must have been called.
func (a *App) Init() error {
	if err := a.configure(); err != nil {
		return err
	}

	storage := sarah.NewUserContextStorage(sarah.NewCacheConfig())
	registerBot(sarah.NewBot(a.adapter, sarah.BotWithStorage(storage)))

	return a.handler.Register(a.adapter.BotType(), registerCommandProps)
}

func (a *App) configure() error {
	if a.Settings == nil {
		return ErrNotInitialized
	}

	if a.token == "" {
		token, err := a.Settings.GetString(KeyToken)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("failed to read %s: %w", KeyToken, err)
		}
		a.token = token
	}
	if a.token == "" {
		return ErrNoToken
	}

	devConfig := &command.Config{}
	for key, dst := range map[string]*[]string{
		KeyDevGuildIDs: &devConfig.DevGuildIDs,
		KeyDevUserIDs:  &devConfig.DevUserIDs,
		KeyDevRoleIDs:  &devConfig.DevRoleIDs,
	} {
		ids, err := a.Settings.GetStrings(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		*dst = ids
	}
	a.handler = command.NewHandler(devConfig, command.All(), validation.All()...)

	config := discord.NewConfig()
	config.Token = a.token
	options := []discord.AdapterOption{
		discord.WithHandlers(event.All(a.handler, a.Users)...),
	}
	if a.session != nil {
		a.session.Token = "Bot " + a.token
		a.session.Identify.Intents = config.Intents
		options = append(options, discord.WithSession(a.session))
	}

	adapter, err := discord.NewAdapter(config, options...)
	if err != nil {
		return err
	}
	a.adapter = adapter

	return nil
}

// Start opens the databases, initializes the bot and connects to Discord.
// It blocks until ctx is canceled, then releases the database.
func (a *App) Start(ctx context.Context) error {
	if err := a.InitDatabase(); err != nil {
		return err
	}
	defer a.Close()

	if err := a.Init(); err != nil {
		return err
	}

	if err := sarah.Run(ctx, sarah.NewConfig()); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}
	logger.Infof("Bot is running with %d command(s)", len(a.handler.Commands()))

	<-ctx.Done()
	logger.Infof("Shutting down...")
	return nil
}

// Close releases the SQL database.
func (a *App) Close() {
	if a.DB == nil {
		return
	}
	if err := database.Close(a.DB); err != nil {
		logger.Errorf("Failed to close database: %+v", err)
	}
	a.DB = nil
}
