// slashbot is a Discord bot that answers slash commands.
//
// Usage:
//
//	echo 'Token: "your-bot-token"' > Config.yaml
//	go run ./cmd/slashbot
//
// Then, in a server where the bot is present, type:
//
//	/ping
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/oklahomer/go-kasumi/logger"

	"github.com/rolegate/slashbot/internal/app"
	"github.com/rolegate/slashbot/internal/logging"
)

func main() {
	settings := flag.String("config", "Config.yaml", "Path to the YAML settings file.")
	dataDir := flag.String("data", "Data", "Directory for the key-value store and the SQLite database.")
	logLevel := flag.String("log-level", "info", "Log level: trace, debug, info, warn or error.")
	flag.Parse()

	if _, err := logging.Setup(os.Stderr, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %s\n", err)
		os.Exit(1)
	}

	paths := app.DefaultPaths(*dataDir)
	paths.Settings = filepath.Clean(*settings)
	bot := app.New(app.WithPaths(paths))

	// Set up a context that cancels on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := bot.Start(ctx); err != nil {
		logger.Errorf("Failed to start: %+v", err)
		cancel()
		os.Exit(1)
	}
}
