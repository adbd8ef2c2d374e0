package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/demo-content/pkg/democontent/api"
	"github.com/tendant/demo-content/pkg/democontent/config"
)

// Config holds the settings only the admin server needs. Everything else is
// read by config.WithEnv.
type Config struct {
	JWTSecret  string        `env:"JWT_SECRET" env-required:"true"`
	NonceTTL   time.Duration `env:"NONCE_TTL" env-default:"1h"`
	ServeMedia bool          `env:"SERVE_MEDIA" env-default:"true"`
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("No .env file found or error loading it, using environment", "err", err)
	}

	var serverConfig Config
	if err := cleanenv.ReadEnv(&serverConfig); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	cfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	ctx := context.Background()
	rt, err := cfg.BuildRuntime(ctx, logger)
	if err != nil {
		logger.Error("Failed to build runtime", "err", err)
		os.Exit(1)
	}
	defer rt.Close()

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	auth := api.NewAuth([]byte(serverConfig.JWTSecret), serverConfig.NonceTTL)
	api.NewHandler(rt.Provisioner, auth, logger).Register(server.R)

	// Media is only served locally when URLs point back at this server
	if serverConfig.ServeMedia && cfg.Storage.Type != "s3" && strings.HasPrefix(cfg.MediaURLPrefix, "/") {
		server.R.Mount(cfg.MediaURLPrefix, api.NewMediaHandler(rt.BlobStore, logger).Routes())
	}

	logger.Info("Starting demo-content server",
		"database", cfg.DatabaseType,
		"storage", cfg.Storage.Type,
		"media_prefix", cfg.MediaURLPrefix)
	server.Run()
}
