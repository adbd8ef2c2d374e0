package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/tendant/demo-content/internal/mcp"
	"github.com/tendant/demo-content/pkg/democontent/config"
)

type Config struct {
	Port         uint16 `env:"PORT" env-default:"8000"`
	BaseUrl      string `env:"BASE_URL" env-default:"http://localhost:8000"`
	Capabilities string `env:"MCP_CAPABILITIES" env-default:"manage_options"`
}

func main() {
	var mode = flag.String("mode", "stdio", "Server mode: 'stdio', 'sse', or 'http'")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		// It's okay if .env doesn't exist, we'll use default values
		slog.Info("No .env file found or error loading it, using default values", "err", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	contentCfg, err := config.Load(config.WithEnv(""))
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}

	// stdout carries the stdio transport, so logs go to stderr
	logger := contentCfg.Logger(os.Stderr)
	slog.SetDefault(logger)

	rt, err := contentCfg.BuildRuntime(context.Background(), logger)
	if err != nil {
		logger.Error("Failed to build runtime", "err", err)
		os.Exit(1)
	}
	defer rt.Close()

	s := server.NewMCPServer(
		"Demo Content Mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	handler := mcp.NewHandler(rt.Provisioner, splitCapabilities(cfg.Capabilities)...)
	handler.RegisterTools(s)

	switch *mode {
	case "sse":
		sseServer := server.NewSSEServer(s, server.WithBaseURL(cfg.BaseUrl))
		logger.Info("Starting SSE server", "base url", cfg.BaseUrl)
		if err := sseServer.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.Error("Failed to start SSE server", "err", err)
			os.Exit(1)
		}
	case "http":
		httpServer := server.NewStreamableHTTPServer(s)
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := httpServer.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logger.Error("Server error", "err", err)
			os.Exit(1)
		}
	default:
		logger.Info("Starting in stdio mode")
		if err := server.ServeStdio(s); err != nil {
			logger.Error("Failed to start stdio server", "err", err)
			os.Exit(1)
		}
	}
}

func splitCapabilities(value string) []string {
	var caps []string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			caps = append(caps, c)
		}
	}
	return caps
}
