package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/demo-content/pkg/democontent"
	"github.com/tendant/demo-content/pkg/democontent/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the demo-content admin CLI
func NewRootCommand() *cobra.Command {
	var asJSON bool
	var envPrefix string

	rootCmd := &cobra.Command{
		Use:   "demo-admin",
		Short: "Import and remove demo content",
		Long: `Demo content administration

Creates demo pages, posts, menus, and images for local development, and
removes exactly what it created. Safe to run multiple times; it will not
duplicate content.

Configuration is read from the environment (DATABASE_URL, STORAGE_URL, ...)
and an optional .env file.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&envPrefix, "env-prefix", "", "prefix for environment variables")

	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewTokenCommand())

	return rootCmd
}

// loadRuntime reads configuration and wires the provisioner. Logs go to
// stderr so --json output stays parseable.
func loadRuntime(cmd *cobra.Command) (*config.ServerConfig, *config.Runtime, error) {
	prefix, _ := cmd.Flags().GetString("env-prefix")
	cfg, err := config.Load(config.WithEnv(prefix))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := cfg.Logger(cmd.ErrOrStderr())
	if cfg.DatabaseType == "memory" {
		logger.Warn("Using in-memory database; content will not outlive this command")
	}

	rt, err := cfg.BuildRuntime(cmd.Context(), logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, rt, nil
}

// operatorContext grants the capability an administrator running the CLI
// is assumed to hold.
func operatorContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return democontent.WithCapabilities(ctx, democontent.CapabilityManageOptions)
}

func printResult(cmd *cobra.Command, v interface{}, notice string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	return writeResult(cmd.OutOrStdout(), asJSON, v, notice)
}

func writeResult(w io.Writer, asJSON bool, v interface{}, notice string) error {
	if !asJSON {
		_, err := fmt.Fprintln(w, notice)
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
