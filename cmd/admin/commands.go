package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/demo-content/pkg/democontent"
	"github.com/tendant/demo-content/pkg/democontent/api"
	"github.com/tendant/demo-content/pkg/democontent/config"
	repopg "github.com/tendant/demo-content/pkg/democontent/repo/postgres"
)

// NewImportCommand creates the import command
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import demo pages, posts, menu, and images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Provisioner.RunImport(operatorContext(cmd.Context()))
			if err != nil {
				return errors.New(democontent.ErrorNotice(err))
			}
			return printResult(cmd, result, democontent.ImportNotice(result))
		},
	}
}

type removeResult struct {
	Removed int `json:"removed"`
}

// NewRemoveCommand creates the remove command
func NewRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Permanently delete all demo content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, rt, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			removed := rt.Provisioner.RemoveDemoContent(operatorContext(cmd.Context()))
			return printResult(cmd, removeResult{Removed: removed}, democontent.RemovalNotice(removed))
		},
	}
}

// NewMigrateCommand creates the migrate command
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the Postgres tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix, _ := cmd.Flags().GetString("env-prefix")
			cfg, err := config.Load(config.WithEnv(prefix))
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if cfg.DatabaseType != "postgres" {
				return errors.New("migrate requires a postgres DATABASE_URL")
			}

			pool, err := cfg.NewPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repopg.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

// NewTokenCommand creates the token command
func NewTokenCommand() *cobra.Command {
	var subject string
	var capabilities []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin access token signed with JWT_SECRET",
		Long: `Mint an access token for the admin server. The JSON API takes it as
"Authorization: Bearer <token>"; the admin page also accepts the "jwt" cookie.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			token, err := api.NewAuth([]byte(secret), 0).IssueToken(subject, capabilities, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().StringSliceVar(&capabilities, "caps", []string{democontent.CapabilityManageOptions}, "granted capabilities")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
