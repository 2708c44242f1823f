package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/noah-isme/lms-api/internal/repository"
	"github.com/noah-isme/lms-api/pkg/config"
	"github.com/noah-isme/lms-api/pkg/database"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lmsctl",
		Short:         "Operational tasks for the LMS API database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newUsersCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage schema migrations",
	}
	for _, sub := range []struct{ use, short string }{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the latest migration"},
		{"status", "Print migration status"},
		{"reset", "Roll back every migration"},
	} {
		command := sub.use
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return withDB(func(db *sqlx.DB) error {
					return database.Migrate(db.DB, command)
				})
			},
		})
	}
	return cmd
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "approve <user-id>",
		Short: "Approve an account without going through the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return withDB(func(db *sqlx.DB) error {
				ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
				defer cancel()
				if err := repository.NewUserRepository(db).Approve(ctx, args[0]); err != nil {
					if errors.Is(err, sql.ErrNoRows) {
						return fmt.Errorf("user %s not found", args[0])
					}
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "approved %s\n", args[0])
				return nil
			})
		},
	})
	return cmd
}

func withDB(fn func(db *sqlx.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck
	return fn(db)
}
