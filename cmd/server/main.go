// Package main implements the flashcard-api command, which serves the
// flashcard REST API and manages the database schema.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashcard-api",
		Short:         "Anki compatible flashcard API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (overrides FLASHCARD_DATABASE_URL)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd.Flags())
		},
	}
	cmd.Flags().Int("port", 0, "port to listen on (overrides FLASHCARD_SERVER_PORT)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or inspect the embedded goose migrations.

Examples:
  flashcard-api migrate up
  flashcard-api migrate status
  flashcard-api migrate create add_deck_description`,
	}

	for _, sub := range []struct {
		name  string
		short string
	}{
		{migrateUp, "Apply all pending migrations"},
		{migrateDown, "Roll back the most recent migration"},
		{migrateReset, "Roll back every migration"},
		{migrateStatus, "Show the status of every migration"},
		{migrateVersion, "Print the current schema version"},
	} {
		command := sub.name
		cmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd.Context(), cmd.Flags(), command)
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   migrateCreate + " NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return createMigration(args[0])
		},
	})

	return cmd
}
