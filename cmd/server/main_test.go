package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandLayout(t *testing.T) {
	root := newRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("port"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
	assert.NotNil(t, root.PersistentFlags().Lookup("database-url"))

	for _, name := range []string{migrateUp, migrateDown, migrateReset, migrateStatus, migrateVersion, migrateCreate} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := root.Find([]string{"migrate", name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}
}

func TestMigrateCreateRequiresName(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"migrate", "create"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestMigrateSubcommandsRejectArguments(t *testing.T) {
	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"migrate", "up", "extra"})

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestCreateMigrationRejectsBlankName(t *testing.T) {
	err := createMigration("   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestExecuteMigrationUnknownCommand(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := executeMigration(context.Background(), nil, "sideways", logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown migration command "sideways"`)
}

func TestSlogGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := &slogGooseLogger{logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	l.Printf("OK   %s\n", "00001_init.sql")
	l.Fatalf("failed: %v", "boom")

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO","msg":"OK   00001_init.sql"`)
	assert.Contains(t, out, `"level":"ERROR","msg":"failed: boom"`)
}
