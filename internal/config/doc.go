// Package config loads the server settings from defaults, config.yaml,
// .env, FLASHCARD_* environment variables and command-line flags, and
// validates the result.
package config
