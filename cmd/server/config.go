package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/flashcard-api/internal/config"
	"github.com/spf13/pflag"
)

// loadAppConfig loads the application configuration. Flags set on the
// command line take precedence over every other source.
func loadAppConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadWithFlags(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func logConfig(logger *slog.Logger, cfg *config.Config) {
	logger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Any("allowed_origins", cfg.Server.AllowedOrigins),
		slog.Int("max_upload_mb", cfg.Server.MaxUploadMB))
	logger.Debug("llm configuration",
		slog.String("model", cfg.LLM.ModelName),
		slog.Bool("api_key_present", cfg.LLM.GeminiAPIKey != ""))
}
