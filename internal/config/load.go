package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FLASHCARD"

// defaults lists every configuration key. Viper only resolves environment
// variables for keys it already knows, so required keys appear here too.
var defaults = map[string]interface{}{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.allowed_origins":              []string{"*"},
	"server.max_upload_mb":                50,
	"database.url":                        "",
	"auth.jwt_secret":                     "",
	"auth.bcrypt_cost":                    10,
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"llm.gemini_api_key":                  "",
	"llm.model_name":                      "gemini-2.0-flash",
	"llm.prompt_template_path":            "",
	"llm.max_retries":                     3,
	"llm.retry_delay_seconds":             2,
	"llm.request_timeout_seconds":         30,
	"task.worker_count":                   2,
	"task.queue_size":                     100,
	"task.stuck_task_age_minutes":         30,
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"port":         "server.port",
	"log-level":    "server.log_level",
	"database-url": "database.url",
}

// Load reads configuration from defaults, an optional config.yaml, an optional
// .env file and FLASHCARD_* environment variables, in increasing precedence.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags behaves like Load and additionally lets any flag in fs that
// has been set on the command line override the resolved value.
func LoadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Comma separated origins arrive from the environment as a single string.
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func splitOrigins(origins []string) []string {
	var out []string
	for _, o := range origins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
