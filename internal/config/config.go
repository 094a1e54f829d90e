// Package config loads runtime settings with Viper.
//
// Precedence, lowest first: built-in defaults, the optional YAML file,
// SNIPPETS_* environment variables. Command-line flags are applied on top by
// the CLI after Load returns.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when reading the environment,
// e.g. SNIPPETS_DB_PATH.
const EnvPrefix = "SNIPPETS"

// Config holds every setting the app reads at startup.
type Config struct {
	// DBPath is the SQLite file. Relative paths resolve against the working
	// directory.
	DBPath string `mapstructure:"db_path"`

	// Addr is where `serve` listens. Loopback by default: the UI shell runs on
	// the same machine.
	Addr string `mapstructure:"addr"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// AuthEnabled turns the bearer session token on or off.
	AuthEnabled bool `mapstructure:"auth_enabled"`

	// TokenFile is where `serve` writes the session token for the UI shell.
	TokenFile string `mapstructure:"token_file"`

	// TokenTTL is how long a session token stays valid.
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() Config {
	return Config{
		DBPath:      "snippets.db",
		Addr:        "127.0.0.1:1420",
		LogLevel:    "info",
		AuthEnabled: true,
		TokenFile:   ".snippets-token",
		TokenTTL:    24 * time.Hour,
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply. A path that does not exist is an error: the
// user asked for that file explicitly.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("auth_enabled", d.AuthEnabled)
	v.SetDefault("token_file", d.TokenFile)
	v.SetDefault("token_ttl", d.TokenTTL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s not found", path)
			}
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("token_ttl must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

// ParseLevel maps a log_level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", s)
	}
}
