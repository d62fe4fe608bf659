package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. PLANNER_STORAGE_PATH
const EnvPrefix = "PLANNER"

// Settings are application-level options, distinct from a plan
type Settings struct {
	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
	Storage struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"storage"`
	Simulation struct {
		Workers int   `mapstructure:"workers"`
		Seed    int64 `mapstructure:"seed"`
	} `mapstructure:"simulation"`
	Output struct {
		Format string `mapstructure:"format"`
	} `mapstructure:"output"`
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("storage.path", "$HOME/.local/share/planner/runs.db")
	v.SetDefault("simulation.workers", 10)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("output.format", "console")
}

// LoadSettings reads an optional config file and PLANNER_* environment variables into v.
// An explicit cfgFile must exist; the default search locations may be empty.
func LoadSettings(v *viper.Viper, cfgFile string) (*Settings, error) {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "planner"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.Storage.Path = ExpandPath(s.Storage.Path)
	return &s, nil
}

// ExpandPath expands a leading ~ and environment variables
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// NewLogger builds a slog logger for level (debug|info|warn|error) and format (console|json)
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: slogLevel}
	var handler slog.Handler
	switch format {
	case "console":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	return slog.New(handler), nil
}
