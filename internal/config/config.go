package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyDatabasePath  = "database.path"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
	KeyOutputColor   = "output.color"
	EnvPrefix        = "ROSE"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	DatabasePath string
	LogLevel     string
	LogFormat    string
	Color        bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyOutputColor, true)
}

// EnvKeyReplacer maps nested keys such as logging.level to ROSE_LOGGING_LEVEL.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// Load reads and validates settings from v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Color:        v.GetBool(KeyOutputColor),
	}

	if s.DatabasePath == "" {
		return s, fmt.Errorf("%w: %s is empty", common.ErrInvalidConfig, KeyDatabasePath)
	}
	if _, err := common.ParseLevel(s.LogLevel); err != nil {
		return s, err
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return s, fmt.Errorf("%w: log format %q", common.ErrInvalidConfig, s.LogFormat)
	}

	return s, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		err := godotenv.Load(path)
		if err == nil {
			slog.Debug("Loaded environment file", "path", path)
			continue
		}
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
