package logging

import (
	"strings"

	"github.com/caarlos0/env/v11"
)

// Environment types.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds logger configuration. Field defaults match a library
// embedded in an interactive app: quiet, human-readable, no source info.
type Config struct {
	Level       string `env:"WORDSYNC_LOG_LEVEL" envDefault:"info"`        // debug, info, warn, error
	Format      string `env:"WORDSYNC_LOG_FORMAT" envDefault:"text"`       // text, json
	AddSource   bool   `env:"WORDSYNC_LOG_SOURCE" envDefault:"false"`      // add source code information
	Environment string `env:"WORDSYNC_ENV" envDefault:"development"`       // development, production, test
	File        string `env:"WORDSYNC_LOG_FILE"`                           // rotate to this file instead of stdout
	MaxSizeMB   int    `env:"WORDSYNC_LOG_MAX_SIZE_MB" envDefault:"20"`    // rotation threshold
	MaxBackups  int    `env:"WORDSYNC_LOG_MAX_BACKUPS" envDefault:"3"`     // rotated files to keep
	MaxAgeDays  int    `env:"WORDSYNC_LOG_MAX_AGE_DAYS" envDefault:"28"`   // days to keep rotated files
}

// DefaultConfig is used when no explicit configuration is provided.
var DefaultConfig = Config{
	Level:       "info",
	Format:      "text",
	Environment: EnvDevelopment,
	MaxSizeMB:   20,
	MaxBackups:  3,
	MaxAgeDays:  28,
}

// ConfigFromEnv builds a logger configuration from WORDSYNC_* environment
// variables, then applies environment-specific defaults.
func ConfigFromEnv() (Config, error) {
	var config Config
	if err := env.Parse(&config); err != nil {
		return DefaultConfig, err
	}

	config.Level = strings.ToLower(config.Level)
	config.Format = strings.ToLower(config.Format)
	config.Environment = strings.ToLower(config.Environment)

	switch config.Environment {
	case EnvProduction:
		// Production: JSON format for ingestion, no source info.
		config.Format = "json"
		config.AddSource = false
	case EnvTest:
		config.Format = "text"
		config.Level = "debug"
	}

	return config, nil
}
