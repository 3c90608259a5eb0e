package rest

import "github.com/caarlos0/env/v11"

// ConfigFromEnv builds a client configuration from WORDSYNC_REMOTE_*
// environment variables, with defaults applied for everything but the
// URL and key.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	cfg.setDefaults()
	return cfg, nil
}
