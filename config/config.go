// Package config reads the tools' settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/MelchiorLoze/valorant-battlepass-tracker/riot"
)

// DefaultLogFile is used when BP_LOG_FILE is not set.
const DefaultLogFile = "log.txt"

type Config struct {
	// LocalAppData locates the game log and the Riot client settings.
	LocalAppData string `env:"LOCALAPPDATA"`

	CacheFile string `env:"BP_CACHE_FILE" envDefault:"cache.yaml"`
	LogFile   string `env:"BP_LOG_FILE" envDefault:"log.txt"`
	HistoryDB string `env:"BP_HISTORY_DB" envDefault:"history.db"`

	ContractID string `env:"BP_CONTRACT_ID"`

	// TZOffset is added to the current time before computing the time left in the act.
	TZOffset time.Duration `env:"BP_TZ_OFFSET" envDefault:"0s"`

	LogLevel    string        `env:"BP_LOG_LEVEL" envDefault:"warning"`
	HTTPTimeout time.Duration `env:"BP_HTTP_TIMEOUT" envDefault:"0s"`

	Endpoints riot.Endpoints `envPrefix:"BP_"`
}

// Load starts from the built-in contract id and endpoints and applies the
// environment on top.
func Load() (Config, error) {
	cfg := Config{
		ContractID: riot.DefaultContractID,
		Endpoints:  riot.DefaultEndpoints(),
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

type logConfig struct {
	LogFile string `env:"BP_LOG_FILE" envDefault:"log.txt"`
}

// LogFile returns the error log path on its own, so a failure in the rest of
// the environment can still be written to it.
func LogFile() string {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil || cfg.LogFile == "" {
		return DefaultLogFile
	}

	return cfg.LogFile
}

func (c Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel, fmt.Errorf("log level: %w", err)
	}

	return level, nil
}
