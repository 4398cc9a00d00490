package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// envConfig maps FM_* variables. Unset variables leave the earlier value.
type envConfig struct {
	DatabaseURL     string        `env:"FM_DATABASE_URL"`
	Host            string        `env:"FM_HOST"`
	Database        string        `env:"FM_DATABASE"`
	Credential      string        `env:"FM_AUTH"`
	SessionStore    string        `env:"FM_SESSION_STORE"`
	SessionDSN      string        `env:"FM_SESSION_DSN"`
	SessionKey      string        `env:"FM_SESSION_KEY"`
	SessionLifetime time.Duration `env:"FM_SESSION_LIFETIME"`
	SealPassphrase  string        `env:"FM_SEAL_PASSPHRASE"`
	RequestTimeout  time.Duration `env:"FM_REQUEST_TIMEOUT"`
	LogLevel        string        `env:"FM_LOG_LEVEL"`
	LogFormat       string        `env:"FM_LOG_FORMAT"`
	MetricsAddr     string        `env:"FM_METRICS_ADDR"`
}

// parseEnv loads dotenv files (".env" by default; missing files are
// skipped) into the process environment and overlays cfg with FM_*
// variables. Variables already set in the environment win over the files.
func parseEnv(cfg *Config, dotenvFiles ...string) error {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var ec envConfig
	if err := env.Load(&ec, nil); err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}

	overlay(&cfg.DatabaseURL, ec.DatabaseURL)
	overlay(&cfg.Host, ec.Host)
	overlay(&cfg.Database, ec.Database)
	overlay(&cfg.Credential, ec.Credential)
	overlay(&cfg.SessionStore, ec.SessionStore)
	overlay(&cfg.SessionDSN, ec.SessionDSN)
	overlay(&cfg.SessionKey, ec.SessionKey)
	overlay(&cfg.SealPassphrase, ec.SealPassphrase)
	overlay(&cfg.LogLevel, ec.LogLevel)
	overlay(&cfg.LogFormat, ec.LogFormat)
	overlay(&cfg.MetricsAddr, ec.MetricsAddr)
	if ec.SessionLifetime != 0 {
		cfg.SessionLifetime = ec.SessionLifetime
	}
	if ec.RequestTimeout != 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
