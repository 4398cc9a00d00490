package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fmdata/internal/flagx"
	"github.com/dmitrijs2005/fmdata/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// an absent key from an empty one, so only keys present in the file
// override earlier values.
type JsonConfig struct {
	DatabaseURL     *string         `json:"database_url"`
	Host            *string         `json:"host"`
	Database        *string         `json:"database"`
	Credential      *string         `json:"credential"`
	SessionStore    *string         `json:"session_store"`
	SessionDSN      *string         `json:"session_dsn"`
	SessionKey      *string         `json:"session_key"`
	SessionLifetime *timex.Duration `json:"session_lifetime"`
	SealPassphrase  *string         `json:"seal_passphrase"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	LogLevel        *string         `json:"log_level"`
	LogFormat       *string         `json:"log_format"`
	MetricsAddr     *string         `json:"metrics_addr"`
}

// parseJson overlays cfg with the JSON file given by -c or -config. It is a
// no-op when neither flag is present.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&cfg.DatabaseURL, jc.DatabaseURL)
	setString(&cfg.Host, jc.Host)
	setString(&cfg.Database, jc.Database)
	setString(&cfg.Credential, jc.Credential)
	setString(&cfg.SessionStore, jc.SessionStore)
	setString(&cfg.SessionDSN, jc.SessionDSN)
	setString(&cfg.SessionKey, jc.SessionKey)
	setString(&cfg.SealPassphrase, jc.SealPassphrase)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	setString(&cfg.MetricsAddr, jc.MetricsAddr)
	if jc.SessionLifetime != nil {
		cfg.SessionLifetime = jc.SessionLifetime.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
