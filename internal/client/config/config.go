package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/repositories/sessions"
)

// Config holds runtime settings for the fmdata CLI and client.
type Config struct {
	// DatabaseURL is the full base URL, e.g.
	// https://fm.example.com/fmi/data/v1/databases/Contacts. When empty it
	// is built from Host and Database.
	DatabaseURL string
	Host        string
	Database    string

	// Credential is base64("username:password").
	Credential string

	SessionStore    string // memory, sqlite, redis or postgres
	SessionDSN      string
	SessionKey      string
	SessionLifetime time.Duration
	SealPassphrase  string

	RequestTimeout time.Duration

	LogLevel    string
	LogFormat   string
	MetricsAddr string
}

const dataAPIPath = "/fmi/data/v1/databases/"

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.SessionStore = sessions.BackendSQLite
	c.SessionDSN = "fmdata.db"
	c.SessionLifetime = 15 * time.Minute
	c.RequestTimeout = client.DefaultTimeout
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Load builds a Config from defaults, then the JSON file named by -c or
// -config, then FM_* environment variables (a .env file is read first when
// present), then command-line flags. Later sources win.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// ResolvedDatabaseURL returns DatabaseURL, or the URL built from Host and
// Database, or "" when neither is configured. A Host without a scheme is
// reached over https.
func (c *Config) ResolvedDatabaseURL() string {
	if u := strings.TrimRight(strings.TrimSpace(c.DatabaseURL), "/"); u != "" {
		return u
	}
	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	db := strings.TrimSpace(c.Database)
	if host == "" || db == "" {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + dataAPIPath + url.PathEscape(db)
}

// SessionNamespace scopes the stored session. Without an explicit
// SessionKey each database gets its own session.
func (c *Config) SessionNamespace() string {
	if c.SessionKey != "" {
		return c.SessionKey
	}
	if u := c.ResolvedDatabaseURL(); u != "" {
		return u
	}
	return sessions.DefaultNamespace
}

// Validate checks the settings every command needs. Missing values are
// reported as client.ErrConfigMissing.
func (c *Config) Validate() error {
	var errs []error
	if c.ResolvedDatabaseURL() == "" {
		errs = append(errs, fmt.Errorf("%w: database url (set database_url, or host and database)", client.ErrConfigMissing))
	}

	switch strings.ToLower(c.SessionStore) {
	case sessions.BackendMemory:
	case sessions.BackendSQLite, sessions.BackendRedis, sessions.BackendPostgres:
		if strings.TrimSpace(c.SessionDSN) == "" {
			errs = append(errs, fmt.Errorf("%w: session_dsn for the %s session store", client.ErrConfigMissing, c.SessionStore))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q", c.SessionStore))
	}

	if c.SessionLifetime <= 0 {
		errs = append(errs, fmt.Errorf("session lifetime must be positive, got %s", c.SessionLifetime))
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

// SessionOptions maps the session settings onto the store factory.
func (c *Config) SessionOptions() sessions.Options {
	return sessions.Options{
		Backend:    c.SessionStore,
		DSN:        c.SessionDSN,
		Namespace:  c.SessionNamespace(),
		Passphrase: c.SealPassphrase,
	}
}
