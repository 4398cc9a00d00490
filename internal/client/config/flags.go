package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/fmdata/internal/flagx"
)

var knownFlags = []string{
	"-url", "-host", "-db", "-auth",
	"-store", "-dsn", "-ns", "-lifetime",
	"-timeout", "-log-level", "-log-format", "-metrics",
}

// parseFlags overlays cfg with command-line flags. Arguments belonging to
// other parsers (such as -c) are filtered out first.
//
//	-url string        database base URL
//	-host string       server host, used with -db when -url is empty
//	-db string         database name
//	-auth string       base64 "username:password" credential
//	-store string      session store: memory, sqlite, redis, postgres
//	-dsn string        session store file path, redis URL or postgres DSN
//	-ns string         session namespace
//	-lifetime duration assumed session lifetime
//	-timeout duration  per-request timeout
//	-log-level string  debug, info, warn, error
//	-log-format string text or json
//	-metrics string    address for the Prometheus endpoint
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("fmdata", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseURL, "url", cfg.DatabaseURL, "database base URL")
	fs.StringVar(&cfg.Host, "host", cfg.Host, "server host")
	fs.StringVar(&cfg.Database, "db", cfg.Database, "database name")
	fs.StringVar(&cfg.Credential, "auth", cfg.Credential, "base64 username:password")
	fs.StringVar(&cfg.SessionStore, "store", cfg.SessionStore, "session store backend")
	fs.StringVar(&cfg.SessionDSN, "dsn", cfg.SessionDSN, "session store DSN")
	fs.StringVar(&cfg.SessionKey, "ns", cfg.SessionKey, "session namespace")
	fs.DurationVar(&cfg.SessionLifetime, "lifetime", cfg.SessionLifetime, "assumed session lifetime")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}
