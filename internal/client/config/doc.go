// Package config loads runtime configuration for the fmdata CLI.
//
// # Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. FM_* environment variables; a .env file in the working directory is
//     loaded first when present.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations are strings like "30s" or integer nanoseconds:
//
//	{
//	  "host": "fm.example.com",
//	  "database": "Contacts",
//	  "credential": "dGVzdDp0ZXN0",
//	  "session_store": "redis",
//	  "session_dsn": "redis://localhost:6379/0",
//	  "session_lifetime": "15m",
//	  "request_timeout": "30s",
//	  "log_level": "info"
//	}
//
// # Environment
//
//	FM_DATABASE_URL FM_HOST FM_DATABASE FM_AUTH
//	FM_SESSION_STORE FM_SESSION_DSN FM_SESSION_KEY FM_SESSION_LIFETIME
//	FM_SEAL_PASSPHRASE FM_REQUEST_TIMEOUT
//	FM_LOG_LEVEL FM_LOG_FORMAT FM_METRICS_ADDR
package config
