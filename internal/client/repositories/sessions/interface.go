// Package sessions persists the cached Data API session.
//
// Every backend keeps at most one session per namespace and applies the
// same write rule: Save replaces the stored session only when the new one
// does not expire earlier. Two processes that refresh concurrently
// therefore converge on the later token.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

type Store interface {
	// Load returns the stored session, or the zero Session when none is stored.
	Load(ctx context.Context) (models.Session, error)
	// Save stores s unless the stored session expires later. It reports
	// whether s was written.
	Save(ctx context.Context, s models.Session) (bool, error)
	// Clear removes the stored session.
	Clear(ctx context.Context) error
}

// Backend names accepted by the configuration.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultNamespace is used when no session key is configured.
const DefaultNamespace = "default"

func newer(candidate, stored models.Session) bool {
	return stored.IsZero() || !candidate.ExpiresAt.Before(stored.ExpiresAt)
}
