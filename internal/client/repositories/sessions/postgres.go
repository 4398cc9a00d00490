package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrijs2005/fmdata/internal/client/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS fmdata_sessions (
    namespace  TEXT PRIMARY KEY,
    token      TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
)`

// PostgresStore shares one session per namespace through a PostgreSQL table.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// EnsureSchema creates the sessions table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

func NewPostgresStore(pool *pgxpool.Pool, namespace string) *PostgresStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &PostgresStore{pool: pool, namespace: namespace}
}

func (s *PostgresStore) Load(ctx context.Context) (models.Session, error) {
	var sess models.Session
	err := s.pool.QueryRow(ctx,
		`SELECT token, expires_at FROM fmdata_sessions WHERE namespace = $1`,
		s.namespace,
	).Scan(&sess.Token, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	return sess, nil
}

func (s *PostgresStore) Save(ctx context.Context, next models.Session) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO fmdata_sessions (namespace, token, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace) DO UPDATE
		SET token = excluded.token, expires_at = excluded.expires_at
		WHERE fmdata_sessions.expires_at <= excluded.expires_at
	`, s.namespace, next.Token, next.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to save session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM fmdata_sessions WHERE namespace = $1`, s.namespace); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
