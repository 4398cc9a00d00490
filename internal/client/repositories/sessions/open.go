package sessions

import (
	"context"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/dmitrijs2005/fmdata/internal/client/client"
	"github.com/dmitrijs2005/fmdata/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fmdata/internal/filex"
)

// Options select and configure a backend.
type Options struct {
	Backend    string // memory, sqlite, redis or postgres
	DSN        string // file path, redis URL or postgres DSN
	Namespace  string
	Passphrase string // non-empty wraps the backend in a SealedStore
}

// Open builds the configured store. The returned close function releases
// the backend's connections and is never nil.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	noop := func() error { return nil }

	var (
		store   Store
		closeFn = noop
	)

	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend != "" && backend != BackendMemory && strings.TrimSpace(opts.DSN) == "" {
		return nil, noop, fmt.Errorf("session store %q: %w: dsn is not set", backend, client.ErrConfigMissing)
	}

	switch backend {
	case "", BackendMemory:
		store = NewMemoryStore()

	case BackendSQLite:
		dsn, err := sqliteDSN(opts.DSN)
		if err != nil {
			return nil, noop, err
		}
		db, err := client.InitDatabase(ctx, dsn)
		if err != nil {
			return nil, noop, err
		}
		store = NewSQLiteStore(metadata.NewSQLiteRepository(db), opts.Namespace)
		closeFn = db.Close

	case BackendRedis:
		rdb, err := NewRedisClient(ctx, opts.DSN)
		if err != nil {
			return nil, noop, err
		}
		store = NewRedisStore(rdb, opts.Namespace)
		closeFn = rdb.Close

	case BackendPostgres:
		pool, err := Connect(ctx, opts.DSN)
		if err != nil {
			return nil, noop, err
		}
		if err := EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		store = NewPostgresStore(pool, opts.Namespace)
		closeFn = func() error {
			pool.Close()
			return nil
		}

	default:
		return nil, noop, fmt.Errorf("unknown session store %q", opts.Backend)
	}

	if opts.Passphrase != "" {
		sealed, err := NewSealedStore(store, opts.Passphrase)
		if err != nil {
			_ = closeFn()
			return nil, noop, err
		}
		store = sealed
	}
	return store, closeFn, nil
}

// sqliteDSN prepares a plain file path; ":memory:" and "file:" URIs are
// passed to the driver untouched.
func sqliteDSN(dsn string) (string, error) {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return dsn, nil
	}
	path, err := filex.EnsureParentDir(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to prepare session database: %w", err)
	}
	return path, nil
}
