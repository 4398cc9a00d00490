// Package metadata is a small key/value table in the local SQLite database.
// The session store keeps its state under a single key.
package metadata

import (
	"context"
)

// UpdateFunc receives the current value of a key (nil when absent) and
// returns the value to write. Returning write=false leaves the row as is.
type UpdateFunc func(current []byte) (next []byte, write bool, err error)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
