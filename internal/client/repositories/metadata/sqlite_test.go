package metadata

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/fmdata/internal/client/client"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "session", []byte(`{"token":"abc123"}`)))

	v, err := r.Get(ctx, "session")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"token":"abc123"}`), v)
}

func TestGet_Absent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestUpdate_WritesFromCurrent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	var seen []byte
	err := r.Update(ctx, "k", func(cur []byte) ([]byte, bool, error) {
		seen = cur
		return []byte("1"), true, nil
	})
	require.NoError(t, err)
	assert.Nil(t, seen, "absent key is passed as nil")

	err = r.Update(ctx, "k", func(cur []byte) ([]byte, bool, error) {
		seen = cur
		return append(append([]byte{}, cur...), '2'), true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), seen)

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("12"), v)
}

func TestUpdate_SkipWrite(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "k", []byte("keep")))

	require.NoError(t, r.Update(ctx, "k", func([]byte) ([]byte, bool, error) {
		return []byte("drop"), false, nil
	}))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), v)
}

func TestUpdate_ErrorRollsBack(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "k", []byte("keep")))

	boom := errors.New("boom")
	err := r.Update(ctx, "k", func([]byte) ([]byte, bool, error) {
		return []byte("drop"), true, boom
	})
	require.ErrorIs(t, err, boom)

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("keep"), v)
}

func TestUpdate_ConcurrentIncrementsAreSerialized(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Update(ctx, "n", func(cur []byte) ([]byte, bool, error) {
				return append(append([]byte{}, cur...), 'x'), true, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := r.Get(ctx, "n")
	require.NoError(t, err)
	assert.Len(t, v, workers)
}

func TestList_ReturnsAllPairs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte{0xAA}, m["a"])
	assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.Clear(ctx))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestClosedDB_ErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")

	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")

	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")

	require.Error(t, r.Update(ctx, "k", func([]byte) ([]byte, bool, error) { return nil, true, nil }))
}
