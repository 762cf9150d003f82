package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "resolutions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissing(t *testing.T) {
	db := newTestDB(t)

	_, ok, err := db.Get(context.Background(), "binary:make")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPutAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, "binary:make", "make"))

	relation, ok, err := db.Get(ctx, "binary:make")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "make", relation)
}

func TestPutOverwrites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, "pkg-config:zlib", "zlib1g-dev"))
	require.NoError(t, db.Put(ctx, "pkg-config:zlib", "zlib1g-dev (>= 1.3)"))

	relation, ok, err := db.Get(ctx, "pkg-config:zlib")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "zlib1g-dev (>= 1.3)", relation)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, "binary:ninja", "ninja-build"))
	require.NoError(t, db.Delete(ctx, "binary:ninja"))
	require.NoError(t, db.Delete(ctx, "binary:ninja")) // idempotent

	_, ok, err := db.Get(ctx, "binary:ninja")
	require.NoError(t, err)
	assert.False(t, ok)
}
