package databases_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/court-compliance-api/databases"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := databases.NewSQLiteStore(filepath.Join(t.TempDir(), "court.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Get(ctx, "ns", "deadline:1")
	assert.ErrorIs(t, err, databases.ErrKeyNotFound)

	require.NoError(t, db.Set(ctx, "ns", "deadline:1", []byte("one")))
	require.NoError(t, db.Set(ctx, "ns", "deadline:1", []byte("uno")))
	require.NoError(t, db.Set(ctx, "ns", "deadline:2", []byte("two")))
	require.NoError(t, db.Set(ctx, "ns", "reminder:1", []byte("r")))
	require.NoError(t, db.Set(ctx, "other", "deadline:9", []byte("x")))

	v, err := db.Get(ctx, "ns", "deadline:1")
	assert.NoError(t, err)
	assert.Equal(t, "uno", string(v))

	keys, err := db.Keys(ctx, "ns", "deadline:")
	assert.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"deadline:1", "deadline:2"}, keys)

	ok, err := db.CompareAndSwap(ctx, "ns", "deadline:1", nil, []byte("dup"))
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.CompareAndSwap(ctx, "ns", "deadline:1", []byte("uno"), []byte("eins"))
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = db.CompareAndSwap(ctx, "ns", "deadline:3", nil, []byte("three"))
	assert.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, db.Delete(ctx, "ns", "deadline:2"))
	_, err = db.Get(ctx, "ns", "deadline:2")
	assert.ErrorIs(t, err, databases.ErrKeyNotFound)
}
