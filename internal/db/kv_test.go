package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nested", "protodo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestKVRoundTrip(t *testing.T) {
	database := openTemp(t)
	ctx := context.Background()

	_, err := database.Get(ctx, "pt_auth_v1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, database.Set(ctx, "pt_auth_v1", `{"user":{"email":"a@b.co"}}`))
	require.NoError(t, database.Set(ctx, "pt_auth_v1", `{"user":{"email":"c@d.co"}}`))

	got, err := database.Get(ctx, "pt_auth_v1")
	require.NoError(t, err)
	assert.Equal(t, `{"user":{"email":"c@d.co"}}`, got)

	require.NoError(t, database.Delete(ctx, "pt_auth_v1"))
	require.NoError(t, database.Delete(ctx, "pt_auth_v1"), "deleting twice is fine")

	_, err = database.Get(ctx, "pt_auth_v1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protodo.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), "k", "v"))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	got, err := second.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
