package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	session := NewSession("s-1", time.Now().UTC())
	session.Draft.Customer.Name = "Jane"
	require.NoError(t, store.Save(ctx, session))

	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Jane", got.Draft.Customer.Name)

	got.Draft.Customer.Name = "changed"
	again, err := store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Draft.Customer.Name, "stored sessions are copies")

	require.NoError(t, store.Delete(ctx, "s-1"))
	require.NoError(t, store.Delete(ctx, "s-1"))
	got, err = store.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, NewSession("a", now)))
	require.NoError(t, store.Save(ctx, NewSession("b", now)))

	now = now.Add(45 * time.Second)
	require.NoError(t, store.Save(ctx, NewSession("b", now)))

	now = now.Add(30 * time.Second)
	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got, "a expired")

	got, err = store.Get(ctx, "b")
	require.NoError(t, err)
	assert.NotNil(t, got, "saving b refreshed its expiry")

	now = now.Add(time.Minute)
	assert.Equal(t, 1, store.Sweep())
}

func TestMemoryStore_ZeroTTLKeepsSessions(t *testing.T) {
	store := NewMemoryStore(0)
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, NewSession("a", now)))
	now = now.Add(24 * time.Hour)

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Zero(t, store.Sweep())
}
