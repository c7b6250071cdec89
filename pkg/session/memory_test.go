package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agentrt/pkg/session"
)

func TestMemoryStore_SaveLoadRoundTrip(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	rec := session.Record{
		ThreadID:     "t1",
		StateBlob:    []byte(`{"messages":[]}`),
		MessageCount: 3,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, rec.StateBlob, got.StateBlob)
	assert.Equal(t, rec.MessageCount, got.MessageCount)
}

func TestMemoryStore_LoadMissingReturnsErrNotFound(t *testing.T) {
	store := session.NewMemoryStore()
	_, err := store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestMemoryStore_DeleteThenList(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.Record{ThreadID: "a"}))
	require.NoError(t, store.Save(ctx, session.Record{ThreadID: "b"}))
	require.NoError(t, store.Delete(ctx, "a"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)
}
