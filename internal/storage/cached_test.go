package storage_test

import (
	"context"
	"testing"

	"github.com/2beens/fitlog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	storage.Store
	gets int
}

func (s *countingStore) Get(ctx context.Context, key storage.Key, dest any) error {
	s.gets++
	return s.Store.Get(ctx, key, dest)
}

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Store: storage.NewMemoryStore(0)}
	store := storage.NewCachedStore(backing, 1024*1024, 0)

	require.NoError(t, store.Set(ctx, storage.KeyGoals, []testEntry{{ID: "g1", Value: 4}}))

	for i := 0; i < 3; i++ {
		var goals []testEntry
		require.NoError(t, store.Get(ctx, storage.KeyGoals, &goals))
		assert.Equal(t, []testEntry{{ID: "g1", Value: 4}}, goals)
	}
	assert.Equal(t, 1, backing.gets)
	assert.Greater(t, store.HitRate(), 0.0)

	// a write invalidates
	require.NoError(t, store.Set(ctx, storage.KeyGoals, []testEntry{{ID: "g1", Value: 5}}))
	var goals []testEntry
	require.NoError(t, store.Get(ctx, storage.KeyGoals, &goals))
	assert.Equal(t, 5.0, goals[0].Value)
	assert.Equal(t, 2, backing.gets)

	require.NoError(t, store.Remove(ctx, storage.KeyGoals))
	assert.ErrorIs(t, store.Get(ctx, storage.KeyGoals, &goals), storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, storage.KeyMeals, []testEntry{}))
	require.NoError(t, store.Clear(ctx))
	assert.ErrorIs(t, store.Get(ctx, storage.KeyMeals, &goals), storage.ErrNotFound)
}
