package storage_test

import (
	"context"
	"testing"

	"github.com/2beens/fitlog/internal/storage"
	"github.com/2beens/fitlog/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedStore(t *testing.T) {
	ctx := context.Background()
	metricsManager := metrics.NewTestManager()
	store := storage.NewInstrumentedStore(storage.NewMemoryStore(8), metricsManager)

	var dest []string
	assert.ErrorIs(t, store.Get(ctx, storage.KeyGoals, &dest), storage.ErrNotFound)
	assert.Equal(t, 0, testutil.CollectAndCount(metricsManager.CounterStoreErrors))

	require.Error(t, store.Set(ctx, storage.KeyGoals, []string{"too long for the store"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		metricsManager.CounterStoreErrors.WithLabelValues("set", string(storage.ErrorTypeQuotaExceeded)),
	))

	require.NoError(t, store.Set(ctx, storage.KeyGoals, "x"))
	require.NoError(t, store.Remove(ctx, storage.KeyGoals))
	require.NoError(t, store.Clear(ctx))
}
