package storage

import (
	"context"
	"errors"

	"github.com/2beens/fitlog/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// InstrumentedStore counts and logs failed operations of the wrapped store.
// A missing key is not a failure.
type InstrumentedStore struct {
	next           Store
	metricsManager *metrics.Manager
}

func NewInstrumentedStore(next Store, metricsManager *metrics.Manager) *InstrumentedStore {
	return &InstrumentedStore{
		next:           next,
		metricsManager: metricsManager,
	}
}

func (s *InstrumentedStore) Get(ctx context.Context, key Key, dest any) error {
	return s.observe("get", key, s.next.Get(ctx, key, dest))
}

func (s *InstrumentedStore) Set(ctx context.Context, key Key, value any) error {
	return s.observe("set", key, s.next.Set(ctx, key, value))
}

func (s *InstrumentedStore) Remove(ctx context.Context, key Key) error {
	return s.observe("remove", key, s.next.Remove(ctx, key))
}

func (s *InstrumentedStore) Clear(ctx context.Context) error {
	return s.observe("clear", "", s.next.Clear(ctx))
}

func (s *InstrumentedStore) observe(op string, key Key, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	errType := TypeOf(err)
	s.metricsManager.CounterStoreErrors.WithLabelValues(op, string(errType)).Inc()
	log.Errorf("store %s %s failed [%s]: %s", op, key, errType, err)
	return err
}
