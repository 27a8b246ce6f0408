package storage

import (
	"context"
	"encoding/json"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// CachedStore is a read-through cache in front of another store. It keeps
// the raw JSON of recently read values; writes go through and invalidate.
type CachedStore struct {
	next          Store
	cache         *freecache.Cache
	expireSeconds int
}

// NewCachedStore caches up to cacheSize bytes, each entry for expireSeconds
// (0 means no expiry). freecache enforces a minimum size of 512KB.
func NewCachedStore(next Store, cacheSize, expireSeconds int) *CachedStore {
	return &CachedStore{
		next:          next,
		cache:         freecache.NewCache(cacheSize),
		expireSeconds: expireSeconds,
	}
}

func (s *CachedStore) Get(ctx context.Context, key Key, dest any) error {
	if data, err := s.cache.Get([]byte(key)); err == nil {
		return decode(key, data, dest)
	}

	var raw json.RawMessage
	if err := s.next.Get(ctx, key, &raw); err != nil {
		return err
	}
	if err := s.cache.Set([]byte(key), raw, s.expireSeconds); err != nil {
		// value larger than 1/1024 of the cache, served uncached
		log.Debugf("cache value for %s: %s", key, err)
	}
	return decode(key, raw, dest)
}

func (s *CachedStore) Set(ctx context.Context, key Key, value any) error {
	s.cache.Del([]byte(key))
	return s.next.Set(ctx, key, value)
}

func (s *CachedStore) Remove(ctx context.Context, key Key) error {
	s.cache.Del([]byte(key))
	return s.next.Remove(ctx, key)
}

func (s *CachedStore) Clear(ctx context.Context) error {
	s.cache.Clear()
	return s.next.Clear(ctx)
}

// HitRate is the share of cache lookups that were hits, 0..1.
func (s *CachedStore) HitRate() float64 {
	return s.cache.HitRate()
}

var _ Store = (*CachedStore)(nil)
