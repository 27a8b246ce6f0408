// Package repository gives typed access to the collections kept in a
// storage.Store. A missing collection reads as empty.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fitlog/internal/storage"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
)

// Collection is a list of T stored as one JSON array under a single key.
type Collection[T any] struct {
	store storage.Store
	key   storage.Key
}

func NewCollection[T any](store storage.Store, key storage.Key) *Collection[T] {
	return &Collection[T]{
		store: store,
		key:   key,
	}
}

func (c *Collection[T]) All(ctx context.Context) (items []T, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo."+string(c.key)+".all")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := c.store.Get(ctx, c.key, &items); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("get %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) Save(ctx context.Context, items []T) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo."+string(c.key)+".save")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if items == nil {
		items = []T{}
	}
	if err := c.store.Set(ctx, c.key, items); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

// Document is a single JSON value stored under a key.
type Document[T any] struct {
	store storage.Store
	key   storage.Key
}

func NewDocument[T any](store storage.Store, key storage.Key) *Document[T] {
	return &Document[T]{
		store: store,
		key:   key,
	}
}

// Get returns the stored value, found is false when nothing is stored.
func (d *Document[T]) Get(ctx context.Context) (value T, found bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo."+string(d.key)+".get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := d.store.Get(ctx, d.key, &value); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return value, false, nil
		}
		return value, false, fmt.Errorf("get %s: %w", d.key, err)
	}
	return value, true, nil
}

func (d *Document[T]) Save(ctx context.Context, value T) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo."+string(d.key)+".save")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := d.store.Set(ctx, d.key, value); err != nil {
		return fmt.Errorf("save %s: %w", d.key, err)
	}
	return nil
}

func (d *Document[T]) Remove(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo."+string(d.key)+".remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := d.store.Remove(ctx, d.key); err != nil {
		return fmt.Errorf("remove %s: %w", d.key, err)
	}
	return nil
}
