// Package cache provides the local catalog cache used between the remote
// source and the embedded fallback. A store holds exactly one blob, the most
// recently fetched catalog, so the knowledge base can come up when the remote
// source is unreachable.
package cache

import (
	"context"
	"errors"
)

// ErrMiss reports that the store holds no cached catalog. Callers fall
// through to the next loader tier on a miss.
var ErrMiss = errors.New("cache: no cached catalog")

// Store reads and writes the single cached catalog blob.
type Store interface {
	// Read returns the cached blob, or ErrMiss when nothing is cached.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the cached blob.
	Write(ctx context.Context, data []byte) error

	// Name identifies the backend in logs ("file", "redis", "none").
	Name() string

	Close() error
}

// Nop is a Store that caches nothing. Used when caching is disabled.
type Nop struct{}

func (Nop) Read(context.Context) ([]byte, error) { return nil, ErrMiss }

func (Nop) Write(context.Context, []byte) error { return nil }

func (Nop) Name() string { return "none" }

func (Nop) Close() error { return nil }
