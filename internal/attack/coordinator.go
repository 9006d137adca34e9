package attack

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Coordinator owns the one piece of shared mutable state in the subsystem:
// which snapshot is active. Readers take the current snapshot with a single
// atomic load and then query it lock-free; reloads are single-flight, so
// concurrent triggers share one underlying load instead of racing.
type Coordinator struct {
	loader *Loader
	logger *slog.Logger

	current atomic.Pointer[Snapshot]

	mu       sync.Mutex
	inflight *reloadCall
}

// reloadCall carries one in-flight load's result to every caller waiting on
// it. done closes after snap/err are set.
type reloadCall struct {
	done chan struct{}
	snap *Snapshot
	err  error
}

func NewCoordinator(loader *Loader, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{loader: loader, logger: logger}
}

// Snapshot returns the active snapshot. Before the first successful Reload
// there is nothing to query and the call fails with ErrNotInitialized.
func (c *Coordinator) Snapshot() (*Snapshot, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, ErrNotInitialized
	}
	return snap, nil
}

// Reload loads a fresh catalog and atomically swaps it in. If a reload is
// already in flight the caller waits for that one's result rather than
// starting a duplicate load; a canceled context abandons the wait but not
// the load itself.
func (c *Coordinator) Reload(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &reloadCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	snap, err := c.load(ctx)
	call.snap, call.err = snap, err
	close(call.done)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()

	return snap, err
}

// load runs the tiered loader, builds the derived structures, and publishes
// the finished snapshot. Readers see either the old snapshot or the new one,
// never a partial build, because the swap happens only after everything is
// constructed.
func (c *Coordinator) load(ctx context.Context) (*Snapshot, error) {
	result, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	store := NewStore(result.Catalog)
	snap := &Snapshot{
		Catalog:        result.Catalog,
		Store:          store,
		Index:          NewIndex(store),
		Source:         result.Source,
		SkippedRecords: result.SkippedRecords,
		LoadedAt:       time.Now().UTC(),
	}

	c.current.Store(snap)
	c.logger.Info("snapshot activated",
		"source", snap.Source,
		"techniques", store.Len(),
		"skipped_records", snap.SkippedRecords)
	return snap, nil
}
