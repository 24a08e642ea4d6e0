package echodb

import (
	"cmp"
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/surrealdb/echodb/internal/omap"
)

// Database is a long-lived, in-memory, ordered key-value store. It holds an
// atomic pointer to the currently committed map and a single-slot semaphore
// that serializes writers. The zero value is not usable; construct one with
// New.
//
// Database is safe for concurrent use by any number of goroutines.
type Database[K cmp.Ordered, V comparable] struct {
	committed atomic.Pointer[omap.Map[K, V]]
	writer    *semaphore.Weighted

	cfg config
}

// New constructs an empty Database.
func New[K cmp.Ordered, V comparable](opts ...Option) *Database[K, V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Database[K, V]{
		writer: semaphore.NewWeighted(1),
		cfg:    cfg,
	}
	d.committed.Store(omap.New[K, V]())
	return d
}

// Begin produces a fresh Transaction.
//
// If write is true, Begin suspends until the writer token is available (or
// ctx is done, in which case the pending acquire drops out of the queue with
// no effect on the database). The snapshot handed to the transaction is
// always the map committed at the moment the snapshot is loaded — for a
// writer that is *after* the token is acquired, not when Begin is called,
// so the writer's edits compose sequentially with every earlier commit
// rather than racing one of them.
func (d *Database[K, V]) Begin(ctx context.Context, write bool) (*Transaction[K, V], error) {
	if write {
		if err := d.writer.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("echodb: acquiring writer token: %w", err)
		}
	}

	snap := d.committed.Load().Copy()

	tx := &Transaction[K, V]{
		db:       d,
		write:    write,
		snapshot: snap,
	}
	if write {
		tx.armFinalizer()
	}

	d.cfg.logger.Debug("begin", "write", write)
	return tx, nil
}
