package echodb

import (
	"cmp"
	"runtime"

	"github.com/surrealdb/echodb/internal/omap"
)

// Transaction is a per-client handle over a private, structurally-shared
// snapshot of the database. A read-only transaction (write=false) exposes
// only the point/range read operations and Cancel; a read-write transaction
// additionally exposes the mutating operations and Commit.
//
// Transaction is not safe for concurrent use by multiple goroutines — like
// database/sql.Tx, it is meant to be owned by a single goroutine for its
// lifetime.
type Transaction[K cmp.Ordered, V comparable] struct {
	db       *Database[K, V]
	write    bool
	done     bool
	snapshot *omap.Map[K, V]
}

// armFinalizer installs a backstop that releases the writer token if a
// write transaction is garbage-collected without ever calling Commit or
// Cancel. This does not make abandoning a writer safe — every further
// Begin(ctx, true) blocks until the finalizer runs, which is not on any
// deadline — it only keeps a leaked transaction from wedging the database
// forever.
func (tx *Transaction[K, V]) armFinalizer() {
	runtime.SetFinalizer(tx, func(t *Transaction[K, V]) {
		if t.done {
			return
		}
		t.db.cfg.logger.Warn("write transaction garbage-collected without commit or cancel; releasing writer token")
		t.done = true
		t.db.writer.Release(1)
	})
}

func (tx *Transaction[K, V]) disarmFinalizer() {
	runtime.SetFinalizer(tx, nil)
}

// Closed reports whether the transaction has terminated (by Commit or
// Cancel).
func (tx *Transaction[K, V]) Closed() bool {
	return tx.done
}

// Exists reports whether key is present in the transaction's snapshot.
func (tx *Transaction[K, V]) Exists(key K) (bool, error) {
	if tx.done {
		return false, ErrTxClosed
	}
	_, ok := tx.snapshot.Get(key)
	return ok, nil
}

// Get returns the value at key and whether it was found.
func (tx *Transaction[K, V]) Get(key K) (V, bool, error) {
	if tx.done {
		var zero V
		return zero, false, ErrTxClosed
	}
	v, ok := tx.snapshot.Get(key)
	return v, ok, nil
}

// Set unconditionally inserts or overwrites key with val.
func (tx *Transaction[K, V]) Set(key K, val V) error {
	if err := tx.writable(); err != nil {
		return err
	}
	tx.snapshot.Set(key, val)
	return nil
}

// Put inserts key with val only if key is not already present. It fails
// with ErrKeyAlreadyExists otherwise.
func (tx *Transaction[K, V]) Put(key K, val V) error {
	if err := tx.writable(); err != nil {
		return err
	}
	if _, ok := tx.snapshot.Get(key); ok {
		return ErrKeyAlreadyExists
	}
	tx.snapshot.Set(key, val)
	return nil
}

// Putc performs a conditional insert/update: if expected is nil, key must be
// absent and is inserted; if expected is non-nil, key must be present with a
// value equal to *expected, and is updated. Any other case fails with
// ErrValueNotExpected and leaves the snapshot unchanged.
func (tx *Transaction[K, V]) Putc(key K, val V, expected *V) error {
	if err := tx.writable(); err != nil {
		return err
	}
	cur, ok := tx.snapshot.Get(key)
	switch {
	case expected == nil && !ok:
		tx.snapshot.Set(key, val)
		return nil
	case expected != nil && ok && cur == *expected:
		tx.snapshot.Set(key, val)
		return nil
	default:
		return ErrValueNotExpected
	}
}

// Del unconditionally removes key. A missing key is a no-op.
func (tx *Transaction[K, V]) Del(key K) error {
	if err := tx.writable(); err != nil {
		return err
	}
	tx.snapshot.Delete(key)
	return nil
}

// Delc performs a conditional removal: if expected is nil, key must be
// absent (a no-op); if expected is non-nil, key must be present with a value
// equal to *expected, and is removed. Any other case fails with
// ErrValueNotExpected and leaves the snapshot unchanged.
func (tx *Transaction[K, V]) Delc(key K, expected *V) error {
	if err := tx.writable(); err != nil {
		return err
	}
	cur, ok := tx.snapshot.Get(key)
	switch {
	case expected == nil && !ok:
		return nil
	case expected != nil && ok && cur == *expected:
		tx.snapshot.Delete(key)
		return nil
	default:
		return ErrValueNotExpected
	}
}

// Keys returns up to limit keys in the half-open range [r.Lo, r.Hi), in
// ascending order.
func (tx *Transaction[K, V]) Keys(r Range[K], limit int) ([]K, error) {
	if tx.done {
		return nil, ErrTxClosed
	}
	return tx.snapshot.Keys(r.Lo, r.Hi, limit), nil
}

// Scan returns up to limit (key, value) pairs in the half-open range
// [r.Lo, r.Hi), in ascending order.
func (tx *Transaction[K, V]) Scan(r Range[K], limit int) ([]Pair[K, V], error) {
	if tx.done {
		return nil, ErrTxClosed
	}
	pairs := tx.snapshot.Scan(r.Lo, r.Hi, limit)
	out := make([]Pair[K, V], len(pairs))
	for i, p := range pairs {
		out[i] = Pair[K, V]{Key: p.Key, Val: p.Val}
	}
	return out, nil
}

// Commit publishes the transaction's snapshot as the database's new
// committed map and releases the writer token. It fails if the transaction
// is read-only or already done.
func (tx *Transaction[K, V]) Commit() error {
	if tx.done {
		return ErrTxClosed
	}
	if !tx.write {
		return ErrTxNotWritable
	}
	tx.done = true
	tx.disarmFinalizer()

	tx.db.committed.Store(tx.snapshot)
	tx.db.writer.Release(1)
	tx.db.cfg.logger.Debug("commit")
	return nil
}

// Cancel discards the transaction's snapshot and, if it was a writer,
// releases the writer token. It fails only if the transaction is already
// done.
func (tx *Transaction[K, V]) Cancel() error {
	if tx.done {
		return ErrTxClosed
	}
	tx.done = true
	tx.disarmFinalizer()

	if tx.write {
		tx.db.writer.Release(1)
	}
	tx.db.cfg.logger.Debug("cancel")
	return nil
}

func (tx *Transaction[K, V]) writable() error {
	if tx.done {
		return ErrTxClosed
	}
	if !tx.write {
		return ErrTxNotWritable
	}
	return nil
}
