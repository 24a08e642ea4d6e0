package echodb

import "errors"

// Sentinel errors returned by Transaction operations. Callers compare with
// errors.Is. None of these terminates the transaction: Commit and Cancel are
// the only terminators, so a transaction that returned ErrTxNotWritable,
// ErrKeyAlreadyExists or ErrValueNotExpected remains usable.
var (
	// ErrTxClosed is returned by any operation on a transaction that has
	// already been committed or canceled.
	ErrTxClosed = errors.New("echodb: transaction is closed")

	// ErrTxNotWritable is returned by a mutating operation or Commit on a
	// read-only transaction.
	ErrTxNotWritable = errors.New("echodb: transaction is not writable")

	// ErrKeyAlreadyExists is returned by Put when the key is already present.
	ErrKeyAlreadyExists = errors.New("echodb: key already exists")

	// ErrValueNotExpected is returned by Putc/Delc when the current value
	// does not match the caller's expectation.
	ErrValueNotExpected = errors.New("echodb: value not expected")
)
