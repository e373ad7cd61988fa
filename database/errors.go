package database

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a guarded write matched nothing because
	// the document moved on (status changed, already consumed, duplicate key).
	ErrConflict = errors.New("write conflict")
	// ErrInsufficientBalance is returned when a decrement would go negative.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrLockUnavailable is returned when a slot lock could not be taken.
	ErrLockUnavailable = errors.New("lock unavailable")
	// ErrNoTransaction is returned by operations that must run inside a transaction.
	ErrNoTransaction = errors.New("operation requires an active transaction")
)
