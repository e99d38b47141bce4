package db

import "errors"

var (
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
	// ErrNilTx is returned when WithTx or Read is called without a callback.
	ErrNilTx = errors.New("store callback is required")
)
