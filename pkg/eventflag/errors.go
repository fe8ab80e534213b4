package eventflag

import "errors"

// Sentinel errors for keyed waits.
var (
	// ErrUIDRequired indicates Register was called with an empty uid.
	ErrUIDRequired = errors.New("uid is required")

	// ErrDuplicateUID indicates the uid is already registered in the pool.
	ErrDuplicateUID = errors.New("uid already registered")

	// ErrNotFound indicates no pending wait exists for the uid.
	ErrNotFound = errors.New("no pending wait for uid")

	// ErrPoolClosed indicates the pool was closed while waits were pending
	// or before registration.
	ErrPoolClosed = errors.New("pool is closed")
)
