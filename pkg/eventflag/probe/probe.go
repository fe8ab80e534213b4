// Package probe records diagnostic traces of flag activity.
//
// A probe is an optional sink: flags hand it one Record per noteworthy
// operation (a completed bounded wait, a timeout, a set sweep) and it
// persists or forwards them. Stores are append-only logs, suitable for
// post-hoc inspection of wait latencies and overshoot.
package probe

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a probe record.
type Kind string

// Record kinds.
const (
	// KindWait is a bounded wait that observed the flag set.
	KindWait Kind = "wait"

	// KindTimeout is a bounded wait that elapsed with the flag still clear.
	KindTimeout Kind = "timeout"

	// KindSet is a set call, with Notified holding the sweep size.
	KindSet Kind = "set"
)

// Record is a single diagnostic trace entry.
type Record struct {
	// UID uniquely identifies this record.
	UID string `json:"uid"`

	// Flag is the name of the flag that produced the record.
	Flag string `json:"flag"`

	// Kind classifies the record.
	Kind Kind `json:"kind"`

	// Requested is the timeout the waiter asked for (wait/timeout records).
	Requested time.Duration `json:"requested,omitempty"`

	// Elapsed is the time actually spent waiting (wait/timeout records).
	Elapsed time.Duration `json:"elapsed,omitempty"`

	// Overshoot is Elapsed minus Requested (wait/timeout records).
	Overshoot time.Duration `json:"overshoot,omitempty"`

	// Notified is the number of waiters signaled (set records).
	Notified int `json:"notified,omitempty"`

	// At is when the record was produced.
	At time.Time `json:"at"`
}

// NewRecord creates a record with a fresh UID and timestamp.
func NewRecord(flagName string, kind Kind) Record {
	return Record{
		UID:  fmt.Sprintf("prb-%s", uuid.New().String()[:8]),
		Flag: flagName,
		Kind: kind,
		At:   time.Now(),
	}
}

// Recorder consumes probe records. Implementations must not block the
// caller for long: flags call Observe from their wait and set paths.
type Recorder interface {
	Observe(rec Record)
}

// Store persists probe records.
type Store interface {
	// Append adds a record to the log.
	Append(rec Record) error

	// List returns records for a flag name, oldest first.
	// An empty flag name returns all records.
	List(flagName string) ([]Record, error)

	// Purge removes all records.
	Purge() error

	// Close releases store resources.
	Close() error
}

// ErrStoreClosed is returned when operating on a closed store.
var ErrStoreClosed = errors.New("probe store is closed")

// StoreRecorder adapts a Store into a Recorder. Append failures are
// reported through the optional error callback and otherwise dropped;
// probing must never fail the flag operation that produced the record.
type StoreRecorder struct {
	store Store
	onErr func(error)
}

// NewStoreRecorder creates a Recorder that appends to store.
// onErr may be nil.
func NewStoreRecorder(store Store, onErr func(error)) *StoreRecorder {
	return &StoreRecorder{store: store, onErr: onErr}
}

// Observe appends the record to the underlying store.
func (r *StoreRecorder) Observe(rec Record) {
	if err := r.store.Append(rec); err != nil && r.onErr != nil {
		r.onErr(err)
	}
}
