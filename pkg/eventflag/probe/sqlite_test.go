package probe_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventflag/pkg/eventflag/probe"
)

func newSQLiteStore(t *testing.T) *probe.SQLiteStore {
	t.Helper()
	store, err := probe.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendList(t *testing.T) {
	store := newSQLiteStore(t)

	rec := probe.NewRecord("ready", probe.KindTimeout)
	rec.Requested = 300 * time.Millisecond
	rec.Elapsed = 380 * time.Millisecond
	rec.Overshoot = 80 * time.Millisecond

	require.NoError(t, store.Append(rec))

	records, err := store.List("ready")
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, rec.UID, got.UID)
	assert.Equal(t, "ready", got.Flag)
	assert.Equal(t, probe.KindTimeout, got.Kind)
	assert.Equal(t, 300*time.Millisecond, got.Requested)
	assert.Equal(t, 380*time.Millisecond, got.Elapsed)
	assert.Equal(t, 80*time.Millisecond, got.Overshoot)
	assert.WithinDuration(t, rec.At, got.At, time.Millisecond)
}

func TestSQLiteStore_List_Filter(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.Append(probe.NewRecord("a", probe.KindWait)))
	require.NoError(t, store.Append(probe.NewRecord("b", probe.KindSet)))

	records, err := store.List("a")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Flag)

	all, err := store.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteStore_List_InsertionOrder(t *testing.T) {
	store := newSQLiteStore(t)

	// Within the same second, a whole-second timestamp serializes without
	// a fractional part and a later one with it; listing must follow
	// insertion order, not the text order of the at column.
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	first := probe.NewRecord("ready", probe.KindSet)
	first.At = base
	second := probe.NewRecord("ready", probe.KindWait)
	second.At = base.Add(100 * time.Millisecond)

	require.NoError(t, store.Append(first))
	require.NoError(t, store.Append(second))

	records, err := store.List("ready")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.UID, records[0].UID)
	assert.Equal(t, second.UID, records[1].UID)
}

func TestSQLiteStore_List_Empty(t *testing.T) {
	store := newSQLiteStore(t)

	records, err := store.List("nothing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_Purge(t *testing.T) {
	store := newSQLiteStore(t)

	require.NoError(t, store.Append(probe.NewRecord("a", probe.KindWait)))
	require.NoError(t, store.Purge())

	records, err := store.List("")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_Closed(t *testing.T) {
	store := newSQLiteStore(t)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Append(probe.NewRecord("a", probe.KindWait)), probe.ErrStoreClosed)
	_, err := store.List("")
	assert.ErrorIs(t, err, probe.ErrStoreClosed)
	assert.ErrorIs(t, store.Purge(), probe.ErrStoreClosed)

	// Close is idempotent.
	assert.NoError(t, store.Close())
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.db")

	store, err := probe.NewSQLiteStore(path)
	require.NoError(t, err)

	rec := probe.NewRecord("persisted", probe.KindWait)
	require.NoError(t, store.Append(rec))
	require.NoError(t, store.Close())

	// Reopen and read back.
	reopened, err := probe.NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.List("persisted")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.UID, records[0].UID)
}
