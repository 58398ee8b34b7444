package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}))
}

func newTempDB(t *testing.T) *SQLiteKV {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	dsn, err := SQLiteFileDSN(dbPath)
	require.NoError(t, err)
	kv, err := NewSQLiteKV(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = kv.Close()
		_ = os.RemoveAll(dir)
	})
	require.NoError(t, kv.ApplyMigrations(context.Background()))
	return kv
}

func sampleTask(id, owner, title string) Task {
	return Task{
		ID:          id,
		UserID:      owner,
		Important:   Important,
		Title:       title,
		Description: "Coordinate the Q3 product launch",
		Color:       "#667eea",
		StartDate:   time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Status:      StatusNew,
		Budget:      2500,
	}
}

// backends runs fn against every KV implementation.
func backends(t *testing.T, fn func(t *testing.T, kv KV)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryKV()) })
	t.Run("sqlite", func(t *testing.T) { fn(t, newTempDB(t)) })
}

func TestLocalStore_CreateAndList(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		s := NewLocalStore(kv, "", "user123", quietLogger())

		assert.Empty(t, s.List(ctx))

		a := sampleTask("a", "user123", "first")
		b := sampleTask("b", "user123", "second")
		require.NoError(t, s.Create(ctx, a))
		require.NoError(t, s.Create(ctx, b))

		list := s.List(ctx)
		require.Len(t, list, 2)
		assert.Equal(t, a, list[0])
		assert.Equal(t, b, list[1])
	})
}

func TestLocalStore_FiltersOtherOwners(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		require.NoError(t, kv.Set(ctx, DefaultStorageKey,
			`[{"id":"x","userId":"someone-else","title":"foreign"},{"id":"y","userId":"user123","title":"mine"}]`))

		s := NewLocalStore(kv, DefaultStorageKey, "user123", quietLogger())
		list := s.List(ctx)
		require.Len(t, list, 1)
		assert.Equal(t, "mine", list[0].Title)

		// writes keep foreign records in place
		require.NoError(t, s.Create(ctx, sampleTask("z", "user123", "another")))
		require.NoError(t, s.RemoveByTitle(ctx, "foreign"))
		other := NewLocalStore(kv, DefaultStorageKey, "someone-else", quietLogger())
		require.Len(t, other.List(ctx), 1)
	})
}

func TestLocalStore_CorruptIsEmpty(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		require.NoError(t, kv.Set(ctx, DefaultStorageKey, `{not json`))

		s := NewLocalStore(kv, "", "user123", quietLogger())
		assert.Empty(t, s.List(ctx))

		require.NoError(t, s.Create(ctx, sampleTask("a", "user123", "fresh start")))
		require.Len(t, s.List(ctx), 1)
	})
}

func TestLocalStore_RemoveByTitle(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		s := NewLocalStore(kv, "", "user123", quietLogger())
		require.NoError(t, s.Create(ctx, sampleTask("a", "user123", "keep me")))
		require.NoError(t, s.Create(ctx, sampleTask("b", "user123", "drop me")))
		require.NoError(t, s.Create(ctx, sampleTask("c", "user123", "keep me too")))

		require.NoError(t, s.RemoveByTitle(ctx, "drop me"))
		list := s.List(ctx)
		require.Len(t, list, 2)
		assert.Equal(t, "keep me", list[0].Title)
		assert.Equal(t, "keep me too", list[1].Title)

		// missing title is a no-op
		require.NoError(t, s.RemoveByTitle(ctx, "never existed"))
		assert.Len(t, s.List(ctx), 2)
	})
}

func TestLocalStore_RemoveByID(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		s := NewLocalStore(kv, "", "user123", quietLogger())
		require.NoError(t, s.Create(ctx, sampleTask("a", "user123", "same title")))
		require.NoError(t, s.Create(ctx, sampleTask("b", "user123", "same title")))

		require.NoError(t, s.RemoveByID(ctx, "a"))
		list := s.List(ctx)
		require.Len(t, list, 1)
		assert.Equal(t, "b", list[0].ID)
	})
}

func TestLocalStore_Clear(t *testing.T) {
	backends(t, func(t *testing.T, kv KV) {
		ctx := context.Background()
		s := NewLocalStore(kv, "", "user123", quietLogger())
		require.NoError(t, s.Create(ctx, sampleTask("a", "user123", "first")))
		require.NoError(t, s.Create(ctx, sampleTask("b", "another", "foreign")))

		assert.True(t, s.Clear(ctx))
		assert.Empty(t, s.List(ctx))

		_, ok, err := kv.Get(ctx, DefaultStorageKey)
		require.NoError(t, err)
		assert.False(t, ok, "clear removes every owner's records")
	})
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
func (f failingKV) Delete(context.Context, string) error              { return f.err }

func TestLocalStore_BackendFailures(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	s := NewLocalStore(failingKV{err: boom}, "", "user123", quietLogger())

	assert.Empty(t, s.List(ctx), "list fails soft")
	assert.False(t, s.Clear(ctx))

	err := s.Create(ctx, sampleTask("a", "user123", "first"))
	var lsErr *LocalStorageError
	require.ErrorAs(t, err, &lsErr)
	assert.Equal(t, "read", lsErr.Op)
	assert.ErrorIs(t, err, boom)
}

// flakyKV fails the next failGets reads and otherwise behaves like MemoryKV.
type flakyKV struct {
	*MemoryKV
	failGets int
	sets     int
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGets > 0 {
		f.failGets--
		return "", false, errors.New("read interrupted")
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.sets++
	return f.MemoryKV.Set(ctx, key, value)
}

func TestLocalStore_ReadFailureNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	mine := NewLocalStore(kv, "", "user123", quietLogger())
	theirs := NewLocalStore(kv, "", "other", quietLogger())

	require.NoError(t, theirs.Create(ctx, sampleTask("f1", "other", "foreign")))
	require.NoError(t, mine.Create(ctx, sampleTask("a", "user123", "first")))
	require.NoError(t, mine.Create(ctx, sampleTask("b", "user123", "second")))
	setsBefore := kv.sets

	tests := []struct {
		name string
		op   func() error
	}{
		{"create", func() error { return mine.Create(ctx, sampleTask("c", "user123", "third")) }},
		{"remove by id", func() error { return mine.RemoveByID(ctx, "a") }},
		{"remove by title", func() error { return mine.RemoveByTitle(ctx, "second") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv.failGets = 1
			err := tc.op()

			var lsErr *LocalStorageError
			require.ErrorAs(t, err, &lsErr)
			assert.Equal(t, "read", lsErr.Op)
			assert.Equal(t, setsBefore, kv.sets, "nothing is written after a failed read")
			assert.Len(t, mine.List(ctx), 2)
			assert.Len(t, theirs.List(ctx), 1)
		})
	}
}
