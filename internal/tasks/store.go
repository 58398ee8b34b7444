package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
)

const DefaultStorageKey = "userTasks"

// KV is the local persistent key/value storage the task collection lives in.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// LocalStore keeps the whole task collection serialized under one key and
// exposes the records of a single owner. Records of other owners are kept
// in storage but never returned or removed one by one.
//
// Every write is a read-modify-write of the full collection. Callers that
// need writes to be ordered must serialize them.
type LocalStore struct {
	kv     KV
	key    string
	owner  string
	logger *slog.Logger
}

func NewLocalStore(kv KV, key, owner string, logger *slog.Logger) *LocalStore {
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{kv: kv, key: key, owner: owner, logger: logger}
}

func (s *LocalStore) Owner() string { return s.owner }

// List returns the owner's tasks in insertion order. It never fails: read
// and decode errors are logged and yield an empty list.
func (s *LocalStore) List(ctx context.Context) []Task {
	all, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("local_storage_error", slog.String("op", "list"), slog.String("error", err.Error()))
		return []Task{}
	}
	out := make([]Task, 0, len(all))
	for _, t := range all {
		if t.UserID == s.owner {
			out = append(out, t)
		}
	}
	return out
}

// Create appends t to the stored collection. A failed read aborts without
// writing so no stored record is lost.
func (s *LocalStore) Create(ctx context.Context, t Task) error {
	all, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	all = append(all, t)
	return s.save(ctx, all)
}

// RemoveByTitle drops every owner record titled exactly title. Missing
// titles are a no-op.
func (s *LocalStore) RemoveByTitle(ctx context.Context, title string) error {
	return s.removeWhere(ctx, func(t Task) bool { return t.Title == title })
}

// RemoveByID drops the owner record with the given id.
func (s *LocalStore) RemoveByID(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.removeWhere(ctx, func(t Task) bool { return t.ID == id })
}

// Clear removes the whole collection, every owner included.
func (s *LocalStore) Clear(ctx context.Context) bool {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.logger.Warn("local_storage_error", slog.String("op", "clear"), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *LocalStore) removeWhere(ctx context.Context, match func(Task) bool) error {
	all, err := s.loadForWrite(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	removed := 0
	for _, t := range all {
		if t.UserID == s.owner && match(t) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	if removed == 0 {
		return nil
	}
	return s.save(ctx, kept)
}

// loadForWrite is load with corrupt data treated as empty. Read failures
// are returned: the stored value may still be intact.
func (s *LocalStore) loadForWrite(ctx context.Context) ([]Task, error) {
	all, err := s.load(ctx)
	var lsErr *LocalStorageError
	if errors.As(err, &lsErr) && lsErr.Op == "decode" {
		s.logger.Warn("local_storage_error", slog.String("op", "decode"), slog.String("error", err.Error()))
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("local_storage_error", slog.String("op", "read"), slog.String("error", err.Error()))
		return nil, err
	}
	return all, nil
}

func (s *LocalStore) load(ctx context.Context) ([]Task, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, &LocalStorageError{Op: "read", Err: err}
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var all []Task
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, &LocalStorageError{Op: "decode", Err: err}
	}
	return all, nil
}

func (s *LocalStore) save(ctx context.Context, all []Task) error {
	if all == nil {
		all = []Task{}
	}
	b, err := json.Marshal(all)
	if err != nil {
		return &LocalStorageError{Op: "encode", Err: err}
	}
	if err := s.kv.Set(ctx, s.key, string(b)); err != nil {
		return &LocalStorageError{Op: "write", Err: err}
	}
	return nil
}
