package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/s1natex/taskboard-GO/internal/mirror"
	"github.com/s1natex/taskboard-GO/internal/present"
	"github.com/s1natex/taskboard-GO/internal/tasks"
)

var (
	ErrNotConfirmed  = errors.New("delete all requires confirmation")
	ErrUnknownAction = errors.New("unknown action")
)

const (
	msgCreated        = "Task created successfully!"
	msgDeleted        = "Task deleted successfully!"
	msgDeletedAll     = "All tasks deleted successfully!"
	msgSyncFailed     = "Task saved locally but failed to sync with server."
	msgLoadFailed     = "Failed to load tasks from server."
	msgSaveFailed     = "Task could not be saved locally."
	msgDeleteFailed   = "Failed to delete task."
	msgDeleteAllFails = "Failed to delete tasks."
)

type Visibility string

const (
	FormVisible Visibility = "visible"
	FormHidden  Visibility = "hidden"
)

// Toggle returns the opposite state.
func (v Visibility) Toggle() Visibility {
	if v == FormHidden {
		return FormVisible
	}
	return FormHidden
}

// LoadSource selects where the board is populated from on Load.
type LoadSource string

const (
	LoadLocal  LoadSource = "local"
	LoadRemote LoadSource = "remote"
	LoadMerged LoadSource = "merged"
)

func ParseLoadSource(s string) (LoadSource, error) {
	switch src := LoadSource(strings.ToLower(strings.TrimSpace(s))); src {
	case "":
		return LoadLocal, nil
	case LoadLocal, LoadRemote, LoadMerged:
		return src, nil
	default:
		return "", fmt.Errorf("invalid load source %q (want local, remote or merged)", s)
	}
}

// Store is the local collection the board persists to.
type Store interface {
	Owner() string
	List(ctx context.Context) []tasks.Task
	Create(ctx context.Context, t tasks.Task) error
	RemoveByID(ctx context.Context, id string) error
	RemoveByTitle(ctx context.Context, title string) error
	Clear(ctx context.Context) bool
}

// Mirror is the best-effort remote copy.
type Mirror interface {
	List(ctx context.Context) ([]tasks.Task, error)
	Create(ctx context.Context, t tasks.Task) (mirror.Record, error)
	Clear(ctx context.Context) bool
}

type Options struct {
	Store     Store
	Mirror    Mirror // nil disables remote sync
	Validator tasks.Validator
	Source    LoadSource
	Logger    *slog.Logger
	Now       func() time.Time
}

// Controller owns the single board session: the form, the rendered cards
// and the notices. Each command holds the lock for its local part only;
// mirror calls run unlocked so a slow remote never blocks other commands.
type Controller struct {
	store     Store
	mirror    Mirror
	validator tasks.Validator
	source    LoadSource
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	visibility  Visibility
	cards       []tasks.Task // newest first
	draft       tasks.Fields
	fieldErrors map[string]string
	notices     notices
	handlers    map[Action]handler
}

func NewController(opts Options) *Controller {
	c := &Controller{
		store:      opts.Store,
		mirror:     opts.Mirror,
		validator:  opts.Validator,
		source:     opts.Source,
		logger:     opts.Logger,
		now:        opts.Now,
		visibility: FormVisible,
		notices:    notices{},
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.source == "" {
		c.source = LoadLocal
	}
	if c.validator.Now == nil {
		c.validator.Now = c.now
	}
	c.draft = c.defaultDraft()
	c.handlers = c.commandTable()
	return c
}

// Outcome describes what Submit did.
type Outcome struct {
	Task      tasks.Task
	Created   bool
	Errors    []tasks.FieldError
	LocalErr  error
	RemoteErr error
}

// Load populates the board from the configured source. A remote failure
// leaves the board empty (or local-only when merged) and posts a warning;
// it is returned for logging only.
func (c *Controller) Load(ctx context.Context) (int, error) {
	var (
		local, remote []tasks.Task
		remoteErr     error
	)

	source := c.source
	if c.mirror == nil && source != LoadLocal {
		c.logger.Warn("remote_disabled", slog.String("source", string(source)))
		source = LoadLocal
	}

	switch source {
	case LoadRemote:
		remote, remoteErr = c.mirror.List(ctx)
	case LoadMerged:
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			local = c.store.List(gctx)
			return nil
		})
		g.Go(func() error {
			remote, remoteErr = c.mirror.List(gctx)
			return nil
		})
		_ = g.Wait()
	default:
		local = c.store.List(ctx)
	}

	loaded := mergeByID(local, remote)
	slices.Reverse(loaded)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards = loaded
	renderedTasks.Set(float64(len(c.cards)))
	if remoteErr != nil {
		remoteFailuresTotal.WithLabelValues("list").Inc()
		c.logger.Warn("remote_load_failed", slog.String("error", remoteErr.Error()))
		c.notices.post(c.now(), NoticeWarning, msgLoadFailed)
	}
	c.logger.Info("tasks_loaded", slog.String("source", string(source)), slog.Int("count", len(loaded)))
	return len(loaded), remoteErr
}

// Submit validates f and, when valid, adds the task to the board and the
// local store, then mirrors it. Invalid input changes nothing but the
// notices and the preserved draft.
func (c *Controller) Submit(ctx context.Context, f tasks.Fields) Outcome {
	c.mu.Lock()
	task, err := tasks.NewTask(c.store.Owner(), f, c.validator)
	if err != nil {
		defer c.mu.Unlock()
		var vErr *tasks.ValidationError
		if !errors.As(err, &vErr) {
			return Outcome{LocalErr: err}
		}
		validationFailuresTotal.Inc()
		c.draft = f
		c.fieldErrors = make(map[string]string, len(vErr.Fields))
		msgs := make([]string, 0, len(vErr.Fields))
		for _, fe := range vErr.Fields {
			c.fieldErrors[fe.Field] = fe.Message
			msgs = append(msgs, fe.Message)
		}
		c.notices.post(c.now(), NoticeValidation, "", msgs...)
		return Outcome{Errors: vErr.Fields}
	}

	c.fieldErrors = nil
	c.cards = slices.Insert(c.cards, 0, task)
	if err := c.store.Create(ctx, task); err != nil {
		// the board only shows what the store holds
		c.cards = c.cards[1:]
		c.draft = f
		c.logger.Error("local_save_failed", slog.String("task_id", task.ID), slog.String("error", err.Error()))
		c.notices.post(c.now(), NoticeWarning, msgSaveFailed)
		c.mu.Unlock()
		return Outcome{Task: task, LocalErr: err}
	}
	tasksCreatedTotal.Inc()
	renderedTasks.Set(float64(len(c.cards)))
	c.logger.Info("task_created", slog.String("task_id", task.ID), slog.String("title", task.Title))
	c.mu.Unlock()

	var remoteErr error
	if c.mirror != nil {
		_, remoteErr = c.mirror.Create(ctx, task)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if remoteErr != nil {
		remoteFailuresTotal.WithLabelValues("create").Inc()
		c.logger.Warn("remote_sync_failed", slog.String("task_id", task.ID), slog.String("error", remoteErr.Error()))
		c.notices.post(c.now(), NoticeWarning, msgSyncFailed)
	}
	c.notices.post(c.now(), NoticeSuccess, msgCreated)
	c.draft = c.defaultDraft()
	return Outcome{Task: task, Created: true, RemoteErr: remoteErr}
}

// Delete removes one card and its stored record. The card is matched by id,
// or by title for records that predate ids.
func (c *Controller) Delete(ctx context.Context, id, title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.cards, func(t tasks.Task) bool {
		if id != "" {
			return t.ID == id
		}
		return t.ID == "" && t.Title == title
	})
	if idx < 0 {
		return tasks.ErrNotFound
	}
	removed := c.cards[idx]

	var err error
	if removed.ID != "" {
		err = c.store.RemoveByID(ctx, removed.ID)
	} else {
		// Drops every stored legacy record with this title but only the first
		// matching card; duplicates reappear on the next Load.
		err = c.store.RemoveByTitle(ctx, removed.Title)
	}
	if err != nil {
		c.logger.Error("local_delete_failed", slog.String("task_id", removed.ID), slog.String("error", err.Error()))
		c.notices.post(c.now(), NoticeWarning, msgDeleteFailed)
		return err
	}

	c.cards = slices.Delete(c.cards, idx, idx+1)
	tasksDeletedTotal.Inc()
	renderedTasks.Set(float64(len(c.cards)))
	c.logger.Info("task_deleted", slog.String("task_id", removed.ID), slog.String("title", removed.Title))
	c.notices.post(c.now(), NoticeSuccess, msgDeleted)
	return nil
}

// DeleteAll clears the mirror (best effort), then the local store, then the
// board. Without confirmation it does nothing.
func (c *Controller) DeleteAll(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if c.mirror != nil && !c.mirror.Clear(ctx) {
		remoteFailuresTotal.WithLabelValues("clear").Inc()
		c.logger.Warn("remote_clear_failed")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.store.Clear(ctx) {
		c.notices.post(c.now(), NoticeWarning, msgDeleteAllFails)
		return &tasks.LocalStorageError{Op: "clear", Err: errors.New("store refused clear")}
	}
	c.cards = nil
	renderedTasks.Set(0)
	c.logger.Info("tasks_cleared")
	c.notices.post(c.now(), NoticeSuccess, msgDeletedAll)
	return nil
}

// Toggle flips the form visibility and returns the new state.
func (c *Controller) Toggle() Visibility {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visibility = c.visibility.Toggle()
	return c.visibility
}

// Snapshot is a copy of the board state, safe to read without the lock.
type Snapshot struct {
	Visibility  Visibility
	Cards       []tasks.Task
	Stats       present.Stats
	Draft       tasks.Fields
	FieldErrors map[string]string
	Notices     []Notice
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make(map[string]string, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		errs[k] = v
	}
	return Snapshot{
		Visibility:  c.visibility,
		Cards:       slices.Clone(c.cards),
		Stats:       present.RecomputeStats(c.cards),
		Draft:       c.draft,
		FieldErrors: errs,
		Notices:     c.notices.active(c.now()),
	}
}

// defaultDraft is the empty form: tomorrow, default color, status New.
func (c *Controller) defaultDraft() tasks.Fields {
	tomorrow := c.now().In(c.validator.Loc()).AddDate(0, 0, 1)
	return tasks.Fields{
		Color:     tasks.DefaultColor,
		StartDate: tomorrow.Format(tasks.DateInputLayout),
		Status:    string(tasks.StatusNew),
	}
}

// mergeByID appends the extra tasks whose id is not already in base.
func mergeByID(base, extra []tasks.Task) []tasks.Task {
	out := make([]tasks.Task, 0, len(base)+len(extra))
	out = append(out, base...)
	seen := make(map[string]struct{}, len(base))
	for _, t := range base {
		seen[t.ID] = struct{}{}
	}
	for _, t := range extra {
		if _, dup := seen[t.ID]; dup && t.ID != "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
