// Package tasks holds the in-memory task list of the current session.
//
// Every mutation is applied locally first and then forwarded to the remote
// when it supports the operation. A failed remote call rolls the local change
// back, so the list never keeps an edit the server refused.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/model"
	"github.com/google/uuid"
)

// provisionalPrefix marks IDs assigned locally before the server answered.
const provisionalPrefix = "local-"

var (
	// ErrEmptyTitle rejects a draft whose title is blank after trimming.
	ErrEmptyTitle = errors.New("task title is required")
	// ErrNoRemote is returned by Load when the store runs offline.
	ErrNoRemote = errors.New("no remote configured")
)

// Remote is the backend the list is loaded from and new tasks are sent to.
type Remote interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, d model.Draft) (model.Task, error)
}

// Updater is implemented by remotes that can store edits and completion changes.
type Updater interface {
	UpdateTask(ctx context.Context, t model.Task) error
}

// Deleter is implemented by remotes that can delete tasks.
type Deleter interface {
	DeleteTask(ctx context.Context, id string) error
}

type filterKey struct {
	version uint64
	query   string
	status  model.StatusFilter
}

// Store owns the task list. It is safe for concurrent use.
type Store struct {
	remote Remote
	log    *logger.Logger
	newID  func() string

	mu      sync.Mutex
	items   []model.Task
	loaded  bool
	err     error
	version uint64

	memoKey    filterKey
	memoValid  bool
	memoResult []model.Task
}

// NewStore returns an empty store. remote may be nil for an offline list.
func NewStore(remote Remote) *Store {
	return &Store{
		remote: remote,
		log:    logger.WithFields(logger.F("component", "tasks")),
		newID: func() string {
			return provisionalPrefix + uuid.NewString()
		},
	}
}

// IsProvisional reports whether id was assigned locally and not yet
// confirmed by the server.
func IsProvisional(id string) bool {
	return strings.HasPrefix(id, provisionalPrefix)
}

// changedLocked bumps the version so memoized projections are recomputed.
func (s *Store) changedLocked() {
	s.version++
	s.memoValid = false
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(t model.Task) bool { return t.ID == id })
}

// Load replaces the list with the server's. On failure the list is left
// empty and the error is kept in Err until the next successful load.
func (s *Store) Load(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}

	items, err := s.remote.ListTasks(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.changedLocked()

	if err != nil {
		s.items = nil
		s.loaded = false
		s.err = err
		s.log.Error("Failed to load tasks", logger.F("error", err))
		return err
	}

	s.items = slices.Clone(items)
	s.loaded = true
	s.err = nil
	s.log.Info("Tasks loaded", logger.F("count", len(items)))
	return nil
}

// Seed installs items as the whole list without asking the remote. Used for
// the offline demo list.
func (s *Store) Seed(items []model.Task) error {
	seen := make(map[string]bool, len(items))
	for i, t := range items {
		if t.ID == "" {
			return fmt.Errorf("item %d: missing id", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("item %s: %w", t.ID, ErrEmptyTitle)
		}
		if seen[t.ID] {
			return fmt.Errorf("item %s: duplicate id", t.ID)
		}
		seen[t.ID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.loaded = true
	s.err = nil
	s.changedLocked()
	return nil
}

// Reset forgets the list, e.g. on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loaded = false
	s.err = nil
	s.changedLocked()
}

// Loaded reports whether the list holds a successful load or seed.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Err returns the error of the last failed load.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Items returns a copy of the list in order.
func (s *Store) Items() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.items[i], true
}

// Create appends a new task at once under a provisional ID and sends it to
// the remote. On success the provisional ID is swapped for the server's; on
// failure the task is removed again and the error returned.
func (s *Store) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	d = d.Normalize()
	if d.Title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	local := model.Task{ID: s.newID()}.Apply(d)

	s.mu.Lock()
	s.items = append(s.items, local)
	s.changedLocked()
	s.mu.Unlock()

	if s.remote == nil {
		return local, nil
	}

	stored, err := s.remote.CreateTask(ctx, d)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(local.ID)
	if err != nil {
		if i >= 0 {
			s.items = slices.Delete(s.items, i, i+1)
			s.changedLocked()
		}
		s.log.Error("Failed to create task, rolled back",
			logger.F("title", d.Title), logger.F("error", err))
		return model.Task{}, err
	}

	if i < 0 {
		// deleted locally while the request was in flight
		s.log.Warn("Created task was removed before the server answered",
			logger.F("id", stored.ID))
		return stored, nil
	}

	current := s.items[i]
	reconciled := current
	if stored.ID != "" {
		if s.indexLocked(stored.ID) >= 0 {
			// a reload already brought the server copy in
			s.items = slices.Delete(s.items, i, i+1)
			s.changedLocked()
			j := s.indexLocked(stored.ID)
			return s.items[j], nil
		}
		reconciled.ID = stored.ID
	}
	if current.DueDate == nil {
		reconciled.DueDate = stored.DueDate
	}
	s.items[i] = reconciled
	s.changedLocked()

	s.log.Info("Task created", logger.F("id", reconciled.ID), logger.F("title", reconciled.Title))
	return reconciled, nil
}

// Update replaces the editable fields of the task with the given id. It
// reports false when no such task exists.
func (s *Store) Update(ctx context.Context, id string, d model.Draft) (bool, error) {
	d = d.Normalize()
	if d.Title == "" {
		return false, ErrEmptyTitle
	}

	return s.mutate(ctx, id, func(t model.Task) model.Task {
		return t.Apply(d)
	})
}

// ToggleCompleted flips the completion state of the task with the given id.
// It reports false when no such task exists.
func (s *Store) ToggleCompleted(ctx context.Context, id string) (bool, error) {
	return s.mutate(ctx, id, func(t model.Task) model.Task {
		t.Completed = !t.Completed
		return t
	})
}

func (s *Store) mutate(ctx context.Context, id string, change func(model.Task) model.Task) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	before := s.items[i]
	after := change(before)
	s.items[i] = after
	s.changedLocked()
	s.mu.Unlock()

	updater, ok := s.remote.(Updater)
	if !ok || IsProvisional(id) {
		return true, nil
	}

	if err := updater.UpdateTask(ctx, after); err != nil {
		s.mu.Lock()
		if j := s.indexLocked(id); j >= 0 && s.items[j] == after {
			s.items[j] = before
			s.changedLocked()
		}
		s.mu.Unlock()
		s.log.Error("Failed to update task, rolled back", logger.F("id", id), logger.F("error", err))
		return true, err
	}
	return true, nil
}

// Delete removes the task with the given id. It reports false when no such
// task exists.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.changedLocked()
	s.mu.Unlock()

	deleter, ok := s.remote.(Deleter)
	if !ok || IsProvisional(id) {
		return true, nil
	}

	if err := deleter.DeleteTask(ctx, id); err != nil {
		s.mu.Lock()
		if s.indexLocked(id) < 0 {
			s.items = slices.Insert(s.items, min(i, len(s.items)), removed)
			s.changedLocked()
		}
		s.mu.Unlock()
		s.log.Error("Failed to delete task, rolled back", logger.F("id", id), logger.F("error", err))
		return true, err
	}
	return true, nil
}

// Filter returns the tasks whose title or description contains query
// (case-insensitive, ignored when blank) and whose state passes status. The
// result keeps list order and is recomputed only when an input changed.
func (s *Store) Filter(query string, status model.StatusFilter) []model.Task {
	q := strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()

	key := filterKey{version: s.version, query: q, status: status}
	if s.memoValid && s.memoKey == key {
		return slices.Clone(s.memoResult)
	}

	out := make([]model.Task, 0, len(s.items))
	for _, t := range s.items {
		if !status.Matches(t.Completed) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t)
	}

	s.memoKey = key
	s.memoResult = out
	s.memoValid = true
	return slices.Clone(out)
}

// Stats counts the tasks by state.
func (s *Store) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := model.Stats{Total: len(s.items)}
	for _, t := range s.items {
		if t.Completed {
			st.Completed++
		}
	}
	st.Active = st.Total - st.Completed
	return st
}
