// Package session owns "who is logged in". A Manager is the single writer of
// the session state; everything else reads snapshots or subscribes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/existflow/protodo/internal/api"
	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/model"
)

// StorageKey is the durable storage key holding the persisted session record.
const StorageKey = "pt_auth_v1"

// Store is the durable key-value storage the session is persisted to.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Backend is the part of the API the session needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (*api.Response, *model.User, error)
	Register(ctx context.Context, p model.Profile) (*api.Response, error)
	Logout(ctx context.Context) error
}

// CookieJar restores and forgets the backend's session cookie.
type CookieJar interface {
	Load(ctx context.Context) error
	Clear(ctx context.Context) error
}

// State is a read-only snapshot of the session.
type State struct {
	User    *model.User
	Loading bool
}

// IsAuthenticated is true exactly when a user is present.
func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// record is the persisted shape: {"user": {...}}.
type record struct {
	User *model.User `json:"user"`
}

// Manager holds the current session and keeps it in sync with durable storage.
type Manager struct {
	store   Store
	backend Backend
	jar     CookieJar
	log     *logger.Logger

	mu          sync.RWMutex
	user        *model.User
	loading     bool
	subscribers []func(State)
}

// NewManager returns a manager in the initial state: no user, loading.
// jar may be nil when cookies are not persisted.
func NewManager(store Store, backend Backend, jar CookieJar) *Manager {
	return &Manager{
		store:   store,
		backend: backend,
		jar:     jar,
		log:     logger.WithFields(logger.F("component", "session")),
		loading: true,
	}
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() State {
	var u *model.User
	if m.user != nil {
		cp := *m.user
		u = &cp
	}
	return State{User: u, Loading: m.loading}
}

// Subscribe registers fn to be called with the new state after every change.
// It returns a function that removes the subscription.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
	idx := len(m.subscribers) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.subscribers) {
			m.subscribers[idx] = nil
		}
	}
}

// set replaces the state and notifies subscribers outside the lock.
func (m *Manager) set(user *model.User, loading bool) {
	m.mu.Lock()
	m.user = user
	m.loading = loading
	state := m.snapshotLocked()
	subs := append(([]func(State))(nil), m.subscribers...)
	m.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(state)
		}
	}
}

// Restore loads the persisted session. It never fails: anything unreadable
// counts as "logged out". Loading is always cleared afterwards.
func (m *Manager) Restore(ctx context.Context) State {
	user := m.readRecord(ctx)

	if user != nil && m.jar != nil {
		if err := m.jar.Load(ctx); err != nil {
			m.log.Debug("No stored cookies", logger.F("error", err))
		}
	}

	m.set(user, false)
	if user != nil {
		m.log.Info("Session restored", logger.F("email", user.Email))
	}
	return m.Snapshot()
}

func (m *Manager) readRecord(ctx context.Context) *model.User {
	raw, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		m.log.Debug("No stored session", logger.F("error", err))
		return nil
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		m.log.Warn("Ignoring corrupt session record", logger.F("error", err))
		return nil
	}
	if rec.User == nil || rec.User.Email == "" {
		m.log.Warn("Ignoring session record without user")
		return nil
	}
	return rec.User
}

// Login authenticates against the backend. On success the user from the
// response (or just the email when the response has none) becomes the
// session and is persisted. Transport and status errors are returned as-is
// together with whatever response arrived.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.Response, error) {
	resp, user, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.log.Info("Login failed", logger.F("email", email), logger.F("error", err))
		return resp, err
	}

	if user == nil {
		user = &model.User{Email: email}
	}

	m.set(user, false)

	if err := m.persist(ctx, user); err != nil {
		// the in-memory session stands; the next start will ask to log in again
		m.log.Error("Failed to persist session", logger.F("error", err))
	}

	m.log.Info("Logged in", logger.F("email", user.Email))
	return resp, nil
}

func (m *Manager) persist(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(record{User: user})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return m.store.Set(ctx, StorageKey, string(data))
}

// Signup registers a new account. It never logs the user in.
func (m *Manager) Signup(ctx context.Context, p model.Profile) (*api.Response, error) {
	resp, err := m.backend.Register(ctx, p)
	if err != nil {
		m.log.Info("Signup failed", logger.F("email", p.Email), logger.F("error", err))
		return resp, err
	}
	m.log.Info("Account created", logger.F("email", p.Email))
	return resp, nil
}

// Logout tells the backend (best effort) and then always clears the local
// session, the persisted record and the stored cookies.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.backend.Logout(ctx); err != nil {
		m.log.Warn("Backend logout failed, clearing local session anyway", logger.F("error", err))
	}

	m.set(nil, false)

	// local cleanup must happen even if the caller gave up on the request
	local := context.WithoutCancel(ctx)
	if err := m.store.Delete(local, StorageKey); err != nil {
		m.log.Error("Failed to delete session record", logger.F("error", err))
	}
	if m.jar != nil {
		if err := m.jar.Clear(local); err != nil {
			m.log.Error("Failed to clear cookies", logger.F("error", err))
		}
	}
	m.log.Info("Logged out")
}
