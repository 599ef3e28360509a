package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/protodo/internal/api"
	"github.com/existflow/protodo/internal/db"
	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/message"
	"github.com/existflow/protodo/internal/session"
	"github.com/existflow/protodo/internal/tasks"
)

// errNotLoggedIn is returned by commands that need a session when there is none.
var errNotLoggedIn = errors.New("not logged in, run 'protodo login'")

// app bundles the pieces every command works with.
type app struct {
	db      *db.DB
	client  *api.Client
	session *session.Manager
	tasks   *tasks.Store
}

func openApp() (*app, error) {
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		logger.Error("Failed to open database", logger.F("error", err))
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	client, err := api.NewClient(api.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.RequestTimeout,
		Store:   database,
	})
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	return &app{
		db:      database,
		client:  client,
		session: session.NewManager(database, client, client.Jar()),
		tasks:   tasks.NewStore(client),
	}, nil
}

func (a *app) Close() {
	_ = a.db.Close()
	logger.Info("Database closed")
}

// requireSession restores the persisted session and fails when nobody is
// logged in.
func (a *app) requireSession(ctx context.Context) (session.State, error) {
	st := a.session.Restore(ctx)
	if !st.IsAuthenticated() {
		return st, errNotLoggedIn
	}
	return st, nil
}

// loadTasks fetches the list for a command that shows it.
func (a *app) loadTasks(ctx context.Context) error {
	err := a.tasks.Load(ctx)
	if err == nil {
		return nil
	}
	if api.IsUnauthorized(err) {
		return fmt.Errorf("session expired, run 'protodo login'")
	}
	return errors.New(message.Load(err))
}
