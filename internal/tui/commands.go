package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/model"
)

// sessionChangedMsg is sent when the session manager changed state
type sessionChangedMsg struct{}

type loginDoneMsg struct{ err error }

type signupDoneMsg struct {
	email string
	err   error
}

type loadedMsg struct{ err error }

type loggedOutMsg struct{}

// taskDoneMsg reports the outcome of a create, edit, toggle or delete
type taskDoneMsg struct {
	action string
	title  string
	err    error
}

// waitForSession listens for session changes
func (m Model) waitForSession() tea.Cmd {
	if m.sessionChan == nil {
		return nil
	}
	ch := m.sessionChan
	return func() tea.Msg {
		<-ch
		return sessionChangedMsg{}
	}
}

func (m Model) withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m Model) restoreCmd() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		s.Restore(ctx)
		return sessionChangedMsg{}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := s.Login(ctx, email, password)
		return loginDoneMsg{err: err}
	}
}

func (m Model) signupCmd(p model.Profile) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := s.Signup(ctx, p)
		return signupDoneMsg{email: p.Email, err: err}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	s, store := m.session, m.tasks
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		s.Logout(ctx)
		store.Reset()
		return loggedOutMsg{}
	}
}

func (m Model) loadCmd() tea.Cmd {
	store := m.tasks
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		return loadedMsg{err: store.Load(ctx)}
	}
}

func (m Model) createCmd(d model.Draft) tea.Cmd {
	store := m.tasks
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := store.Create(ctx, d)
		return taskDoneMsg{action: "create", title: d.Title, err: err}
	}
}

func (m Model) updateCmd(id string, d model.Draft) tea.Cmd {
	store := m.tasks
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := store.Update(ctx, id, d)
		return taskDoneMsg{action: "update", title: d.Title, err: err}
	}
}

func (m Model) toggleCmd(t model.Task) tea.Cmd {
	store := m.tasks
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := store.ToggleCompleted(ctx, t.ID)
		return taskDoneMsg{action: "toggle", title: t.Title, err: err}
	}
}

func (m Model) deleteCmd(t model.Task) tea.Cmd {
	store := m.tasks
	return func() tea.Msg {
		ctx, cancel := m.withTimeout()
		defer cancel()
		_, err := store.Delete(ctx, t.ID)
		if err != nil {
			logger.Warn("Delete failed", logger.F("id", t.ID), logger.F("error", err))
		}
		return taskDoneMsg{action: "delete", title: t.Title, err: err}
	}
}
