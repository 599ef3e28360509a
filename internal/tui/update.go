package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/protodo/internal/api"
	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/message"
	"github.com/existflow/protodo/internal/model"
)

// Init starts restoring the session, or goes straight to the demo dashboard.
func (m Model) Init() tea.Cmd {
	if m.demo {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.restoreCmd(), m.waitForSession())
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		// Keep spinning only while something is pending; each tick also
		// repaints optimistic changes made by in-flight commands
		if m.screen != ScreenLoading && !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionChangedMsg:
		cmd := m.applySession()
		return m, tea.Batch(cmd, m.waitForSession())

	case loginDoneMsg:
		m.inflight--
		if msg.err != nil {
			m.login.err = message.Login(msg.err)
			m.login.set("password", "")
			return m, nil
		}
		m.login.reset()
		next := m.applySession()
		return m, next

	case signupDoneMsg:
		m.inflight--
		if msg.err != nil {
			m.signup.err = message.Signup(msg.err)
			return m, nil
		}
		m.signup.reset()
		m.login.reset()
		m.login.set("email", msg.email)
		m.login.setFocus(1)
		m.login.note = "Account created! Please log in."
		m.screen = ScreenLogin
		return m, textinput.Blink

	case loadedMsg:
		m.inflight--
		m.loadErr = ""
		if msg.err != nil {
			m.loadErr = message.Load(msg.err)
			if api.IsUnauthorized(msg.err) {
				m.message = "Session expired - press L to log in again"
			}
		}
		m.clampCursor()
		return m, nil

	case taskDoneMsg:
		m.inflight--
		m.message = taskMessage(msg)
		m.clampCursor()
		return m, nil

	case loggedOutMsg:
		m.inflight--
		next := m.applySession()
		return m, next

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case ScreenLogin:
			return m.updateLogin(msg)
		case ScreenSignup:
			return m.updateSignup(msg)
		case ScreenDashboard:
			return m.updateDashboard(msg)
		}
		return m, nil
	}

	// Cursor blinks and the like go to whichever input has focus
	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == ScreenLogin:
		m.login, cmd = m.login.update(msg)
	case m.screen == ScreenSignup:
		m.signup, cmd = m.signup.update(msg)
	case m.mode == ModeAddTask, m.mode == ModeEditTask:
		m.editor, cmd = m.editor.update(msg)
	case m.mode == ModeSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func taskMessage(msg taskDoneMsg) string {
	if msg.err != nil {
		return message.Task(msg.action, msg.err)
	}
	switch msg.action {
	case "create":
		return fmt.Sprintf("Added: %s", msg.title)
	case "update":
		return fmt.Sprintf("Updated: %s", msg.title)
	case "delete":
		return fmt.Sprintf("Deleted: %s", msg.title)
	}
	return ""
}

// applySession moves between screens to match the session: logged in goes to
// the dashboard and loads the list once, logged out goes to the login form.
func (m *Model) applySession() tea.Cmd {
	if m.session == nil {
		return nil
	}
	st := m.session.Snapshot()
	if st.Loading {
		return nil
	}

	if st.IsAuthenticated() {
		m.user = st.User
		if m.screen == ScreenDashboard {
			return nil
		}
		logger.Info("Entering dashboard", logger.F("email", st.User.Email))
		m.screen = ScreenDashboard
		m.mode = ModeNormal
		m.cursor = 0
		m.message = ""
		m.tasks.Reset()
		return m.dispatch(m.loadCmd())
	}

	m.user = nil
	if m.screen == ScreenLogin || m.screen == ScreenSignup {
		return nil
	}
	if m.screen == ScreenDashboard {
		m.tasks.Reset()
		m.query = ""
		m.search.SetValue("")
		m.filter = model.FilterAll
		m.loadErr = ""
		m.message = ""
	}
	m.screen = ScreenLogin
	m.login.setFocus(0)
	return textinput.Blink
}

// dispatch starts a request and keeps the spinner going until it answers.
func (m *Model) dispatch(cmd tea.Cmd) tea.Cmd {
	m.inflight++
	if m.inflight == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Signup):
		m.screen = ScreenSignup
		m.signup.setFocus(0)
		return m, textinput.Blink
	case key.Matches(msg, keys.Tab), msg.String() == "down":
		m.login.next()
		return m, nil
	case key.Matches(msg, keys.BackTab), msg.String() == "up":
		m.login.prev()
		return m, nil
	case key.Matches(msg, keys.Enter):
		if !m.login.onLast() {
			m.login.next()
			return m, nil
		}
		return m.submitLogin()
	case key.Matches(msg, keys.Escape):
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	email := m.login.value("email")
	password := m.login.value("password")

	m.login.err = ""
	m.login.note = ""
	m.login.errs = model.ValidateLogin(email, password)
	if len(m.login.errs) > 0 {
		return m, nil
	}
	next := m.dispatch(m.loginCmd(email, password))
	return m, next
}

func (m Model) updateSignup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.screen = ScreenLogin
		m.login.setFocus(0)
		return m, textinput.Blink
	case key.Matches(msg, keys.Tab), msg.String() == "down":
		m.signup.next()
		return m, nil
	case key.Matches(msg, keys.BackTab), msg.String() == "up":
		m.signup.prev()
		return m, nil
	case key.Matches(msg, keys.Enter):
		if !m.signup.onLast() {
			m.signup.next()
			return m, nil
		}
		return m.submitSignup()
	}

	var cmd tea.Cmd
	m.signup, cmd = m.signup.update(msg)
	return m, cmd
}

func (m Model) submitSignup() (tea.Model, tea.Cmd) {
	if m.busy() {
		return m, nil
	}
	p := model.Profile{
		FirstName: m.signup.value("first_name"),
		LastName:  m.signup.value("last_name"),
		Email:     m.signup.value("email"),
		Password:  m.signup.value("password"),
	}

	m.signup.err = ""
	m.signup.errs = model.ValidateSignup(p, m.signup.value("confirm_password"))
	if len(m.signup.errs) > 0 {
		return m, nil
	}
	next := m.dispatch(m.signupCmd(p))
	return m, next
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeAddTask, ModeEditTask:
		return m.updateEditor(msg)
	case ModeSearch:
		return m.updateSearch(msg)
	case ModeConfirmDelete:
		return m.updateConfirmDelete(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}

	case msg.String() == "G":
		m.cursor = len(m.visible()) - 1
		m.clampCursor()

	case msg.String() == "g":
		m.cursor = 0

	case key.Matches(msg, keys.Filter):
		m.cycleFilter()

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Escape):
		if m.query != "" {
			m.query = ""
			m.search.SetValue("")
			m.message = "Search cleared"
			m.clampCursor()
		}

	case key.Matches(msg, keys.Add):
		return m.startAddTask()

	case key.Matches(msg, keys.Edit):
		return m.startEditTask()

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		if t, ok := m.currentTask(); ok && !m.busy() {
			next := m.dispatch(m.toggleCmd(t))
			return m, next
		}

	case key.Matches(msg, keys.Delete):
		if t, ok := m.currentTask(); ok && !m.busy() {
			if m.confirmDelete {
				m.mode = ModeConfirmDelete
				return m, nil
			}
			next := m.dispatch(m.deleteCmd(t))
			return m, next
		}

	case key.Matches(msg, keys.Refresh):
		if !m.demo && !m.busy() {
			m.message = ""
			next := m.dispatch(m.loadCmd())
			return m, next
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Logout):
		if m.demo {
			return m, tea.Quit
		}
		if !m.busy() {
			m.message = "Logging out..."
			next := m.dispatch(m.logoutCmd())
			return m, next
		}
	}

	return m, nil
}

func (m *Model) cycleFilter() {
	for i, f := range model.StatusFilters {
		if f == m.filter {
			m.filter = model.StatusFilters[(i+1)%len(model.StatusFilters)]
			break
		}
	}
	m.cursor = 0
}

func (m Model) startAddTask() (tea.Model, tea.Cmd) {
	m.mode = ModeAddTask
	m.editingID = ""
	m.editor.reset()
	m.editor.set("priority", string(model.DefaultPriority))
	return m, textinput.Blink
}

func (m Model) startEditTask() (tea.Model, tea.Cmd) {
	t, ok := m.currentTask()
	if !ok {
		return m, nil
	}
	d := model.DraftOf(t)
	m.mode = ModeEditTask
	m.editingID = t.ID
	m.editor.reset()
	m.editor.set("title", d.Title)
	m.editor.set("description", d.Description)
	m.editor.set("priority", string(d.Priority))
	m.editor.set("due_date", model.FormatDate(d.DueDate))
	m.editor.inputs[0].CursorEnd()
	return m, textinput.Blink
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.editingID = ""
		return m, nil

	case key.Matches(msg, keys.Tab):
		m.editor.next()
		return m, nil

	case key.Matches(msg, keys.BackTab):
		m.editor.prev()
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.busy() {
			return m, nil
		}
		d, fe := draftFromForm(&m.editor)
		m.editor.errs = fe
		if len(fe) > 0 {
			return m, nil
		}

		var cmd tea.Cmd
		if m.mode == ModeEditTask {
			cmd = m.updateCmd(m.editingID, d)
		} else {
			cmd = m.createCmd(d)
		}
		m.mode = ModeNormal
		m.editingID = ""
		next := m.dispatch(cmd)
		return m, next
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.query = ""
		m.search.SetValue("")
		m.search.Blur()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Live filter as user types
	m.query = m.search.Value()
	m.cursor = 0
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if !key.Matches(msg, keys.Yes) {
		m.message = "Cancelled"
		return m, nil
	}
	t, ok := m.currentTask()
	if !ok || m.busy() {
		return m, nil
	}
	next := m.dispatch(m.deleteCmd(t))
	return m, next
}
