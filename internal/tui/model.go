package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/protodo/internal/logger"
	"github.com/existflow/protodo/internal/model"
	"github.com/existflow/protodo/internal/session"
	"github.com/existflow/protodo/internal/tasks"
)

// Screen is the page being shown.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenDashboard
)

// Mode represents the current dashboard mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddTask
	ModeEditTask
	ModeSearch
	ModeConfirmDelete
	ModeHelp
)

// Options wires the TUI to the session and task list.
type Options struct {
	// Session is nil in demo mode.
	Session       *session.Manager
	Tasks         *tasks.Store
	Demo          bool
	ConfirmDelete bool
	// Timeout bounds every request started from the UI.
	Timeout time.Duration
}

// Model is the main TUI model
type Model struct {
	session       *session.Manager
	tasks         *tasks.Store
	demo          bool
	confirmDelete bool
	timeout       time.Duration

	// sessionChan carries session changes into the update loop
	sessionChan chan struct{}

	// UI state
	width   int
	height  int
	screen  Screen
	mode    Mode
	spinner spinner.Model

	user *model.User

	login  form
	signup form

	// Dashboard
	cursor    int
	query     string
	filter    model.StatusFilter
	search    textinput.Model
	editor    form
	editingID string

	// inflight counts requests that have not answered yet; forms do not
	// submit while it is non-zero
	inflight int

	loadErr string
	message string
	now     func() time.Time
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	logger.Info("Initializing TUI model", logger.F("demo", opts.Demo))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 128
	search.Width = 40

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	m := Model{
		session:       opts.Session,
		tasks:         opts.Tasks,
		demo:          opts.Demo,
		confirmDelete: opts.ConfirmDelete,
		timeout:       timeout,
		screen:        ScreenLoading,
		mode:          ModeNormal,
		spinner:       sp,
		login:         newLoginForm(),
		signup:        newSignupForm(),
		filter:        model.FilterAll,
		search:        search,
		editor:        newTaskForm(),
		now:           time.Now,
	}

	if m.demo || m.session == nil {
		m.demo = true
		m.screen = ScreenDashboard
		m.user = &model.User{Email: "demo@protodo.local", FirstName: "Demo"}
		return m
	}

	m.sessionChan = make(chan struct{}, 16)
	ch := m.sessionChan
	m.session.Subscribe(func(session.State) {
		// Non-blocking; the handler reads the latest snapshot anyway
		select {
		case ch <- struct{}{}:
		default:
		}
	})
	return m
}

// busy reports whether a request is in flight.
func (m Model) busy() bool {
	return m.inflight > 0
}

// visible returns the tasks passing the current search and filter.
func (m Model) visible() []model.Task {
	return m.tasks.Filter(m.query, m.filter)
}

func (m Model) currentTask() (model.Task, bool) {
	items := m.visible()
	if m.cursor < 0 || m.cursor >= len(items) {
		return model.Task{}, false
	}
	return items[m.cursor], true
}

// clampCursor keeps the cursor inside the visible list.
func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
