package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/protodo/internal/model"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.screen {
	case ScreenLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Restoring session...")
	case ScreenLogin:
		return m.place(m.renderLogin())
	case ScreenSignup:
		return m.place(m.renderSignup())
	}

	mainContent := m.renderDashboard()

	switch m.mode {
	case ModeAddTask, ModeEditTask:
		mainContent = m.place(m.renderEditor())
	case ModeConfirmDelete:
		mainContent = m.place(m.renderConfirmDelete())
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar())
}

func (m Model) place(content string) string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
	)
}

func (m Model) renderLogin() string {
	s := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("ProTodo") + "\n"
	s += HelpStyle.Render("Sign in to your account") + "\n\n"
	s += m.login.view()
	if m.busy() {
		s += m.spinner.View() + " Signing in...\n"
	}
	s += "\n" + HelpStyle.Render("Enter:next/submit  Tab:next field  Ctrl+N:create account  Esc:quit")
	return CardStyle.Render(s)
}

func (m Model) renderSignup() string {
	s := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Create your account") + "\n\n"
	s += m.signup.view()
	if m.busy() {
		s += m.spinner.View() + " Creating account...\n"
	}
	s += "\n" + HelpStyle.Render("Enter:next/submit  Tab:next field  Esc:back to login")
	return CardStyle.Render(s)
}

func (m Model) renderDashboard() string {
	width := m.width - 4
	var s string

	// Header
	name := ""
	if m.user != nil {
		name = m.user.DisplayName()
	}
	title := "ProTodo"
	if m.demo {
		title += " (demo)"
	}
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(title)
	if name != "" {
		s += HelpStyle.Render("  " + name)
	}
	s += "\n\n"

	// Stats
	st := m.tasks.Stats()
	s += lipgloss.JoinHorizontal(lipgloss.Top,
		StatStyle.Render(fmt.Sprintf("Total\n%d", st.Total)),
		StatStyle.Render(fmt.Sprintf("Active\n%d", st.Active)),
		StatStyle.Render(fmt.Sprintf("Completed\n%d", st.Completed)),
	) + "\n\n"

	// Search and filter tabs
	if m.mode == ModeSearch {
		s += "/" + m.search.View() + "\n"
	} else if m.query != "" {
		s += HelpStyle.Render("/"+m.query+"  (Esc to clear)") + "\n"
	}
	var tabs []string
	for _, f := range model.StatusFilters {
		style := TabStyle
		if f == m.filter {
			style = TabActiveStyle
		}
		tabs = append(tabs, style.Render(strings.ToUpper(string(f[:1]))+string(f[1:])))
	}
	s += lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", max(width-4, 0))) + "\n\n"

	s += m.renderTaskList(width)

	return TaskListStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderTaskList(width int) string {
	if m.loadErr != "" {
		return ErrorStyle.Render("  "+m.loadErr) + "\n" + HelpStyle.Render("  Press r to retry.")
	}
	if !m.tasks.Loaded() && m.busy() {
		return "  " + m.spinner.View() + " Loading tasks..."
	}

	items := m.visible()
	if len(items) == 0 {
		if m.tasks.Stats().Total == 0 {
			return HelpStyle.Render("  No tasks yet. Press 'a' to add one.")
		}
		return HelpStyle.Render("  No tasks match.")
	}

	now := m.now()
	var s string
	for i, t := range items {
		cursor := "  "
		style := TaskItemStyle
		if i == m.cursor {
			cursor = "❯ "
			style = TaskItemSelectedStyle
		}

		icon := "[ ]"
		if t.Completed {
			icon = "[x]"
			style = TaskDoneStyle
		}

		titleWidth := max(width-40, 10)
		title := truncate(t.Title, titleWidth)
		check := style.Render(cursor + icon)
		text := style.Render(fmt.Sprintf(" %-*s ", titleWidth, title))

		due := ""
		if label, color := dueLabel(t.DueDate, now); label != "" && !t.Completed {
			due = lipgloss.NewStyle().Foreground(color).Render(label)
		}

		s += check + text + FormatPriority(t.Priority) + "  " + due + "\n"
		if t.Description != "" && i == m.cursor {
			s += DescriptionStyle.Render(truncate(t.Description, max(width-12, 10))) + "\n"
		}
	}
	return s
}

func (m Model) renderStatusBar() string {
	help := "/:search  f:filter  a:add  e:edit  x:done  d:del  r:reload  ?:help  q:quit  L:logout"
	if m.demo {
		help = "/:search  f:filter  a:add  e:edit  x:done  d:del  ?:help  q:quit"
	}
	if m.mode == ModeSearch {
		help = "Type to search  Enter:keep  Esc:clear"
	} else if m.message != "" {
		help = m.message
	}

	if m.busy() {
		help = m.spinner.View() + " " + help
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderEditor() string {
	title := "Add Task"
	if m.mode == ModeEditTask {
		title = "Edit Task"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.editor.view()
	content += HelpStyle.Render("Enter:save  Tab:next field  Esc:cancel")

	return ModalStyle.Width(56).Render(content)
}

func (m Model) renderConfirmDelete() string {
	t, ok := m.currentTask()
	if !ok {
		return ""
	}
	content := lipgloss.NewStyle().Bold(true).Foreground(Danger).Render("Delete task?") + "\n\n"
	content += truncate(t.Title, 44) + "\n\n"
	content += HelpStyle.Render("y:delete  any other key:cancel")
	return ModalStyle.Width(52).Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  g/G    Top / bottom     │
│  /      Search           │
│  f/Tab  Next filter      │
│                          │
│  Actions                 │
│  ───────                 │
│  a       Add task        │
│  e       Edit task       │
│  x/Enter Toggle done     │
│  d       Delete          │
│  r       Reload          │
│                          │
│  Other                   │
│  ─────                   │
│  ?       Toggle help     │
│  L       Log out         │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
