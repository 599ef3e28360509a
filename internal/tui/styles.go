package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/protodo/internal/model"
)

// Color palette
var (
	// Priority colors
	PriorityHigh   = lipgloss.Color("#FF6B6B") // Red
	PriorityMedium = lipgloss.Color("#FFE66D") // Yellow
	PriorityLow    = lipgloss.Color("#95E1A3") // Green

	// Due date colors
	DueOverdue  = lipgloss.Color("#FF6B6B")
	DueToday    = lipgloss.Color("#FFB347")
	DueTomorrow = lipgloss.Color("#FFE66D")
	DueSoon     = lipgloss.Color("#6CA0DC")

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Danger    = lipgloss.Color("#FF6B6B")
	Success   = lipgloss.Color("#95E1A3")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Auth card
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 3).
			Width(52)

	LabelStyle        = lipgloss.NewStyle().Foreground(TextMuted)
	LabelFocusedStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	ErrorStyle        = lipgloss.NewStyle().Foreground(Danger)
	NoteStyle         = lipgloss.NewStyle().Foreground(Success)
	SpinnerStyle      = lipgloss.NewStyle().Foreground(Primary)

	// Stats cards
	StatStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(0, 2).
			MarginRight(1)

	// Filter tabs
	TabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(TextMuted)
	TabActiveStyle = lipgloss.NewStyle().Padding(0, 2).Foreground(Primary).Bold(true).Underline(true)

	// Task list
	TaskListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TaskItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	TaskItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	DescriptionStyle = lipgloss.NewStyle().Foreground(TextMuted).PaddingLeft(8)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// GetPriorityStyle returns the style for a given priority
func GetPriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return lipgloss.NewStyle().Foreground(PriorityHigh).Bold(true)
	case model.PriorityMedium:
		return lipgloss.NewStyle().Foreground(PriorityMedium)
	case model.PriorityLow:
		return lipgloss.NewStyle().Foreground(PriorityLow)
	default:
		return HelpStyle
	}
}

// FormatPriority returns a formatted priority badge
func FormatPriority(p model.Priority) string {
	if p == "" {
		return ""
	}
	return GetPriorityStyle(p).Render(string(p))
}
