package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/protodo/internal/model"
)

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// dueLabel describes a due date relative to now, with the color to show it in.
func dueLabel(due *time.Time, now time.Time) (string, lipgloss.Color) {
	if due == nil {
		return "", ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	days := int(due.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		return "Overdue", DueOverdue
	case days == 0:
		return "Due today", DueToday
	case days == 1:
		return "Due tomorrow", DueTomorrow
	case days <= 7:
		return fmt.Sprintf("Due in %d days", days), DueSoon
	default:
		return due.Format("Jan 2, 2006"), TextMuted
	}
}

// draftFromForm reads the add/edit form. Field errors are returned for the
// form to show.
func draftFromForm(f *form) (model.Draft, model.FieldErrors) {
	d := model.Draft{
		Title:       f.value("title"),
		Description: f.value("description"),
	}.Normalize()

	fe := model.ValidateDraft(d)

	p, err := model.ParsePriority(f.value("priority"))
	if err != nil {
		fe["priority"] = "Priority must be low, medium or high"
	}
	d.Priority = p

	due, err := model.ParseDate(f.value("due_date"))
	if err != nil {
		fe["due_date"] = "Use the YYYY-MM-DD format"
	}
	d.DueDate = due

	return d, fe
}
