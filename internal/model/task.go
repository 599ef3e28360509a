package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority of a task. The zero value means "not set".
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is preselected by the add form.
const DefaultPriority = PriorityMedium

// DateLayout is the calendar-date format used on the wire and in forms.
const DateLayout = "2006-01-02"

// ParsePriority accepts low, medium, high (any case) or the empty string.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
}

// Rank orders priorities high to low for sorting; unset sorts last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task represents a single todo item
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	Completed   bool
}

// Draft carries the editable fields of a task, as collected by the add/edit form.
type Draft struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
}

// Normalize trims text fields.
func (d Draft) Normalize() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	return d
}

// DraftOf returns the editable fields of t, for prefilling the edit form.
func DraftOf(t Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
	}
}

// Apply replaces the editable fields of t with d. ID and Completed are kept.
func (t Task) Apply(d Draft) Task {
	t.Title = d.Title
	t.Description = d.Description
	t.Priority = d.Priority
	t.DueDate = d.DueDate
	return t
}

// ParseDate parses a YYYY-MM-DD date; the empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return &d, nil
}

// FormatDate renders d as YYYY-MM-DD, or "" when nil.
func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// IsDue returns true if the task is due today or overdue
func (t *Task) IsDue(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return t.DueDate.Before(today.Add(24 * time.Hour))
}

// IsOverdue returns true if the task is past its due date and still open
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return t.DueDate.Before(today)
}

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

// StatusFilters lists the filters in display order.
var StatusFilters = []StatusFilter{FilterAll, FilterActive, FilterCompleted}

// ParseStatusFilter maps "" to FilterAll and rejects unknown names.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch f := StatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q (want all, active or completed)", s)
	}
}

// Matches reports whether a task with the given completion state passes f.
func (f StatusFilter) Matches(completed bool) bool {
	switch f {
	case FilterActive:
		return !completed
	case FilterCompleted:
		return completed
	default:
		return true
	}
}

// Stats counts tasks by state.
type Stats struct {
	Total     int
	Active    int
	Completed int
}
