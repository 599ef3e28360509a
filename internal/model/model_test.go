package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     FieldErrors
	}{
		{"ok", "ann@example.com", "secret1", FieldErrors{}},
		{"missing both", "", "", FieldErrors{"email": "Email is required", "password": "Password is required"}},
		{"bad email", "ann.example.com", "secret1", FieldErrors{"email": "Email is invalid"}},
		{"short password", "ann@example.com", "abc", FieldErrors{"password": "Password must be at least 6 characters"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateLogin(tt.email, tt.password))
		})
	}
}

func TestValidateSignup(t *testing.T) {
	p := Profile{FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "longenough"}
	assert.Empty(t, ValidateSignup(p, "longenough"))

	fe := ValidateSignup(Profile{FirstName: "  ", Email: "ann@example.com", Password: "short"}, "other")
	assert.Equal(t, "First name is required", fe["first_name"])
	assert.Equal(t, "Last name is required", fe["last_name"])
	assert.Equal(t, "Password must be at least 8 characters", fe["password"])
	assert.Equal(t, "Passwords do not match", fe["confirm_password"])
	assert.NotContains(t, fe, "email")
}

func TestFieldErrorsErr(t *testing.T) {
	assert.NoError(t, FieldErrors{}.Err())

	err := ValidateDraft(Draft{Title: "   "}).Err()
	require.Error(t, err)
	assert.Equal(t, "title: Please enter a task title.", err.Error())
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	p, err = ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, Priority(""), p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestParseStatusFilter(t *testing.T) {
	f, err := ParseStatusFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseStatusFilter("done")
	assert.Error(t, err)

	assert.True(t, FilterActive.Matches(false))
	assert.False(t, FilterActive.Matches(true))
	assert.True(t, FilterCompleted.Matches(true))
	assert.True(t, FilterAll.Matches(true))
}

func TestApplyKeepsIdentityAndCompletion(t *testing.T) {
	task := Task{ID: "7", Title: "old", Completed: true}
	due, err := ParseDate("2024-01-20")
	require.NoError(t, err)

	got := task.Apply(Draft{Title: "new", Priority: PriorityLow, DueDate: due})
	assert.Equal(t, "7", got.ID)
	assert.True(t, got.Completed)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "2024-01-20", FormatDate(got.DueDate))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 1, 21, 15, 0, 0, 0, time.UTC)
	past, _ := ParseDate("2024-01-20")
	today, _ := ParseDate("2024-01-21")

	open := Task{DueDate: past}
	assert.True(t, open.IsOverdue(now))

	done := Task{DueDate: past, Completed: true}
	assert.False(t, done.IsOverdue(now))

	dueToday := Task{DueDate: today}
	assert.False(t, dueToday.IsOverdue(now))
	assert.True(t, dueToday.IsDue(now))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ann Lee", User{Email: "a@b.co", FirstName: "Ann", LastName: "Lee"}.DisplayName())
	assert.Equal(t, "a@b.co", User{Email: "a@b.co"}.DisplayName())
}
