// Package message turns errors from the session and task layers into the
// text shown to the user.
package message

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/existflow/protodo/internal/api"
)

const (
	InvalidCredentials = "Invalid email or password"
	Unreachable        = "Cannot reach server. Please try again later."
	Generic            = "Something went wrong."
	LoadFailed         = "Failed to load tasks. Please try again later."
)

// Login translates a login failure.
func Login(err error) string {
	if err == nil {
		return ""
	}
	if api.IsTransport(err) {
		return Unreachable
	}

	var se *api.StatusError
	if !errors.As(err, &se) {
		return Generic
	}
	if se.StatusCode == http.StatusUnauthorized {
		return InvalidCredentials
	}
	if se.Message != "" {
		return se.Message
	}
	return fmt.Sprintf("Login failed (%d)", se.StatusCode)
}

// Signup translates a registration failure.
func Signup(err error) string {
	if err == nil {
		return ""
	}
	if api.IsTransport(err) {
		return Unreachable
	}

	var se *api.StatusError
	if !errors.As(err, &se) {
		return Generic
	}
	if se.Message != "" {
		return se.Message
	}
	return fmt.Sprintf("Signup failed (%d)", se.StatusCode)
}

// Load translates a failure to fetch the task list. The cause is logged, not shown.
func Load(err error) string {
	if err == nil {
		return ""
	}
	return LoadFailed
}

// Task translates a failed create, edit or delete.
func Task(action string, err error) string {
	if err == nil {
		return ""
	}
	if api.IsTransport(err) {
		return Unreachable
	}
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return fmt.Sprintf("Failed to %s task: %s", action, se.Message)
	}
	return fmt.Sprintf("Failed to %s task.", action)
}
