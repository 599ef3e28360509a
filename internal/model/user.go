package model

import "strings"

// User is the identity record kept for the logged-in account.
// Only Email is guaranteed; the rest is filled when the backend returns it.
type User struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns "First Last" when known, otherwise the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return u.Email
}

// Profile is the registration payload collected by the signup form.
type Profile struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}
