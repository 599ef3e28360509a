package model

import (
	"regexp"
	"sort"
	"strings"
)

const (
	minLoginPassword  = 6
	minSignupPassword = 8
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// FieldErrors maps a form field name to the message shown next to it.
type FieldErrors map[string]string

// Error lists the failing fields so FieldErrors can travel as an error.
func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

// Err returns nil when there are no field errors.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func validateEmail(fe FieldErrors, email string) {
	switch {
	case email == "":
		fe["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		fe["email"] = "Email is invalid"
	}
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) FieldErrors {
	fe := FieldErrors{}
	validateEmail(fe, email)
	switch {
	case password == "":
		fe["password"] = "Password is required"
	case len(password) < minLoginPassword:
		fe["password"] = "Password must be at least 6 characters"
	}
	return fe
}

// ValidateSignup checks the signup form, including the password confirmation.
func ValidateSignup(p Profile, confirm string) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(p.FirstName) == "" {
		fe["first_name"] = "First name is required"
	}
	if strings.TrimSpace(p.LastName) == "" {
		fe["last_name"] = "Last name is required"
	}
	validateEmail(fe, p.Email)
	switch {
	case p.Password == "":
		fe["password"] = "Password is required"
	case len(p.Password) < minSignupPassword:
		fe["password"] = "Password must be at least 8 characters"
	}
	if p.Password != confirm {
		fe["confirm_password"] = "Passwords do not match"
	}
	return fe
}

// ValidateDraft checks the add/edit task form.
func ValidateDraft(d Draft) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(d.Title) == "" {
		fe["title"] = "Please enter a task title."
	}
	return fe
}
