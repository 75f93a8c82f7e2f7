// Package validate holds the client-side form checks. The server repeats
// every check; these only save a round trip.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

const (
	MinPasswordLength = 8
	MaxNameLength     = 40
)

// FieldErrors maps form field names to a message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, field := range []string{"name", "email", "password", "confirm"} {
		if msg, ok := f[field]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
		}
	}
	return strings.Join(parts, "; ")
}

func Email(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("email address is not valid")
	}
	return nil
}

// Password requires at least eight characters with a letter and a digit.
func Password(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("password must contain a letter and a digit")
	}
	return nil
}

func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if len([]rune(name)) > MaxNameLength {
		return fmt.Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

type SignupForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Signup returns nil when the form is valid, otherwise FieldErrors.
func Signup(form SignupForm) error {
	errs := FieldErrors{}
	if err := Name(form.Name); err != nil {
		errs["name"] = err.Error()
	}
	if err := Email(form.Email); err != nil {
		errs["email"] = err.Error()
	}
	if err := Password(form.Password); err != nil {
		errs["password"] = err.Error()
	}
	if form.Confirm != form.Password {
		errs["confirm"] = "passwords do not match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Login only checks that both fields are usable.
func Login(email, password string) error {
	errs := FieldErrors{}
	if err := Email(email); err != nil {
		errs["email"] = err.Error()
	}
	if password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
