// Package validation checks user-supplied account and child profile fields.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Child age limits accepted on registration and profile edits
const (
	MinChildAge = 3
	MaxChildAge = 12

	maxChildNameLength = 50
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword requires at least 8 characters with a lowercase letter,
// an uppercase letter and a digit
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower || !upper || !digit {
		return ValidationError{Field: "password", Message: "password must contain a lowercase letter, an uppercase letter and a digit"}
	}
	return nil
}

// ValidateChildName checks the child's display name
func ValidateChildName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "childName", Message: "child name is required"}
	}
	if utf8.RuneCountInString(name) > maxChildNameLength {
		return ValidationError{Field: "childName", Message: fmt.Sprintf("child name must be at most %d characters", maxChildNameLength)}
	}
	return nil
}

// ValidateChildAge checks the child's age is within the supported range
func ValidateChildAge(age int) error {
	if age < MinChildAge || age > MaxChildAge {
		return ValidationError{Field: "childAge", Message: fmt.Sprintf("child age must be between %d and %d", MinChildAge, MaxChildAge)}
	}
	return nil
}

// ValidateVolume checks an audio volume percentage
func ValidateVolume(field string, volume int) error {
	if volume < 0 || volume > 100 {
		return ValidationError{Field: field, Message: "volume must be between 0 and 100"}
	}
	return nil
}
