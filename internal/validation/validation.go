package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_.]{3,24}$`)
)

// MaxDescriptionLength caps a moment's caption
const MaxDescriptionLength = 280

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

// ValidateUsername checks a friend-circle username: lowercase letters,
// digits, dots and underscores, 3 to 24 characters
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "invalid username format"}
	}
	return nil
}

// ValidateDescription checks a moment caption
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return ValidationError{Field: "description", Message: fmt.Sprintf("description exceeds %d characters", MaxDescriptionLength)}
	}
	return nil
}

// ValidateReactionText checks a text reaction body
func ValidateReactionText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ValidationError{Field: "text", Message: "reaction text is required"}
	}
	return nil
}
