package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

const (
	minUsernameLength = 3
	minPasswordLength = 8
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	upperPattern    = regexp.MustCompile(`[A-Z]`)
	lowerPattern    = regexp.MustCompile(`[a-z]`)
	digitPattern    = regexp.MustCompile(`[0-9]`)
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength {
		return validationError("username must be at least 3 characters long")
	}
	if !usernamePattern.MatchString(username) {
		return validationError("username can only contain letters, digits, underscores and hyphens")
	}
	return nil
}

// validatePassword counts length in characters. The character classes are
// ASCII only.
func validatePassword(password string) error {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLength:
		return validationError("password must be at least 8 characters long")
	case !upperPattern.MatchString(password):
		return validationError("password must contain at least one uppercase letter")
	case !lowerPattern.MatchString(password):
		return validationError("password must contain at least one lowercase letter")
	case !digitPattern.MatchString(password):
		return validationError("password must contain at least one digit")
	}
	return nil
}

// normalizeDescription trims surrounding whitespace and rejects blank text.
func normalizeDescription(description string) (string, error) {
	d := strings.TrimSpace(description)
	if d == "" {
		return "", validationError("description cannot be empty")
	}
	return d, nil
}
