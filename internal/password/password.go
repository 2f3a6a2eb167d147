// Package password checks the strength of user passwords.
package password

import (
	"errors"
	"regexp"
	"strings"

	passwordvalidator "github.com/wagslane/go-password-validator"
)

const (
	minimumLength      = 10
	maximumLength      = 128
	minimumEntropyBits = 60
)

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	specialRe   = regexp.MustCompile(`[!@#$%^&*()\-_=+{};:,.<>/?\\|"']`)
)

var (
	ErrTooShort      = errors.New("password must be at least 10 characters long")
	ErrTooLong       = errors.New("password must be at most 128 characters long")
	ErrNoUppercase   = errors.New("password must contain at least one uppercase letter")
	ErrNoLowercase   = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit       = errors.New("password must contain at least one digit")
	ErrNoSpecial     = errors.New("password must contain at least one special character")
	ErrContainsEmail = errors.New("password must not contain the email address")
	ErrTooWeak       = errors.New("password is too weak")
)

// ValidatePassword returns every rule the password breaks, joined. The
// email's local part may not appear in the password.
func ValidatePassword(password, email string) error {
	if len(password) < minimumLength {
		return ErrTooShort
	}
	if len(password) > maximumLength {
		return ErrTooLong
	}

	var errs []error
	if !uppercaseRe.MatchString(password) {
		errs = append(errs, ErrNoUppercase)
	}
	if !lowercaseRe.MatchString(password) {
		errs = append(errs, ErrNoLowercase)
	}
	if !digitRe.MatchString(password) {
		errs = append(errs, ErrNoDigit)
	}
	if !specialRe.MatchString(password) {
		errs = append(errs, ErrNoSpecial)
	}
	if local, _, _ := strings.Cut(strings.ToLower(email), "@"); len(local) >= 3 &&
		strings.Contains(strings.ToLower(password), local) {
		errs = append(errs, ErrContainsEmail)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := passwordvalidator.Validate(password, minimumEntropyBits); err != nil {
		return errors.Join(ErrTooWeak, err)
	}
	return nil
}
