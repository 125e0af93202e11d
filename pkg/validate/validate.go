package validate

import (
	"errors"
	"regexp"
)

var (
	emailRe  = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	upperRe  = regexp.MustCompile(`[A-Z]`)
	lowerRe  = regexp.MustCompile(`[a-z]`)
	digitRe  = regexp.MustCompile(`[0-9]`)
	symbolRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

const minPasswordLen = 8

// Email reports whether the address has a plausible mailbox@domain shape.
func Email(email string) bool {
	return emailRe.MatchString(email)
}

// PasswordError checks the account password policy and returns an error
// naming the first violated rule, or nil when the password is acceptable.
func PasswordError(password string) error {
	switch {
	case len(password) < minPasswordLen:
		return errors.New("password must be at least 8 characters")
	case !upperRe.MatchString(password):
		return errors.New("password must contain an uppercase letter")
	case !lowerRe.MatchString(password):
		return errors.New("password must contain a lowercase letter")
	case !digitRe.MatchString(password):
		return errors.New("password must contain a digit")
	case !symbolRe.MatchString(password):
		return errors.New("password must contain a symbol")
	}
	return nil
}

// Password reports whether the password satisfies the policy.
func Password(password string) bool {
	return PasswordError(password) == nil
}
