// Package validation holds the field-level checks shared by the diary domains.
// Every check returns the first violation only; callers stop at the first error.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Error is a non-fatal, caller-caused violation of a field or cross-field rule.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Errorf(field, "is required")
	}
	return nil
}

// MaxLen counts runes, not bytes: memo and notes are typically non-ASCII.
func MaxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return Errorf(field, "must be at most %d characters", limit)
	}
	return nil
}

func Range(field string, value, min, max float64) error {
	if value < min || value > max {
		return Errorf(field, "must be between %g and %g", min, max)
	}
	return nil
}

// ClockTime accepts a 24h "HH:mm" wall-clock time.
func ClockTime(field, value string) error {
	if !clockTimeRegex.MatchString(value) {
		return Errorf(field, "must be HH:mm")
	}
	return nil
}

func IsClockTime(value string) bool {
	return clockTimeRegex.MatchString(value)
}

// First returns the first non-nil error in order.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
