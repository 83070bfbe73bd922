package reminders

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrForbidden        = errors.New("reminder belongs to another owner")
)
