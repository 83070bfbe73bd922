package reminders

import "time"

const maxTitleLength = 50

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

type Reminder struct {
	ID                string
	OwnerID           string
	Title             string
	TargetTime        string
	IsRepeat          bool
	Frequency         Frequency
	DaysOfWeek        WeekdaySet
	IsEnabled         bool
	LastCompletedDate *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasTargetTime is false for all-day reminders.
func (r Reminder) HasTargetTime() bool {
	return r.TargetTime != ""
}

func (r Reminder) CompletedOn(day time.Time) bool {
	return r.LastCompletedDate != nil && r.LastCompletedDate.Equal(day)
}

type SaveReminderInput struct {
	OwnerID    string
	ID         string
	Title      string
	TargetTime string
	IsRepeat   bool
	Frequency  Frequency
	DaysOfWeek []string
	IsEnabled  *bool
}

// View is a reminder together with its state on a given day.
type View struct {
	Reminder  Reminder
	State     State
	Completed bool
	Visible   bool
}
