package reminders

import (
	"sort"
	"time"

	"pet-diary/pkg/clock"
)

type State string

const (
	StateRepeatingAlways       State = "repeating_always"
	StateRepeatingWeekdayGated State = "repeating_weekday_gated"
	StateOneTimePending        State = "one_time_pending"
	StateOneTimeCompletedToday State = "one_time_completed_today"
	StateOneTimeExpired        State = "one_time_expired"
)

// Classify derives the reminder's state on today. A completion date after
// today counts as pending.
func Classify(reminder Reminder, today time.Time) State {
	today = clock.DateOf(today)

	if reminder.IsRepeat {
		if reminder.Frequency == FrequencyWeekly && !reminder.DaysOfWeek.IsFull() {
			return StateRepeatingWeekdayGated
		}
		return StateRepeatingAlways
	}

	if reminder.LastCompletedDate == nil {
		return StateOneTimePending
	}
	completed := clock.DateOf(*reminder.LastCompletedDate)
	switch {
	case completed.Equal(today):
		return StateOneTimeCompletedToday
	case completed.Before(today):
		return StateOneTimeExpired
	default:
		return StateOneTimePending
	}
}

// VisibleOn reports whether the reminder belongs in today's list. Expired
// one-time reminders are hidden even while still enabled.
func VisibleOn(reminder Reminder, today time.Time) bool {
	switch Classify(reminder, today) {
	case StateOneTimeExpired:
		return false
	case StateRepeatingWeekdayGated:
		return reminder.IsEnabled && reminder.DaysOfWeek.Contains(clock.DateOf(today).Weekday())
	default:
		return reminder.IsEnabled
	}
}

func ViewOn(reminder Reminder, today time.Time) View {
	today = clock.DateOf(today)
	return View{
		Reminder:  reminder,
		State:     Classify(reminder, today),
		Completed: reminder.CompletedOn(today),
		Visible:   VisibleOn(reminder, today),
	}
}

// FilterToday keeps the reminders visible on today, sorted for display.
func FilterToday(reminders []Reminder, today time.Time) []View {
	views := make([]View, 0, len(reminders))
	for _, reminder := range SortByTargetTime(reminders) {
		view := ViewOn(reminder, today)
		if view.Visible {
			views = append(views, view)
		}
	}
	return views
}

// SortByTargetTime returns a sorted copy: all-day reminders first, then by
// time, ties broken by title and id.
func SortByTargetTime(reminders []Reminder) []Reminder {
	sorted := append([]Reminder(nil), reminders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.HasTargetTime() != b.HasTargetTime() {
			return !a.HasTargetTime()
		}
		if a.TargetTime != b.TargetTime {
			return a.TargetTime < b.TargetTime
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return sorted
}
