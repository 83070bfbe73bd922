package reminders

import (
	"time"

	remindersdomain "pet-diary/internal/domain/reminders"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
	"pet-diary/pkg/clock"
)

func ToReminderResponses(views []remindersdomain.View, withVisibility bool) []ReminderResponse {
	result := make([]ReminderResponse, 0, len(views))
	for _, view := range views {
		result = append(result, ToReminderResponse(view, withVisibility))
	}
	return result
}

func ToReminderResponse(view remindersdomain.View, withVisibility bool) ReminderResponse {
	reminder := view.Reminder
	response := ReminderResponse{
		ID:                reminder.ID,
		Title:             reminder.Title,
		IsRepeat:          reminder.IsRepeat,
		DaysOfWeek:        reminder.DaysOfWeek.Tags(),
		IsEnabled:         reminder.IsEnabled,
		LastCompletedDate: commonhandler.FormatDate(reminder.LastCompletedDate),
		State:             string(view.State),
		Completed:         view.Completed,
	}
	if reminder.HasTargetTime() {
		targetTime := reminder.TargetTime
		response.TargetTime = &targetTime
	}
	if reminder.Frequency != "" {
		frequency := string(reminder.Frequency)
		response.Frequency = &frequency
	}
	if withVisibility {
		visible := view.Visible
		response.Visible = &visible
	}
	return response
}

func formatDay(day time.Time) string {
	return clock.FormatDate(day)
}
