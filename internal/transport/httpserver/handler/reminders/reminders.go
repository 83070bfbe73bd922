package reminders

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	remindersdomain "pet-diary/internal/domain/reminders"
	"pet-diary/internal/domain/validation"
	commonhandler "pet-diary/internal/transport/httpserver/handler/common"
)

type saveReminderRequest struct {
	Title      string   `json:"title"`
	TargetTime *string  `json:"targetTime"`
	IsRepeat   bool     `json:"isRepeat"`
	Frequency  *string  `json:"frequency"`
	DaysOfWeek []string `json:"daysOfWeek"`
	IsEnabled  *bool    `json:"isEnabled"`
}

type completeReminderRequest struct {
	Completed *bool `json:"completed"`
}

type ReminderResponse struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	TargetTime        *string  `json:"targetTime"`
	IsRepeat          bool     `json:"isRepeat"`
	Frequency         *string  `json:"frequency"`
	DaysOfWeek        []string `json:"daysOfWeek"`
	IsEnabled         bool     `json:"isEnabled"`
	LastCompletedDate *string  `json:"lastCompletedDate"`
	State             string   `json:"state,omitempty"`
	Completed         bool     `json:"completed"`
	Visible           *bool    `json:"visibleToday,omitempty"`
}

type listRemindersResponse struct {
	Date  string             `json:"date"`
	Items []ReminderResponse `json:"items"`
}

func (h *Handlers) ListReminders(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	views, err := h.Reminders.ListAll(r.Context(), ownerID)
	if err != nil {
		h.log.InternalError("reminders.list: list reminders failed", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, listRemindersResponse{
		Date:  formatDay(h.Reminders.Today()),
		Items: ToReminderResponses(views, true),
	})
}

func (h *Handlers) ListTodayReminders(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	views, err := h.Reminders.ListToday(r.Context(), ownerID)
	if err != nil {
		h.log.InternalError("reminders.today: list reminders failed", err, "owner_id", ownerID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, listRemindersResponse{
		Date:  formatDay(h.Reminders.Today()),
		Items: ToReminderResponses(views, false),
	})
}

func (h *Handlers) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req saveReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}

	reminder, err := h.Reminders.Create(r.Context(), toSaveInput(ownerID, "", req))
	if err != nil {
		h.writeReminderError(w, "reminders.create", err, "owner_id", ownerID)
		return
	}

	writeJSON(w, http.StatusCreated, h.toResponse(*reminder))
}

func (h *Handlers) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req saveReminderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	reminderID := chi.URLParam(r, "id")

	reminder, err := h.Reminders.Update(r.Context(), toSaveInput(ownerID, reminderID, req))
	if err != nil {
		h.writeReminderError(w, "reminders.update", err, "owner_id", ownerID, "reminder_id", reminderID)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(*reminder))
}

// CompleteReminder marks the reminder done today; {"completed": false} undoes it.
func (h *Handlers) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	var req completeReminderRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	reminderID := chi.URLParam(r, "id")

	reminder, err := h.Reminders.ToggleComplete(r.Context(), ownerID, reminderID, completed)
	if err != nil {
		h.writeReminderError(w, "reminders.complete", err, "owner_id", ownerID, "reminder_id", reminderID)
		return
	}

	writeJSON(w, http.StatusOK, h.toResponse(*reminder))
}

func (h *Handlers) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := commonhandler.OwnerID(w, r)
	if !ok {
		return
	}
	reminderID := chi.URLParam(r, "id")

	if err := h.Reminders.Delete(r.Context(), ownerID, reminderID); err != nil {
		h.writeReminderError(w, "reminders.delete", err, "owner_id", ownerID, "reminder_id", reminderID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeReminderError(w http.ResponseWriter, op string, err error, attrs ...any) {
	if verr, ok := validation.As(err); ok {
		h.log.BusinessError(op+": validation failed", err, attrs...)
		commonhandler.WriteFieldError(w, verr.Field, verr.Error())
		return
	}

	switch {
	case errors.Is(err, remindersdomain.ErrReminderNotFound):
		h.log.BusinessError(op+": reminder not found", err, attrs...)
		writeError(w, http.StatusNotFound, "reminder_not_found", "reminder not found")
	case errors.Is(err, remindersdomain.ErrForbidden):
		h.log.BusinessError(op+": reminder belongs to another owner", err, attrs...)
		writeError(w, http.StatusForbidden, "forbidden", "forbidden")
	default:
		h.log.InternalError(op+": failed", err, attrs...)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func toSaveInput(ownerID, reminderID string, req saveReminderRequest) remindersdomain.SaveReminderInput {
	input := remindersdomain.SaveReminderInput{
		OwnerID:    ownerID,
		ID:         reminderID,
		Title:      req.Title,
		IsRepeat:   req.IsRepeat,
		DaysOfWeek: req.DaysOfWeek,
		IsEnabled:  req.IsEnabled,
	}
	if req.TargetTime != nil {
		input.TargetTime = *req.TargetTime
	}
	if req.Frequency != nil {
		input.Frequency = remindersdomain.Frequency(*req.Frequency)
	}
	return input
}

func (h *Handlers) toResponse(reminder remindersdomain.Reminder) ReminderResponse {
	return ToReminderResponse(remindersdomain.ViewOn(reminder, h.Reminders.Today()), false)
}
