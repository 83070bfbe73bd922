package inmemory

import (
	"context"
	"sync"
	"time"

	remindersdomain "pet-diary/internal/domain/reminders"
)

type RemindersRepository struct {
	mu        sync.RWMutex
	reminders map[string]remindersdomain.Reminder
}

func NewRemindersRepository() *RemindersRepository {
	return &RemindersRepository{reminders: make(map[string]remindersdomain.Reminder)}
}

func (r *RemindersRepository) ListByOwner(ctx context.Context, ownerID string) ([]remindersdomain.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]remindersdomain.Reminder, 0)
	for _, reminder := range r.reminders {
		if reminder.OwnerID == ownerID {
			result = append(result, reminder)
		}
	}
	return result, nil
}

func (r *RemindersRepository) GetByID(ctx context.Context, reminderID string) (*remindersdomain.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reminder, ok := r.reminders[reminderID]
	if !ok {
		return nil, remindersdomain.ErrReminderNotFound
	}
	return &reminder, nil
}

func (r *RemindersRepository) Create(ctx context.Context, reminder *remindersdomain.Reminder) error {
	now := time.Now().UTC()
	reminder.CreatedAt = now
	reminder.UpdatedAt = now

	r.mu.Lock()
	r.reminders[reminder.ID] = *reminder
	r.mu.Unlock()
	return nil
}

func (r *RemindersRepository) Update(ctx context.Context, reminder *remindersdomain.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.reminders[reminder.ID]
	if !ok || existing.OwnerID != reminder.OwnerID {
		return remindersdomain.ErrReminderNotFound
	}
	reminder.LastCompletedDate = existing.LastCompletedDate
	reminder.UpdatedAt = time.Now().UTC()
	r.reminders[reminder.ID] = *reminder
	return nil
}

func (r *RemindersRepository) SetLastCompletedDate(ctx context.Context, ownerID, reminderID string, date *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reminder, ok := r.reminders[reminderID]
	if !ok || reminder.OwnerID != ownerID {
		return remindersdomain.ErrReminderNotFound
	}
	if date != nil {
		copied := *date
		date = &copied
	}
	reminder.LastCompletedDate = date
	reminder.UpdatedAt = time.Now().UTC()
	r.reminders[reminderID] = reminder
	return nil
}

func (r *RemindersRepository) Delete(ctx context.Context, ownerID, reminderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reminder, ok := r.reminders[reminderID]; !ok || reminder.OwnerID != ownerID {
		return false, nil
	}
	delete(r.reminders, reminderID)
	return true, nil
}
