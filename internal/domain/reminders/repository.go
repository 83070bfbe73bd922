package reminders

import (
	"context"
	"time"
)

type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]Reminder, error)
	GetByID(ctx context.Context, reminderID string) (*Reminder, error)
	Create(ctx context.Context, reminder *Reminder) error
	// Writes are scoped to the owner: a row owned by someone else is not found.
	Update(ctx context.Context, reminder *Reminder) error
	SetLastCompletedDate(ctx context.Context, ownerID, reminderID string, date *time.Time) error
	Delete(ctx context.Context, ownerID, reminderID string) (bool, error)
}
