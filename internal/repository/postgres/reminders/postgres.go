package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	remindersdomain "pet-diary/internal/domain/reminders"
	"pet-diary/pkg/clock"
)

type reminderRow struct {
	ID                string     `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID           string     `gorm:"column:owner_id"`
	Title             string     `gorm:"column:title"`
	TargetTime        *string    `gorm:"column:target_time"`
	IsRepeat          bool       `gorm:"column:is_repeat"`
	Frequency         *string    `gorm:"column:frequency"`
	DaysOfWeek        string     `gorm:"column:days_of_week"`
	IsEnabled         bool       `gorm:"column:is_enabled"`
	LastCompletedDate *time.Time `gorm:"column:last_completed_date;type:date"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (reminderRow) TableName() string {
	return "reminders"
}

func rowFrom(reminder remindersdomain.Reminder) reminderRow {
	return reminderRow{
		ID:                reminder.ID,
		OwnerID:           reminder.OwnerID,
		Title:             reminder.Title,
		TargetTime:        nullableString(reminder.TargetTime),
		IsRepeat:          reminder.IsRepeat,
		Frequency:         nullableString(string(reminder.Frequency)),
		DaysOfWeek:        reminder.DaysOfWeek.String(),
		IsEnabled:         reminder.IsEnabled,
		LastCompletedDate: reminder.LastCompletedDate,
		CreatedAt:         reminder.CreatedAt,
		UpdatedAt:         reminder.UpdatedAt,
	}
}

func (r reminderRow) toDomain() (remindersdomain.Reminder, error) {
	days, err := remindersdomain.ParseWeekdaysCSV(r.DaysOfWeek)
	if err != nil {
		return remindersdomain.Reminder{}, fmt.Errorf("reminder %s: %w", r.ID, err)
	}

	reminder := remindersdomain.Reminder{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Title:      r.Title,
		IsRepeat:   r.IsRepeat,
		DaysOfWeek: days,
		IsEnabled:  r.IsEnabled,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.TargetTime != nil {
		reminder.TargetTime = *r.TargetTime
	}
	if r.Frequency != nil {
		reminder.Frequency = remindersdomain.Frequency(*r.Frequency)
	}
	if r.LastCompletedDate != nil {
		date := clock.DateOf(*r.LastCompletedDate)
		reminder.LastCompletedDate = &date
	}
	return reminder, nil
}

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]remindersdomain.Reminder, error) {
	var rows []reminderRow
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	reminders := make([]remindersdomain.Reminder, 0, len(rows))
	for _, row := range rows {
		reminder, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, reminderID string) (*remindersdomain.Reminder, error) {
	var row reminderRow
	if err := r.db.WithContext(ctx).Where("id = ?", reminderID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, remindersdomain.ErrReminderNotFound
		}
		return nil, err
	}
	reminder, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *PostgresRepository) Create(ctx context.Context, reminder *remindersdomain.Reminder) error {
	row := rowFrom(*reminder)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	reminder.CreatedAt = row.CreatedAt
	reminder.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, reminder *remindersdomain.Reminder) error {
	row := rowFrom(*reminder)
	result := r.db.WithContext(ctx).
		Model(&reminderRow{}).
		Where("id = ? AND owner_id = ?", reminder.ID, reminder.OwnerID).
		Updates(map[string]interface{}{
			"title":        row.Title,
			"target_time":  row.TargetTime,
			"is_repeat":    row.IsRepeat,
			"frequency":    row.Frequency,
			"days_of_week": row.DaysOfWeek,
			"is_enabled":   row.IsEnabled,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return remindersdomain.ErrReminderNotFound
	}
	return nil
}

func (r *PostgresRepository) SetLastCompletedDate(ctx context.Context, ownerID, reminderID string, date *time.Time) error {
	var value interface{}
	if date != nil {
		value = clock.FormatDate(*date)
	}
	result := r.db.WithContext(ctx).
		Model(&reminderRow{}).
		Where("id = ? AND owner_id = ?", reminderID, ownerID).
		Update("last_completed_date", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return remindersdomain.ErrReminderNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, reminderID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", reminderID, ownerID).
		Delete(&reminderRow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
