package records

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/pkg/clock"
)

const dayFilter = "animal_id = ? AND record_date = ?"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(recordsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// sqlDate passes dates as YYYY-MM-DD so the session timezone never shifts them.
func sqlDate(date time.Time) string {
	return clock.FormatDate(date)
}

func (r *PostgresRepository) LockDay(ctx context.Context, animalID string, date time.Time) (int64, error) {
	row := dayRow{AnimalID: animalID, RecordDate: clock.DateOf(date)}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return 0, err
	}

	var locked dayRow
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(dayFilter, animalID, sqlDate(date)).
		First(&locked).Error; err != nil {
		return 0, err
	}
	return locked.Version, nil
}

func (r *PostgresRepository) BumpDayVersion(ctx context.Context, animalID string, date time.Time) (int64, error) {
	var version int64
	err := r.db.WithContext(ctx).
		Raw("UPDATE record_days SET version = version + 1, updated_at = NOW() WHERE animal_id = ? AND record_date = ? RETURNING version",
			animalID, sqlDate(date)).
		Scan(&version).Error
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (r *PostgresRepository) GetDayVersion(ctx context.Context, animalID string, date time.Time) (int64, error) {
	var row dayRow
	err := r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Version, nil
}

func (r *PostgresRepository) GetWeight(ctx context.Context, animalID string, date time.Time) (*recordsdomain.WeightEntry, error) {
	var row weightRow
	err := r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := row.toDomain()
	return &entry, nil
}

// UpsertWeight replaces the day's weight. The row takes the new entry id so
// caches keyed by the latest weight id see the change.
func (r *PostgresRepository) UpsertWeight(ctx context.Context, entry *recordsdomain.WeightEntry) error {
	row := weightRow{
		ID:         entry.ID,
		AnimalID:   entry.AnimalID,
		RecordDate: clock.DateOf(entry.Date),
		WeightG:    entry.WeightGrams,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "animal_id"}, {Name: "record_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "weight_g", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return err
	}
	entry.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PostgresRepository) GetEnvironment(ctx context.Context, animalID string, date time.Time) (*recordsdomain.EnvironmentEntry, error) {
	var row environmentRow
	err := r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := row.toDomain()
	return &entry, nil
}

func (r *PostgresRepository) UpsertEnvironment(ctx context.Context, entry *recordsdomain.EnvironmentEntry) error {
	row := environmentRow{
		ID:           entry.ID,
		AnimalID:     entry.AnimalID,
		RecordDate:   clock.DateOf(entry.Date),
		TemperatureC: entry.TemperatureC,
		HumidityPct:  entry.HumidityPct,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "animal_id"}, {Name: "record_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"temperature_c", "humidity_pct", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return err
	}
	entry.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PostgresRepository) GetMemo(ctx context.Context, animalID string, date time.Time) (*recordsdomain.MemoEntry, error) {
	var row memoRow
	err := r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry := row.toDomain()
	return &entry, nil
}

func (r *PostgresRepository) UpsertMemo(ctx context.Context, entry *recordsdomain.MemoEntry) error {
	row := memoRow{
		ID:         entry.ID,
		AnimalID:   entry.AnimalID,
		RecordDate: clock.DateOf(entry.Date),
		Body:       entry.Body,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "animal_id"}, {Name: "record_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return err
	}
	entry.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PostgresRepository) DeleteMemo(ctx context.Context, animalID string, date time.Time) error {
	return r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).Delete(&memoRow{}).Error
}

func (r *PostgresRepository) ListMeals(ctx context.Context, animalID string, date time.Time) ([]recordsdomain.MealEntry, error) {
	var rows []mealRow
	if err := r.db.WithContext(ctx).
		Where(dayFilter, animalID, sqlDate(date)).
		Order("position asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.MealEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) DeleteMeals(ctx context.Context, animalID string, date time.Time) error {
	return r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).Delete(&mealRow{}).Error
}

func (r *PostgresRepository) InsertMeals(ctx context.Context, entries []recordsdomain.MealEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]mealRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, mealRowFrom(entry))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) ListExcretions(ctx context.Context, animalID string, date time.Time) ([]recordsdomain.ExcretionEntry, error) {
	var rows []excretionRow
	if err := r.db.WithContext(ctx).
		Where(dayFilter, animalID, sqlDate(date)).
		Order("position asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.ExcretionEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) DeleteExcretions(ctx context.Context, animalID string, date time.Time) error {
	return r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).Delete(&excretionRow{}).Error
}

func (r *PostgresRepository) InsertExcretions(ctx context.Context, entries []recordsdomain.ExcretionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]excretionRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, excretionRowFrom(entry))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) ListMedications(ctx context.Context, animalID string, date time.Time) ([]recordsdomain.MedicationEntry, error) {
	var rows []medicationRow
	if err := r.db.WithContext(ctx).
		Where(dayFilter, animalID, sqlDate(date)).
		Order("position asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.MedicationEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) DeleteMedications(ctx context.Context, animalID string, date time.Time) error {
	return r.db.WithContext(ctx).Where(dayFilter, animalID, sqlDate(date)).Delete(&medicationRow{}).Error
}

func (r *PostgresRepository) InsertMedications(ctx context.Context, entries []recordsdomain.MedicationEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]medicationRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, medicationRowFrom(entry))
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *PostgresRepository) ListWeightsSince(ctx context.Context, animalID string, from time.Time) ([]recordsdomain.WeightEntry, error) {
	var rows []weightRow
	if err := r.db.WithContext(ctx).
		Where("animal_id = ? AND record_date >= ?", animalID, sqlDate(from)).
		Order("record_date asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.WeightEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) ListMealsSince(ctx context.Context, animalID string, from time.Time) ([]recordsdomain.MealEntry, error) {
	var rows []mealRow
	if err := r.db.WithContext(ctx).
		Where("animal_id = ? AND record_date >= ?", animalID, sqlDate(from)).
		Order("record_date asc, position asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.MealEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) ListExcretionsSince(ctx context.Context, animalID string, from time.Time) ([]recordsdomain.ExcretionEntry, error) {
	var rows []excretionRow
	if err := r.db.WithContext(ctx).
		Where("animal_id = ? AND record_date >= ?", animalID, sqlDate(from)).
		Order("record_date asc, position asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.ExcretionEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) LatestWeights(ctx context.Context, animalID string, limit int) ([]recordsdomain.WeightEntry, error) {
	var rows []weightRow
	if err := r.db.WithContext(ctx).
		Where("animal_id = ?", animalID).
		Order("record_date desc").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]recordsdomain.WeightEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}

func (r *PostgresRepository) CountWeightsBetween(ctx context.Context, animalID string, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&weightRow{}).
		Where("animal_id = ? AND record_date BETWEEN ? AND ?", animalID, sqlDate(from), sqlDate(to)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
