package records

import (
	"time"

	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/pkg/clock"
)

type dayRow struct {
	AnimalID   string    `gorm:"column:animal_id;type:uuid;primaryKey"`
	RecordDate time.Time `gorm:"column:record_date;type:date;primaryKey"`
	Version    int64     `gorm:"column:version"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (dayRow) TableName() string {
	return "record_days"
}

type weightRow struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	AnimalID   string    `gorm:"column:animal_id;type:uuid"`
	RecordDate time.Time `gorm:"column:record_date;type:date"`
	WeightG    float64   `gorm:"column:weight_g"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (weightRow) TableName() string {
	return "weight_records"
}

func (r weightRow) toDomain() recordsdomain.WeightEntry {
	return recordsdomain.WeightEntry{
		ID:          r.ID,
		AnimalID:    r.AnimalID,
		Date:        clock.DateOf(r.RecordDate),
		WeightGrams: r.WeightG,
		UpdatedAt:   r.UpdatedAt,
	}
}

type environmentRow struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey"`
	AnimalID     string    `gorm:"column:animal_id;type:uuid"`
	RecordDate   time.Time `gorm:"column:record_date;type:date"`
	TemperatureC *float64  `gorm:"column:temperature_c"`
	HumidityPct  *float64  `gorm:"column:humidity_pct"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (environmentRow) TableName() string {
	return "environment_records"
}

func (r environmentRow) toDomain() recordsdomain.EnvironmentEntry {
	return recordsdomain.EnvironmentEntry{
		ID:           r.ID,
		AnimalID:     r.AnimalID,
		Date:         clock.DateOf(r.RecordDate),
		TemperatureC: r.TemperatureC,
		HumidityPct:  r.HumidityPct,
		UpdatedAt:    r.UpdatedAt,
	}
}

type memoRow struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	AnimalID   string    `gorm:"column:animal_id;type:uuid"`
	RecordDate time.Time `gorm:"column:record_date;type:date"`
	Body       string    `gorm:"column:body"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (memoRow) TableName() string {
	return "memo_records"
}

func (r memoRow) toDomain() recordsdomain.MemoEntry {
	return recordsdomain.MemoEntry{
		ID:        r.ID,
		AnimalID:  r.AnimalID,
		Date:      clock.DateOf(r.RecordDate),
		Body:      r.Body,
		UpdatedAt: r.UpdatedAt,
	}
}

type mealRow struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	AnimalID   string    `gorm:"column:animal_id;type:uuid"`
	RecordDate time.Time `gorm:"column:record_date;type:date"`
	FedAt      string    `gorm:"column:fed_at"`
	Content    string    `gorm:"column:content"`
	Amount     *float64  `gorm:"column:amount"`
	Unit       string    `gorm:"column:unit"`
	Position   int       `gorm:"column:position"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (mealRow) TableName() string {
	return "meal_records"
}

func mealRowFrom(entry recordsdomain.MealEntry) mealRow {
	return mealRow{
		ID:         entry.ID,
		AnimalID:   entry.AnimalID,
		RecordDate: entry.Date,
		FedAt:      entry.Time,
		Content:    entry.Content,
		Amount:     entry.Amount,
		Unit:       entry.Unit,
		Position:   entry.Position,
	}
}

func (r mealRow) toDomain() recordsdomain.MealEntry {
	return recordsdomain.MealEntry{
		ID:       r.ID,
		AnimalID: r.AnimalID,
		Date:     clock.DateOf(r.RecordDate),
		Time:     r.FedAt,
		Content:  r.Content,
		Amount:   r.Amount,
		Unit:     r.Unit,
		Position: r.Position,
	}
}

type excretionRow struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	AnimalID   string    `gorm:"column:animal_id;type:uuid"`
	RecordDate time.Time `gorm:"column:record_date;type:date"`
	ObservedAt string    `gorm:"column:observed_at"`
	Kind       string    `gorm:"column:kind"`
	Condition  string    `gorm:"column:condition"`
	Notes      string    `gorm:"column:notes"`
	Position   int       `gorm:"column:position"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (excretionRow) TableName() string {
	return "excretion_records"
}

func excretionRowFrom(entry recordsdomain.ExcretionEntry) excretionRow {
	return excretionRow{
		ID:         entry.ID,
		AnimalID:   entry.AnimalID,
		RecordDate: entry.Date,
		ObservedAt: entry.Time,
		Kind:       string(entry.Type),
		Condition:  string(entry.Condition),
		Notes:      entry.Notes,
		Position:   entry.Position,
	}
}

func (r excretionRow) toDomain() recordsdomain.ExcretionEntry {
	return recordsdomain.ExcretionEntry{
		ID:        r.ID,
		AnimalID:  r.AnimalID,
		Date:      clock.DateOf(r.RecordDate),
		Time:      r.ObservedAt,
		Type:      recordsdomain.ExcretionType(r.Kind),
		Condition: recordsdomain.ExcretionCondition(r.Condition),
		Notes:     r.Notes,
		Position:  r.Position,
	}
}

type medicationRow struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey"`
	AnimalID   string    `gorm:"column:animal_id;type:uuid"`
	RecordDate time.Time `gorm:"column:record_date;type:date"`
	GivenAt    string    `gorm:"column:given_at"`
	Name       string    `gorm:"column:name"`
	Position   int       `gorm:"column:position"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (medicationRow) TableName() string {
	return "medication_records"
}

func medicationRowFrom(entry recordsdomain.MedicationEntry) medicationRow {
	return medicationRow{
		ID:         entry.ID,
		AnimalID:   entry.AnimalID,
		RecordDate: entry.Date,
		GivenAt:    entry.Time,
		Name:       entry.Name,
		Position:   entry.Position,
	}
}

func (r medicationRow) toDomain() recordsdomain.MedicationEntry {
	return recordsdomain.MedicationEntry{
		ID:       r.ID,
		AnimalID: r.AnimalID,
		Date:     clock.DateOf(r.RecordDate),
		Time:     r.GivenAt,
		Name:     r.Name,
		Position: r.Position,
	}
}
