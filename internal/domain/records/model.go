package records

import (
	"fmt"
	"time"
)

const (
	MaxWeightGrams    = 200000
	MinTemperatureC   = -50
	MaxTemperatureC   = 60
	MinHumidityPct    = 0
	MaxHumidityPct    = 100
	MaxMemoLength     = 1000
	MaxMealContent    = 30
	MaxMealUnit       = 20
	MaxExcretionNotes = 200
	MaxMedicationName = 50
	MaxEntriesPerList = 50
	MinIdempotencyKey = 8
	MaxIdempotencyKey = 128
	DefaultRecentDays = 7
	MaxRecentDays     = 90
)

type ExcretionType string

const (
	ExcretionUrine ExcretionType = "urine"
	ExcretionStool ExcretionType = "stool"
	ExcretionOther ExcretionType = "other"
)

type ExcretionCondition string

const (
	ConditionNormal   ExcretionCondition = "normal"
	ConditionAbnormal ExcretionCondition = "abnormal"
)

// Step names one sub-write of a daily batch, in execution order.
type Step string

const (
	StepLock        Step = "lock"
	StepWeight      Step = "weight"
	StepEnvironment Step = "environment"
	StepMemo        Step = "memo"
	StepMeals       Step = "meals"
	StepExcretions  Step = "excretions"
	StepMedications Step = "medications"
	StepVersion     Step = "version"
	StepCommit      Step = "commit"
)

type WeightEntry struct {
	ID          string
	AnimalID    string
	Date        time.Time
	WeightGrams float64
	UpdatedAt   time.Time
}

type EnvironmentEntry struct {
	ID           string
	AnimalID     string
	Date         time.Time
	TemperatureC *float64
	HumidityPct  *float64
	UpdatedAt    time.Time
}

type MemoEntry struct {
	ID        string
	AnimalID  string
	Date      time.Time
	Body      string
	UpdatedAt time.Time
}

type MealEntry struct {
	ID       string
	AnimalID string
	Date     time.Time
	Time     string
	Content  string
	Amount   *float64
	Unit     string
	Position int
}

type ExcretionEntry struct {
	ID        string
	AnimalID  string
	Date      time.Time
	Time      string
	Type      ExcretionType
	Condition ExcretionCondition
	Notes     string
	Position  int
}

type MedicationEntry struct {
	ID       string
	AnimalID string
	Date     time.Time
	Time     string
	Name     string
	Position int
}

// DailyRecordSet is everything recorded for one animal on one date.
// Absent singletons stay nil.
type DailyRecordSet struct {
	AnimalID    string
	Date        time.Time
	Version     int64
	Weight      *WeightEntry
	Environment *EnvironmentEntry
	Memo        *MemoEntry
	Meals       []MealEntry
	Excretions  []ExcretionEntry
	Medications []MedicationEntry
}

type MealInput struct {
	Time    string   `json:"time"`
	Content string   `json:"content"`
	Amount  *float64 `json:"amount,omitempty"`
	Unit    string   `json:"unit,omitempty"`
}

type ExcretionInput struct {
	Time      string             `json:"time"`
	Type      ExcretionType      `json:"type"`
	Condition ExcretionCondition `json:"condition"`
	Notes     string             `json:"notes,omitempty"`
}

type MedicationInput struct {
	Time string `json:"time"`
	Name string `json:"name"`
}

// DailyBatchInput is one composite save for (AnimalID, Date).
// Nil singletons and nil lists are left untouched; an empty list clears the
// collection for the day and an empty memo removes it.
type DailyBatchInput struct {
	OwnerID         string
	AnimalID        string
	Date            time.Time
	IdempotencyKey  string
	ExpectedVersion *int64
	Weight          *float64
	Temperature     *float64
	Humidity        *float64
	Memo            *string
	Meals           []MealInput
	Excretions      []ExcretionInput
	Medications     []MedicationInput
}

type BatchResult struct {
	Version  int64  `json:"version"`
	Applied  []Step `json:"applied"`
	Replayed bool   `json:"-"`
}

type BatchState string

const (
	BatchStateProcessing BatchState = "processing"
	BatchStateCompleted  BatchState = "completed"
)

type BatchRecord struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	OwnerID        string     `gorm:"not null;index"`
	IdempotencyKey string     `gorm:"column:idempotency_key;not null"`
	RequestHash    string     `gorm:"not null"`
	Status         BatchState `gorm:"not null"`
	ResponseJSON   []byte     `gorm:"type:jsonb;column:response_json"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (BatchRecord) TableName() string {
	return "daily_batch_requests"
}

type WeightRange string

const (
	WeightRange30d  WeightRange = "30d"
	WeightRange90d  WeightRange = "90d"
	WeightRange180d WeightRange = "180d"
)

func ParseWeightRange(value string) (WeightRange, error) {
	switch WeightRange(value) {
	case "":
		return WeightRange30d, nil
	case WeightRange30d, WeightRange90d, WeightRange180d:
		return WeightRange(value), nil
	default:
		return "", fmt.Errorf("unsupported weight range %q", value)
	}
}

func (r WeightRange) Days() int {
	switch r {
	case WeightRange90d:
		return 90
	case WeightRange180d:
		return 180
	default:
		return 30
	}
}

// RecentDay is one non-empty date in a recent-records window.
type RecentDay struct {
	Date       time.Time
	Weight     *WeightEntry
	Meals      []MealEntry
	Excretions []ExcretionEntry
}
