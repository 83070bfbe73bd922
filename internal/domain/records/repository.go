package records

import (
	"context"
	"time"
)

// Repository is the only place storage field names are translated to and
// from the record types. Getters for singletons return nil, nil when absent.
type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error

	// LockDay creates the (animal, date) version row if missing, locks it for
	// the rest of the transaction and returns its current version.
	LockDay(ctx context.Context, animalID string, date time.Time) (int64, error)
	BumpDayVersion(ctx context.Context, animalID string, date time.Time) (int64, error)
	GetDayVersion(ctx context.Context, animalID string, date time.Time) (int64, error)

	GetWeight(ctx context.Context, animalID string, date time.Time) (*WeightEntry, error)
	UpsertWeight(ctx context.Context, entry *WeightEntry) error
	GetEnvironment(ctx context.Context, animalID string, date time.Time) (*EnvironmentEntry, error)
	UpsertEnvironment(ctx context.Context, entry *EnvironmentEntry) error
	GetMemo(ctx context.Context, animalID string, date time.Time) (*MemoEntry, error)
	UpsertMemo(ctx context.Context, entry *MemoEntry) error
	DeleteMemo(ctx context.Context, animalID string, date time.Time) error

	ListMeals(ctx context.Context, animalID string, date time.Time) ([]MealEntry, error)
	DeleteMeals(ctx context.Context, animalID string, date time.Time) error
	InsertMeals(ctx context.Context, entries []MealEntry) error
	ListExcretions(ctx context.Context, animalID string, date time.Time) ([]ExcretionEntry, error)
	DeleteExcretions(ctx context.Context, animalID string, date time.Time) error
	InsertExcretions(ctx context.Context, entries []ExcretionEntry) error
	ListMedications(ctx context.Context, animalID string, date time.Time) ([]MedicationEntry, error)
	DeleteMedications(ctx context.Context, animalID string, date time.Time) error
	InsertMedications(ctx context.Context, entries []MedicationEntry) error

	// Range reads are inclusive of from and ordered by date ascending.
	ListWeightsSince(ctx context.Context, animalID string, from time.Time) ([]WeightEntry, error)
	ListMealsSince(ctx context.Context, animalID string, from time.Time) ([]MealEntry, error)
	ListExcretionsSince(ctx context.Context, animalID string, from time.Time) ([]ExcretionEntry, error)
	LatestWeights(ctx context.Context, animalID string, limit int) ([]WeightEntry, error)
	CountWeightsBetween(ctx context.Context, animalID string, from, to time.Time) (int64, error)

	BeginBatch(ctx context.Context, batch *BatchRecord) (bool, *BatchRecord, error)
	CompleteBatch(ctx context.Context, batchID string, status BatchState, responseJSON []byte) error
	AbandonBatch(ctx context.Context, batchID string) error
	PurgeBatches(ctx context.Context, before time.Time) (int64, error)
}
