package records_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	animalsdomain "pet-diary/internal/domain/animals"
	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/internal/domain/validation"
	"pet-diary/internal/repository/inmemory"
	"pet-diary/pkg/clock"
)

const (
	testOwner  = "owner-1"
	testAnimal = "0b7f6a52-5d0f-4d4f-9a53-3f3c2b1f1a10"
)

var testDay = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

type fakeGuard struct {
	owners map[string]string
}

func (g fakeGuard) Authorize(ctx context.Context, ownerID, animalID string) (*animalsdomain.Animal, error) {
	owner, ok := g.owners[animalID]
	if !ok {
		return nil, animalsdomain.ErrAnimalNotFound
	}
	if owner != ownerID {
		return nil, animalsdomain.ErrForbidden
	}
	return &animalsdomain.Animal{ID: animalID, OwnerID: owner}, nil
}

type recordingInvalidator struct {
	mu      sync.Mutex
	animals []string
}

func (r *recordingInvalidator) Invalidate(animalID string) {
	r.mu.Lock()
	r.animals = append(r.animals, animalID)
	r.mu.Unlock()
}

// failingRepo fails one list insert so rollback can be observed.
type failingRepo struct {
	recordsdomain.Repository
	failExcretions bool
}

func (r *failingRepo) Transaction(ctx context.Context, fn func(recordsdomain.Repository) error) error {
	return r.Repository.Transaction(ctx, func(tx recordsdomain.Repository) error {
		return fn(&failingRepo{Repository: tx, failExcretions: r.failExcretions})
	})
}

func (r *failingRepo) InsertExcretions(ctx context.Context, entries []recordsdomain.ExcretionEntry) error {
	if r.failExcretions {
		return errors.New("insert excretions: connection reset")
	}
	return r.Repository.InsertExcretions(ctx, entries)
}

func newTestService(repo recordsdomain.Repository, invalidator recordsdomain.Invalidator) *recordsdomain.Service {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 1, 0, 0, 0, time.UTC))
	guard := fakeGuard{owners: map[string]string{testAnimal: testOwner}}
	return recordsdomain.NewService(repo, guard, clock.New(fake, time.UTC), recordsdomain.WithInvalidator(invalidator))
}

func floatPtr(value float64) *float64 {
	return &value
}

func stringPtr(value string) *string {
	return &value
}

func baseInput() recordsdomain.DailyBatchInput {
	return recordsdomain.DailyBatchInput{OwnerID: testOwner, AnimalID: testAnimal, Date: testDay}
}

func TestSaveDailyBatchReplacesListsIdempotently(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	invalidator := &recordingInvalidator{}
	service := newTestService(repo, invalidator)
	ctx := context.Background()

	meals := []recordsdomain.MealInput{
		{Time: "08:00", Content: "pellets", Amount: floatPtr(20), Unit: "g"},
		{Time: "18:00", Content: "hay"},
	}
	for i := 0; i < 2; i++ {
		input := baseInput()
		input.Meals = meals
		if _, err := service.SaveDailyBatch(ctx, input); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	set, err := service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set.Meals) != 2 {
		t.Fatalf("expected 2 meals after saving twice, got %d", len(set.Meals))
	}
	if set.Version != 2 {
		t.Fatalf("expected version 2, got %d", set.Version)
	}
	if len(invalidator.animals) != 2 || invalidator.animals[0] != testAnimal {
		t.Fatalf("expected invalidation per successful save, got %v", invalidator.animals)
	}
}

func TestSaveDailyBatchDropsOmittedListItems(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	input := baseInput()
	input.Meals = []recordsdomain.MealInput{
		{Time: "07:00", Content: "A"},
		{Time: "12:00", Content: "B"},
		{Time: "19:00", Content: "C"},
	}
	if _, err := service.SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("first save: %v", err)
	}

	input.Meals = []recordsdomain.MealInput{
		{Time: "07:00", Content: "A"},
		{Time: "19:00", Content: "C"},
	}
	if _, err := service.SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("second save: %v", err)
	}

	set, err := service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(set.Meals) != 2 || set.Meals[0].Content != "A" || set.Meals[1].Content != "C" {
		t.Fatalf("expected exactly {A, C}, got %+v", set.Meals)
	}
}

func TestSaveDailyBatchNilListIsUntouchedEmptyListClears(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	input := baseInput()
	input.Medications = []recordsdomain.MedicationInput{{Time: "09:00", Name: "vitamin"}}
	if _, err := service.SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("save: %v", err)
	}

	weightOnly := baseInput()
	weightOnly.Weight = floatPtr(310)
	if _, err := service.SaveDailyBatch(ctx, weightOnly); err != nil {
		t.Fatalf("weight save: %v", err)
	}
	set, _ := service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if len(set.Medications) != 1 {
		t.Fatalf("expected medications untouched by weight-only batch, got %d", len(set.Medications))
	}

	clearing := baseInput()
	clearing.Medications = []recordsdomain.MedicationInput{}
	result, err := service.SaveDailyBatch(ctx, clearing)
	if err != nil {
		t.Fatalf("clear save: %v", err)
	}
	if len(result.Applied) != 1 || result.Applied[0] != recordsdomain.StepMedications {
		t.Fatalf("expected only medications step applied, got %v", result.Applied)
	}
	set, _ = service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if len(set.Medications) != 0 {
		t.Fatalf("expected medications cleared, got %d", len(set.Medications))
	}
	if set.Weight == nil || set.Weight.WeightGrams != 310 {
		t.Fatalf("expected weight kept, got %+v", set.Weight)
	}
}

func TestSaveDailyBatchMergesEnvironmentFields(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	first := baseInput()
	first.Temperature = floatPtr(24.5)
	if _, err := service.SaveDailyBatch(ctx, first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	set, _ := service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if set.Environment == nil || set.Environment.HumidityPct != nil {
		t.Fatalf("expected new row with temperature only, got %+v", set.Environment)
	}

	second := baseInput()
	second.Humidity = floatPtr(55)
	if _, err := service.SaveDailyBatch(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}
	set, _ = service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	env := set.Environment
	if env == nil || env.TemperatureC == nil || *env.TemperatureC != 24.5 || env.HumidityPct == nil || *env.HumidityPct != 55 {
		t.Fatalf("expected merged environment, got %+v", env)
	}
}

func TestSaveDailyBatchMemoUpsertAndDelete(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	input := baseInput()
	input.Memo = stringPtr("  ate well  ")
	if _, err := service.SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("save: %v", err)
	}
	set, _ := service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if set.Memo == nil || set.Memo.Body != "ate well" {
		t.Fatalf("expected trimmed memo, got %+v", set.Memo)
	}

	input.Memo = stringPtr("")
	if _, err := service.SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("clear memo: %v", err)
	}
	set, _ = service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if set.Memo != nil {
		t.Fatalf("expected memo removed, got %+v", set.Memo)
	}
}

func TestSaveDailyBatchFailureCommitsNothing(t *testing.T) {
	base := inmemory.NewRecordsRepository()
	repo := &failingRepo{Repository: base, failExcretions: true}
	invalidator := &recordingInvalidator{}
	service := newTestService(repo, invalidator)
	ctx := context.Background()

	input := baseInput()
	input.Weight = floatPtr(300)
	input.Meals = []recordsdomain.MealInput{{Time: "08:00", Content: "pellets"}}
	input.Excretions = []recordsdomain.ExcretionInput{{Time: "09:00", Type: recordsdomain.ExcretionStool, Condition: recordsdomain.ConditionNormal}}

	_, err := service.SaveDailyBatch(ctx, input)
	var batchErr *recordsdomain.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if batchErr.Step != recordsdomain.StepExcretions {
		t.Fatalf("expected failure at excretions, got %s", batchErr.Step)
	}
	if batchErr.Committed == nil || len(batchErr.Committed) != 0 {
		t.Fatalf("expected empty committed list, got %v", batchErr.Committed)
	}

	set, err := service.GetDailyRecords(ctx, testOwner, testAnimal, testDay)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if set.Weight != nil || len(set.Meals) != 0 || set.Version != 0 {
		t.Fatalf("expected nothing persisted, got weight=%+v meals=%d version=%d", set.Weight, len(set.Meals), set.Version)
	}
	if len(invalidator.animals) != 0 {
		t.Fatalf("expected no invalidation on failure")
	}
}

func TestSaveDailyBatchRejectsStaleVersion(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	input := baseInput()
	input.Weight = floatPtr(300)
	result, err := service.SaveDailyBatch(ctx, input)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	stale := int64(0)
	input.ExpectedVersion = &stale
	if _, err := service.SaveDailyBatch(ctx, input); !errors.Is(err, recordsdomain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	current := result.Version
	input.ExpectedVersion = &current
	if _, err := service.SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("expected save with current version to pass, got %v", err)
	}
}

func TestSaveDailyBatchReplaysIdempotencyKey(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	invalidator := &recordingInvalidator{}
	service := newTestService(repo, invalidator)
	ctx := context.Background()

	input := baseInput()
	input.IdempotencyKey = "retry-key-0001"
	input.Weight = floatPtr(300)

	first, err := service.SaveDailyBatch(ctx, input)
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := service.SaveDailyBatch(ctx, input)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !second.Replayed || second.Version != first.Version {
		t.Fatalf("expected replayed result with version %d, got %+v", first.Version, second)
	}
	if len(invalidator.animals) != 1 {
		t.Fatalf("expected replay not to write again, got %d invalidations", len(invalidator.animals))
	}

	input.Weight = floatPtr(305)
	if _, err := service.SaveDailyBatch(ctx, input); !errors.Is(err, recordsdomain.ErrIdempotencyKeyPayloadMismatch) {
		t.Fatalf("expected payload mismatch, got %v", err)
	}
}

func TestSaveDailyBatchFailedKeyCanBeRetried(t *testing.T) {
	base := inmemory.NewRecordsRepository()
	failing := &failingRepo{Repository: base, failExcretions: true}
	ctx := context.Background()

	input := baseInput()
	input.IdempotencyKey = "retry-key-0002"
	input.Excretions = []recordsdomain.ExcretionInput{{Time: "09:00", Type: recordsdomain.ExcretionUrine, Condition: recordsdomain.ConditionNormal}}

	if _, err := newTestService(failing, nil).SaveDailyBatch(ctx, input); err == nil {
		t.Fatalf("expected first attempt to fail")
	}
	if _, err := newTestService(base, nil).SaveDailyBatch(ctx, input); err != nil {
		t.Fatalf("expected retry with same key to succeed, got %v", err)
	}
}

func TestSaveDailyBatchValidationAndOwnership(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	abnormal := baseInput()
	abnormal.Excretions = []recordsdomain.ExcretionInput{{Time: "09:00", Type: recordsdomain.ExcretionStool, Condition: recordsdomain.ConditionAbnormal}}
	_, err := service.SaveDailyBatch(ctx, abnormal)
	if verr, ok := validation.As(err); !ok || verr.Field != "excretions[0].notes" {
		t.Fatalf("expected notes validation error, got %v", err)
	}

	abnormal.Excretions[0].Notes = "soft, some blood"
	if _, err := service.SaveDailyBatch(ctx, abnormal); err != nil {
		t.Fatalf("expected abnormal excretion with notes to pass, got %v", err)
	}

	foreign := baseInput()
	foreign.OwnerID = "owner-2"
	foreign.Weight = floatPtr(300)
	if _, err := service.SaveDailyBatch(ctx, foreign); !errors.Is(err, animalsdomain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGetDailyRecordsAbsentSingletonsAreNil(t *testing.T) {
	service := newTestService(inmemory.NewRecordsRepository(), nil)

	set, err := service.GetDailyRecords(context.Background(), testOwner, testAnimal, testDay)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if set.Weight != nil || set.Environment != nil || set.Memo != nil {
		t.Fatalf("expected nil singletons, got %+v", set)
	}
	if set.Meals == nil || set.Excretions == nil || set.Medications == nil {
		t.Fatalf("expected empty non-nil lists")
	}
}

func TestGetWeightHistoryUsesLocalToday(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	// 2024-05-09 20:00 UTC is already 2024-05-10 in Tokyo.
	fake := clockwork.NewFakeClockAt(time.Date(2024, 5, 9, 20, 0, 0, 0, time.UTC))
	tokyo := time.FixedZone("JST", 9*60*60)
	guard := fakeGuard{owners: map[string]string{testAnimal: testOwner}}
	service := recordsdomain.NewService(repo, guard, clock.New(fake, tokyo))
	ctx := context.Background()

	for _, day := range []time.Time{
		time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	} {
		input := recordsdomain.DailyBatchInput{OwnerID: testOwner, AnimalID: testAnimal, Date: day, Weight: floatPtr(300)}
		if _, err := service.SaveDailyBatch(ctx, input); err != nil {
			t.Fatalf("save %s: %v", day, err)
		}
	}

	weights, err := service.GetWeightHistory(ctx, testOwner, testAnimal, recordsdomain.WeightRange30d)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(weights) != 2 {
		t.Fatalf("expected 2 weights since 2024-04-10, got %d", len(weights))
	}
	if !weights[0].Date.Before(weights[1].Date) {
		t.Fatalf("expected ascending order")
	}
}

func TestGetRecentRecordsIsSparseAndDescending(t *testing.T) {
	repo := inmemory.NewRecordsRepository()
	service := newTestService(repo, nil)
	ctx := context.Background()

	older := baseInput()
	older.Date = testDay.AddDate(0, 0, -3)
	older.Weight = floatPtr(300)
	recent := baseInput()
	recent.Date = testDay.AddDate(0, 0, -1)
	recent.Excretions = []recordsdomain.ExcretionInput{{Time: "07:30", Type: recordsdomain.ExcretionUrine, Condition: recordsdomain.ConditionNormal}}
	outside := baseInput()
	outside.Date = testDay.AddDate(0, 0, -10)
	outside.Meals = []recordsdomain.MealInput{{Time: "08:00", Content: "hay"}}

	for _, input := range []recordsdomain.DailyBatchInput{older, recent, outside} {
		if _, err := service.SaveDailyBatch(ctx, input); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	days, err := service.GetRecentRecords(ctx, testOwner, testAnimal, 7)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 non-empty days, got %d", len(days))
	}
	if !days[0].Date.Equal(recent.Date) || !days[1].Date.Equal(older.Date) {
		t.Fatalf("expected descending dates, got %s then %s", days[0].Date, days[1].Date)
	}
	if days[1].Weight == nil || len(days[0].Excretions) != 1 {
		t.Fatalf("unexpected grouping %+v", days)
	}

	if _, err := service.GetRecentRecords(ctx, testOwner, testAnimal, 91); err == nil {
		t.Fatalf("expected window above 90 days rejected")
	}
}
