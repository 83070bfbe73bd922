package records

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pet-diary/internal/domain/validation"
	"pet-diary/pkg/clock"
)

type Service struct {
	repo        Repository
	animals     AnimalGuard
	clock       *clock.Clock
	invalidator Invalidator
	metrics     Metrics
}

func NewService(repo Repository, animals AnimalGuard, clk *clock.Clock, opts ...Option) *Service {
	if clk == nil {
		clk = clock.New(nil, nil)
	}
	s := &Service{
		repo:        repo,
		animals:     animals,
		clock:       clk,
		invalidator: noopInvalidator{},
		metrics:     noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type batchStep struct {
	step Step
	run  func(ctx context.Context, tx Repository) error
}

// SaveDailyBatch applies one composite day of care in a single transaction,
// serialised per (animal, date) by the day's version row.
func (s *Service) SaveDailyBatch(ctx context.Context, input DailyBatchInput) (*BatchResult, error) {
	started := time.Now()
	input = normalizeBatchInput(input)
	input.Date = clock.DateOf(input.Date)

	result, err := s.saveDailyBatch(ctx, input)
	s.metrics.ObserveBatch(batchOutcome(result, err), failedStep(err), time.Since(started))
	return result, err
}

func (s *Service) saveDailyBatch(ctx context.Context, input DailyBatchInput) (*BatchResult, error) {
	if err := validateBatch(input); err != nil {
		return nil, err
	}
	if _, err := s.animals.Authorize(ctx, input.OwnerID, input.AnimalID); err != nil {
		return nil, err
	}

	var batch *BatchRecord
	if input.IdempotencyKey != "" {
		requestHash, err := hashBatch(input)
		if err != nil {
			return nil, err
		}

		batch = &BatchRecord{
			ID:             uuid.NewString(),
			OwnerID:        input.OwnerID,
			IdempotencyKey: input.IdempotencyKey,
			RequestHash:    requestHash,
			Status:         BatchStateProcessing,
		}
		created, existing, err := s.repo.BeginBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !created {
			return replayBatch(existing, requestHash)
		}
	}

	result, err := s.applyBatch(ctx, input, batch)
	if err != nil {
		if batch != nil {
			// Free the key so the client can retry; nothing from the batch persisted.
			_ = s.repo.AbandonBatch(context.WithoutCancel(ctx), batch.ID)
		}
		return nil, err
	}

	s.invalidator.Invalidate(input.AnimalID)
	return result, nil
}

func (s *Service) applyBatch(ctx context.Context, input DailyBatchInput, batch *BatchRecord) (*BatchResult, error) {
	steps := s.planBatch(input)
	result := BatchResult{Applied: make([]Step, 0, len(steps))}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.LockDay(ctx, input.AnimalID, input.Date)
		if err != nil {
			return &BatchError{Step: StepLock, Err: err}
		}
		if input.ExpectedVersion != nil && *input.ExpectedVersion != current {
			return fmt.Errorf("%w: expected %d, current %d", ErrVersionConflict, *input.ExpectedVersion, current)
		}

		for _, step := range steps {
			if err := step.run(ctx, tx); err != nil {
				return &BatchError{Step: step.step, Err: err}
			}
			result.Applied = append(result.Applied, step.step)
		}

		version, err := tx.BumpDayVersion(ctx, input.AnimalID, input.Date)
		if err != nil {
			return &BatchError{Step: StepVersion, Err: err}
		}
		result.Version = version

		if batch != nil {
			encoded, err := json.Marshal(result)
			if err != nil {
				return &BatchError{Step: StepCommit, Err: err}
			}
			if err := tx.CompleteBatch(ctx, batch.ID, BatchStateCompleted, encoded); err != nil {
				return &BatchError{Step: StepCommit, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
		var batchErr *BatchError
		if !errors.As(err, &batchErr) {
			batchErr = &BatchError{Step: StepCommit, Err: err}
		}
		batchErr.Committed = []Step{}
		return nil, batchErr
	}

	return &result, nil
}

// planBatch lists the sub-writes the payload asks for, in the fixed order
// weight, environment, memo, meals, excretions, medications.
func (s *Service) planBatch(input DailyBatchInput) []batchStep {
	animalID := input.AnimalID
	date := input.Date
	var steps []batchStep

	if input.Weight != nil {
		steps = append(steps, batchStep{step: StepWeight, run: func(ctx context.Context, tx Repository) error {
			return tx.UpsertWeight(ctx, &WeightEntry{
				ID:          uuid.NewString(),
				AnimalID:    animalID,
				Date:        date,
				WeightGrams: *input.Weight,
			})
		}})
	}

	if input.Temperature != nil || input.Humidity != nil {
		steps = append(steps, batchStep{step: StepEnvironment, run: func(ctx context.Context, tx Repository) error {
			existing, err := tx.GetEnvironment(ctx, animalID, date)
			if err != nil {
				return err
			}
			entry := EnvironmentEntry{ID: uuid.NewString(), AnimalID: animalID, Date: date}
			if existing != nil {
				entry = *existing
			}
			if input.Temperature != nil {
				entry.TemperatureC = float64Ptr(*input.Temperature)
			}
			if input.Humidity != nil {
				entry.HumidityPct = float64Ptr(*input.Humidity)
			}
			return tx.UpsertEnvironment(ctx, &entry)
		}})
	}

	if input.Memo != nil {
		steps = append(steps, batchStep{step: StepMemo, run: func(ctx context.Context, tx Repository) error {
			if *input.Memo == "" {
				return tx.DeleteMemo(ctx, animalID, date)
			}
			return tx.UpsertMemo(ctx, &MemoEntry{
				ID:       uuid.NewString(),
				AnimalID: animalID,
				Date:     date,
				Body:     *input.Memo,
			})
		}})
	}

	if input.Meals != nil {
		steps = append(steps, batchStep{step: StepMeals, run: func(ctx context.Context, tx Repository) error {
			if err := tx.DeleteMeals(ctx, animalID, date); err != nil {
				return err
			}
			if len(input.Meals) == 0 {
				return nil
			}
			entries := make([]MealEntry, 0, len(input.Meals))
			for i, meal := range input.Meals {
				entries = append(entries, MealEntry{
					ID:       uuid.NewString(),
					AnimalID: animalID,
					Date:     date,
					Time:     meal.Time,
					Content:  meal.Content,
					Amount:   meal.Amount,
					Unit:     meal.Unit,
					Position: i,
				})
			}
			return tx.InsertMeals(ctx, entries)
		}})
	}

	if input.Excretions != nil {
		steps = append(steps, batchStep{step: StepExcretions, run: func(ctx context.Context, tx Repository) error {
			if err := tx.DeleteExcretions(ctx, animalID, date); err != nil {
				return err
			}
			if len(input.Excretions) == 0 {
				return nil
			}
			entries := make([]ExcretionEntry, 0, len(input.Excretions))
			for i, excretion := range input.Excretions {
				entries = append(entries, ExcretionEntry{
					ID:        uuid.NewString(),
					AnimalID:  animalID,
					Date:      date,
					Time:      excretion.Time,
					Type:      excretion.Type,
					Condition: excretion.Condition,
					Notes:     excretion.Notes,
					Position:  i,
				})
			}
			return tx.InsertExcretions(ctx, entries)
		}})
	}

	if input.Medications != nil {
		steps = append(steps, batchStep{step: StepMedications, run: func(ctx context.Context, tx Repository) error {
			if err := tx.DeleteMedications(ctx, animalID, date); err != nil {
				return err
			}
			if len(input.Medications) == 0 {
				return nil
			}
			entries := make([]MedicationEntry, 0, len(input.Medications))
			for i, medication := range input.Medications {
				entries = append(entries, MedicationEntry{
					ID:       uuid.NewString(),
					AnimalID: animalID,
					Date:     date,
					Time:     medication.Time,
					Name:     medication.Name,
					Position: i,
				})
			}
			return tx.InsertMedications(ctx, entries)
		}})
	}

	return steps
}

// GetDailyRecords reads the six collections of one day concurrently.
func (s *Service) GetDailyRecords(ctx context.Context, ownerID, animalID string, date time.Time) (*DailyRecordSet, error) {
	if _, err := s.animals.Authorize(ctx, ownerID, animalID); err != nil {
		return nil, err
	}

	date = clock.DateOf(date)
	set := DailyRecordSet{AnimalID: animalID, Date: date}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		version, err := s.repo.GetDayVersion(groupCtx, animalID, date)
		set.Version = version
		return err
	})
	group.Go(func() error {
		weight, err := s.repo.GetWeight(groupCtx, animalID, date)
		set.Weight = weight
		return err
	})
	group.Go(func() error {
		environment, err := s.repo.GetEnvironment(groupCtx, animalID, date)
		set.Environment = environment
		return err
	})
	group.Go(func() error {
		memo, err := s.repo.GetMemo(groupCtx, animalID, date)
		set.Memo = memo
		return err
	})
	group.Go(func() error {
		meals, err := s.repo.ListMeals(groupCtx, animalID, date)
		set.Meals = meals
		return err
	})
	group.Go(func() error {
		excretions, err := s.repo.ListExcretions(groupCtx, animalID, date)
		set.Excretions = excretions
		return err
	})
	group.Go(func() error {
		medications, err := s.repo.ListMedications(groupCtx, animalID, date)
		set.Medications = medications
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if set.Meals == nil {
		set.Meals = []MealEntry{}
	}
	if set.Excretions == nil {
		set.Excretions = []ExcretionEntry{}
	}
	if set.Medications == nil {
		set.Medications = []MedicationEntry{}
	}

	return &set, nil
}

// PurgeBatchRequests removes idempotency records last touched before cutoff.
func (s *Service) PurgeBatchRequests(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repo.PurgeBatches(ctx, cutoff)
}

func replayBatch(existing *BatchRecord, requestHash string) (*BatchResult, error) {
	if existing == nil {
		return nil, ErrBatchInProgress
	}
	if existing.RequestHash != requestHash {
		return nil, ErrIdempotencyKeyPayloadMismatch
	}
	if existing.Status == BatchStateCompleted && len(existing.ResponseJSON) > 0 {
		var cached BatchResult
		if err := json.Unmarshal(existing.ResponseJSON, &cached); err == nil {
			cached.Replayed = true
			return &cached, nil
		}
	}
	return nil, ErrBatchInProgress
}

func hashBatch(input DailyBatchInput) (string, error) {
	value := struct {
		AnimalID        string            `json:"animal_id"`
		Date            string            `json:"date"`
		ExpectedVersion *int64            `json:"expected_version"`
		Weight          *float64          `json:"weight"`
		Temperature     *float64          `json:"temperature"`
		Humidity        *float64          `json:"humidity"`
		Memo            *string           `json:"memo"`
		Meals           []MealInput       `json:"meals"`
		Excretions      []ExcretionInput  `json:"excretions"`
		Medications     []MedicationInput `json:"medications"`
	}{
		AnimalID:        input.AnimalID,
		Date:            clock.FormatDate(input.Date),
		ExpectedVersion: input.ExpectedVersion,
		Weight:          input.Weight,
		Temperature:     input.Temperature,
		Humidity:        input.Humidity,
		Memo:            input.Memo,
		Meals:           input.Meals,
		Excretions:      input.Excretions,
		Medications:     input.Medications,
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

func batchOutcome(result *BatchResult, err error) BatchOutcome {
	switch {
	case err == nil && result != nil && result.Replayed:
		return OutcomeReplayed
	case err == nil:
		return OutcomeApplied
	case isValidation(err):
		return OutcomeInvalid
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrIdempotencyKeyPayloadMismatch), errors.Is(err, ErrBatchInProgress):
		return OutcomeConflict
	default:
		return OutcomeFailed
	}
}

func failedStep(err error) Step {
	var batchErr *BatchError
	if errors.As(err, &batchErr) {
		return batchErr.Step
	}
	return ""
}

func isValidation(err error) bool {
	_, ok := validation.As(err)
	return ok
}

func float64Ptr(value float64) *float64 {
	return &value
}
