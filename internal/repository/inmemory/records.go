package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/pkg/clock"
)

type dayKey struct {
	animalID string
	date     string
}

func keyOf(animalID string, date time.Time) dayKey {
	return dayKey{animalID: animalID, date: clock.FormatDate(date)}
}

type recordState struct {
	versions     map[dayKey]int64
	weights      map[dayKey]recordsdomain.WeightEntry
	environments map[dayKey]recordsdomain.EnvironmentEntry
	memos        map[dayKey]recordsdomain.MemoEntry
	meals        map[dayKey][]recordsdomain.MealEntry
	excretions   map[dayKey][]recordsdomain.ExcretionEntry
	medications  map[dayKey][]recordsdomain.MedicationEntry
	batches      map[string]recordsdomain.BatchRecord
}

func newRecordState() *recordState {
	return &recordState{
		versions:     make(map[dayKey]int64),
		weights:      make(map[dayKey]recordsdomain.WeightEntry),
		environments: make(map[dayKey]recordsdomain.EnvironmentEntry),
		memos:        make(map[dayKey]recordsdomain.MemoEntry),
		meals:        make(map[dayKey][]recordsdomain.MealEntry),
		excretions:   make(map[dayKey][]recordsdomain.ExcretionEntry),
		medications:  make(map[dayKey][]recordsdomain.MedicationEntry),
		batches:      make(map[string]recordsdomain.BatchRecord),
	}
}

func (s *recordState) clone() *recordState {
	copied := newRecordState()
	for k, v := range s.versions {
		copied.versions[k] = v
	}
	for k, v := range s.weights {
		copied.weights[k] = v
	}
	for k, v := range s.environments {
		copied.environments[k] = v
	}
	for k, v := range s.memos {
		copied.memos[k] = v
	}
	for k, v := range s.meals {
		copied.meals[k] = append([]recordsdomain.MealEntry(nil), v...)
	}
	for k, v := range s.excretions {
		copied.excretions[k] = append([]recordsdomain.ExcretionEntry(nil), v...)
	}
	for k, v := range s.medications {
		copied.medications[k] = append([]recordsdomain.MedicationEntry(nil), v...)
	}
	for k, v := range s.batches {
		copied.batches[k] = v
	}
	return copied
}

// RecordsRepository keeps daily records in process memory. Transactions run
// against a copy of the state that replaces it only on success; writers are
// serialised, which stands in for the day row lock.
type RecordsRepository struct {
	writeMu *sync.Mutex
	mu      sync.RWMutex
	state   *recordState
	inTx    bool
	now     func() time.Time
}

func NewRecordsRepository() *RecordsRepository {
	return &RecordsRepository{
		writeMu: &sync.Mutex{},
		state:   newRecordState(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *RecordsRepository) Transaction(ctx context.Context, fn func(recordsdomain.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.RLock()
	draft := r.state.clone()
	r.mu.RUnlock()

	tx := &RecordsRepository{writeMu: r.writeMu, state: draft, inTx: true, now: r.now}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.state = draft
	r.mu.Unlock()
	return nil
}

// DropAnimal removes every record of the animal, mirroring the FK cascade.
func (r *RecordsRepository) DropAnimal(animalID string) {
	_ = r.write(func(s *recordState) error {
		for key := range s.versions {
			if key.animalID == animalID {
				delete(s.versions, key)
			}
		}
		for key := range s.weights {
			if key.animalID == animalID {
				delete(s.weights, key)
			}
		}
		for key := range s.environments {
			if key.animalID == animalID {
				delete(s.environments, key)
			}
		}
		for key := range s.memos {
			if key.animalID == animalID {
				delete(s.memos, key)
			}
		}
		for key := range s.meals {
			if key.animalID == animalID {
				delete(s.meals, key)
			}
		}
		for key := range s.excretions {
			if key.animalID == animalID {
				delete(s.excretions, key)
			}
		}
		for key := range s.medications {
			if key.animalID == animalID {
				delete(s.medications, key)
			}
		}
		return nil
	})
}

func (r *RecordsRepository) read(fn func(s *recordState)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.state)
}

func (r *RecordsRepository) write(fn func(s *recordState) error) error {
	if !r.inTx {
		r.writeMu.Lock()
		defer r.writeMu.Unlock()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.state)
}

func (r *RecordsRepository) LockDay(ctx context.Context, animalID string, date time.Time) (int64, error) {
	var version int64
	err := r.write(func(s *recordState) error {
		key := keyOf(animalID, date)
		if _, ok := s.versions[key]; !ok {
			s.versions[key] = 0
		}
		version = s.versions[key]
		return nil
	})
	return version, err
}

func (r *RecordsRepository) BumpDayVersion(ctx context.Context, animalID string, date time.Time) (int64, error) {
	var version int64
	err := r.write(func(s *recordState) error {
		key := keyOf(animalID, date)
		s.versions[key]++
		version = s.versions[key]
		return nil
	})
	return version, err
}

func (r *RecordsRepository) GetDayVersion(ctx context.Context, animalID string, date time.Time) (int64, error) {
	var version int64
	r.read(func(s *recordState) {
		version = s.versions[keyOf(animalID, date)]
	})
	return version, nil
}

func (r *RecordsRepository) GetWeight(ctx context.Context, animalID string, date time.Time) (*recordsdomain.WeightEntry, error) {
	var result *recordsdomain.WeightEntry
	r.read(func(s *recordState) {
		if entry, ok := s.weights[keyOf(animalID, date)]; ok {
			result = &entry
		}
	})
	return result, nil
}

func (r *RecordsRepository) UpsertWeight(ctx context.Context, entry *recordsdomain.WeightEntry) error {
	return r.write(func(s *recordState) error {
		entry.UpdatedAt = r.now()
		s.weights[keyOf(entry.AnimalID, entry.Date)] = *entry
		return nil
	})
}

func (r *RecordsRepository) GetEnvironment(ctx context.Context, animalID string, date time.Time) (*recordsdomain.EnvironmentEntry, error) {
	var result *recordsdomain.EnvironmentEntry
	r.read(func(s *recordState) {
		if entry, ok := s.environments[keyOf(animalID, date)]; ok {
			result = &entry
		}
	})
	return result, nil
}

func (r *RecordsRepository) UpsertEnvironment(ctx context.Context, entry *recordsdomain.EnvironmentEntry) error {
	return r.write(func(s *recordState) error {
		key := keyOf(entry.AnimalID, entry.Date)
		if existing, ok := s.environments[key]; ok {
			entry.ID = existing.ID
		}
		entry.UpdatedAt = r.now()
		s.environments[key] = *entry
		return nil
	})
}

func (r *RecordsRepository) GetMemo(ctx context.Context, animalID string, date time.Time) (*recordsdomain.MemoEntry, error) {
	var result *recordsdomain.MemoEntry
	r.read(func(s *recordState) {
		if entry, ok := s.memos[keyOf(animalID, date)]; ok {
			result = &entry
		}
	})
	return result, nil
}

func (r *RecordsRepository) UpsertMemo(ctx context.Context, entry *recordsdomain.MemoEntry) error {
	return r.write(func(s *recordState) error {
		key := keyOf(entry.AnimalID, entry.Date)
		if existing, ok := s.memos[key]; ok {
			entry.ID = existing.ID
		}
		entry.UpdatedAt = r.now()
		s.memos[key] = *entry
		return nil
	})
}

func (r *RecordsRepository) DeleteMemo(ctx context.Context, animalID string, date time.Time) error {
	return r.write(func(s *recordState) error {
		delete(s.memos, keyOf(animalID, date))
		return nil
	})
}

func (r *RecordsRepository) ListMeals(ctx context.Context, animalID string, date time.Time) ([]recordsdomain.MealEntry, error) {
	var result []recordsdomain.MealEntry
	r.read(func(s *recordState) {
		result = append([]recordsdomain.MealEntry{}, s.meals[keyOf(animalID, date)]...)
	})
	return result, nil
}

func (r *RecordsRepository) DeleteMeals(ctx context.Context, animalID string, date time.Time) error {
	return r.write(func(s *recordState) error {
		delete(s.meals, keyOf(animalID, date))
		return nil
	})
}

func (r *RecordsRepository) InsertMeals(ctx context.Context, entries []recordsdomain.MealEntry) error {
	return r.write(func(s *recordState) error {
		for _, entry := range entries {
			key := keyOf(entry.AnimalID, entry.Date)
			s.meals[key] = append(s.meals[key], entry)
		}
		return nil
	})
}

func (r *RecordsRepository) ListExcretions(ctx context.Context, animalID string, date time.Time) ([]recordsdomain.ExcretionEntry, error) {
	var result []recordsdomain.ExcretionEntry
	r.read(func(s *recordState) {
		result = append([]recordsdomain.ExcretionEntry{}, s.excretions[keyOf(animalID, date)]...)
	})
	return result, nil
}

func (r *RecordsRepository) DeleteExcretions(ctx context.Context, animalID string, date time.Time) error {
	return r.write(func(s *recordState) error {
		delete(s.excretions, keyOf(animalID, date))
		return nil
	})
}

func (r *RecordsRepository) InsertExcretions(ctx context.Context, entries []recordsdomain.ExcretionEntry) error {
	return r.write(func(s *recordState) error {
		for _, entry := range entries {
			key := keyOf(entry.AnimalID, entry.Date)
			s.excretions[key] = append(s.excretions[key], entry)
		}
		return nil
	})
}

func (r *RecordsRepository) ListMedications(ctx context.Context, animalID string, date time.Time) ([]recordsdomain.MedicationEntry, error) {
	var result []recordsdomain.MedicationEntry
	r.read(func(s *recordState) {
		result = append([]recordsdomain.MedicationEntry{}, s.medications[keyOf(animalID, date)]...)
	})
	return result, nil
}

func (r *RecordsRepository) DeleteMedications(ctx context.Context, animalID string, date time.Time) error {
	return r.write(func(s *recordState) error {
		delete(s.medications, keyOf(animalID, date))
		return nil
	})
}

func (r *RecordsRepository) InsertMedications(ctx context.Context, entries []recordsdomain.MedicationEntry) error {
	return r.write(func(s *recordState) error {
		for _, entry := range entries {
			key := keyOf(entry.AnimalID, entry.Date)
			s.medications[key] = append(s.medications[key], entry)
		}
		return nil
	})
}

func (r *RecordsRepository) ListWeightsSince(ctx context.Context, animalID string, from time.Time) ([]recordsdomain.WeightEntry, error) {
	fromKey := clock.FormatDate(from)
	var result []recordsdomain.WeightEntry
	r.read(func(s *recordState) {
		for key, entry := range s.weights {
			if key.animalID == animalID && key.date >= fromKey {
				result = append(result, entry)
			}
		}
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (r *RecordsRepository) ListMealsSince(ctx context.Context, animalID string, from time.Time) ([]recordsdomain.MealEntry, error) {
	fromKey := clock.FormatDate(from)
	var result []recordsdomain.MealEntry
	r.read(func(s *recordState) {
		for key, entries := range s.meals {
			if key.animalID == animalID && key.date >= fromKey {
				result = append(result, entries...)
			}
		}
	})
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Position < result[j].Position
	})
	return result, nil
}

func (r *RecordsRepository) ListExcretionsSince(ctx context.Context, animalID string, from time.Time) ([]recordsdomain.ExcretionEntry, error) {
	fromKey := clock.FormatDate(from)
	var result []recordsdomain.ExcretionEntry
	r.read(func(s *recordState) {
		for key, entries := range s.excretions {
			if key.animalID == animalID && key.date >= fromKey {
				result = append(result, entries...)
			}
		}
	})
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Position < result[j].Position
	})
	return result, nil
}

func (r *RecordsRepository) LatestWeights(ctx context.Context, animalID string, limit int) ([]recordsdomain.WeightEntry, error) {
	all, err := r.ListWeightsSince(ctx, animalID, time.Time{})
	if err != nil {
		return nil, err
	}
	result := make([]recordsdomain.WeightEntry, 0, limit)
	for i := len(all) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, all[i])
	}
	return result, nil
}

func (r *RecordsRepository) CountWeightsBetween(ctx context.Context, animalID string, from, to time.Time) (int64, error) {
	fromKey := clock.FormatDate(from)
	toKey := clock.FormatDate(to)
	var count int64
	r.read(func(s *recordState) {
		for key := range s.weights {
			if key.animalID == animalID && key.date >= fromKey && key.date <= toKey {
				count++
			}
		}
	})
	return count, nil
}

func (r *RecordsRepository) BeginBatch(ctx context.Context, batch *recordsdomain.BatchRecord) (bool, *recordsdomain.BatchRecord, error) {
	var existing *recordsdomain.BatchRecord
	err := r.write(func(s *recordState) error {
		for _, record := range s.batches {
			if record.OwnerID == batch.OwnerID && record.IdempotencyKey == batch.IdempotencyKey {
				copied := record
				existing = &copied
				return nil
			}
		}
		now := r.now()
		batch.CreatedAt = now
		batch.UpdatedAt = now
		s.batches[batch.ID] = *batch
		return nil
	})
	if err != nil {
		return false, nil, err
	}
	if existing != nil {
		return false, existing, nil
	}
	return true, nil, nil
}

func (r *RecordsRepository) CompleteBatch(ctx context.Context, batchID string, status recordsdomain.BatchState, responseJSON []byte) error {
	return r.write(func(s *recordState) error {
		record, ok := s.batches[batchID]
		if !ok {
			return nil
		}
		record.Status = status
		record.ResponseJSON = append([]byte(nil), responseJSON...)
		record.UpdatedAt = r.now()
		s.batches[batchID] = record
		return nil
	})
}

func (r *RecordsRepository) AbandonBatch(ctx context.Context, batchID string) error {
	return r.write(func(s *recordState) error {
		delete(s.batches, batchID)
		return nil
	})
}

func (r *RecordsRepository) PurgeBatches(ctx context.Context, before time.Time) (int64, error) {
	var purged int64
	err := r.write(func(s *recordState) error {
		for id, record := range s.batches {
			if record.UpdatedAt.Before(before) {
				delete(s.batches, id)
				purged++
			}
		}
		return nil
	})
	return purged, err
}
