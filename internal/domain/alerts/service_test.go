package alerts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	animalsdomain "pet-diary/internal/domain/animals"
	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/pkg/clock"
)

type fakeWeights struct {
	mu         sync.Mutex
	weights    []recordsdomain.WeightEntry
	countCalls int
	lastFrom   time.Time
	lastTo     time.Time
	// afterCount runs once the window count has been read, outside the lock.
	afterCount func()
}

func (f *fakeWeights) LatestWeights(ctx context.Context, animalID string, limit int) ([]recordsdomain.WeightEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []recordsdomain.WeightEntry
	for i := len(f.weights) - 1; i >= 0 && len(result) < limit; i-- {
		if f.weights[i].AnimalID == animalID {
			result = append(result, f.weights[i])
		}
	}
	return result, nil
}

func (f *fakeWeights) CountWeightsBetween(ctx context.Context, animalID string, from, to time.Time) (int64, error) {
	f.mu.Lock()
	f.countCalls++
	f.lastFrom, f.lastTo = from, to
	var count int64
	for _, weight := range f.weights {
		if weight.AnimalID == animalID && !weight.Date.Before(from) && !weight.Date.After(to) {
			count++
		}
	}
	hook := f.afterCount
	f.afterCount = nil
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	return count, nil
}

func (f *fakeWeights) setWeight(i int, entry recordsdomain.WeightEntry) {
	f.mu.Lock()
	f.weights[i] = entry
	f.mu.Unlock()
}

type fakeAnimals struct {
	animals []animalsdomain.Animal
}

func (f fakeAnimals) Authorize(ctx context.Context, ownerID, animalID string) (*animalsdomain.Animal, error) {
	for _, animal := range f.animals {
		if animal.ID == animalID {
			if animal.OwnerID != ownerID {
				return nil, animalsdomain.ErrForbidden
			}
			return &animal, nil
		}
	}
	return nil, animalsdomain.ErrAnimalNotFound
}

func (f fakeAnimals) ListAnimals(ctx context.Context, ownerID string) ([]animalsdomain.Animal, error) {
	var result []animalsdomain.Animal
	for _, animal := range f.animals {
		if animal.OwnerID == ownerID {
			result = append(result, animal)
		}
	}
	return result, nil
}

type mapCache struct {
	entries map[string]CacheEntry
}

func (c *mapCache) Get(animalID string) (CacheEntry, bool) {
	entry, ok := c.entries[animalID]
	return entry, ok
}

func (c *mapCache) Set(animalID string, entry CacheEntry, ttl time.Duration) {
	c.entries[animalID] = entry
}

func (c *mapCache) Delete(animalID string) {
	delete(c.entries, animalID)
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func newTestService(weights *fakeWeights, cache Cache) (*Service, *clockwork.FakeClock) {
	fake := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC))
	animals := fakeAnimals{animals: []animalsdomain.Animal{
		{ID: "a1", OwnerID: "owner-1", Name: "Mochi"},
		{ID: "a2", OwnerID: "owner-1", Name: "Kuro"},
		{ID: "a3", OwnerID: "owner-2", Name: "Other"},
	}}
	return NewService(weights, animals, clock.New(fake, time.UTC), cache, nil, Config{CacheTTL: time.Minute}), fake
}

func TestForAnimalTrailingWindowIncludesToday(t *testing.T) {
	weights := &fakeWeights{weights: []recordsdomain.WeightEntry{
		{ID: "w1", AnimalID: "a1", Date: day(7), WeightGrams: 300},
	}}
	service, _ := newTestService(weights, nil)

	alerts, err := service.ForAnimal(context.Background(), "owner-1", "a1")
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != TypeNoRecord {
		t.Fatalf("expected no_record for weight 3 days ago, got %+v", alerts)
	}
	if !weights.lastFrom.Equal(day(8)) || !weights.lastTo.Equal(day(10)) {
		t.Fatalf("expected window 05-08..05-10, got %s..%s", weights.lastFrom, weights.lastTo)
	}

	weights.weights = append(weights.weights, recordsdomain.WeightEntry{ID: "w2", AnimalID: "a1", Date: day(10), WeightGrams: 299})
	alerts, _ = service.ForAnimal(context.Background(), "owner-1", "a1")
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts with a weight today, got %+v", alerts)
	}
}

func TestForAnimalCachesUntilLatestWeightChanges(t *testing.T) {
	weights := &fakeWeights{weights: []recordsdomain.WeightEntry{
		{ID: "w1", AnimalID: "a1", Date: day(9), WeightGrams: 300},
		{ID: "w2", AnimalID: "a1", Date: day(10), WeightGrams: 280},
	}}
	cache := &mapCache{entries: make(map[string]CacheEntry)}
	service, fake := newTestService(weights, cache)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		alerts, err := service.ForAnimal(ctx, "owner-1", "a1")
		if err != nil || len(alerts) != 1 || alerts[0].Type != TypeWeightLoss {
			t.Fatalf("call %d: expected weight_loss, got %+v %v", i, alerts, err)
		}
	}
	if weights.countCalls != 1 {
		t.Fatalf("expected second call served from cache, got %d evaluations", weights.countCalls)
	}

	weights.setWeight(1, recordsdomain.WeightEntry{ID: "w3", AnimalID: "a1", Date: day(10), WeightGrams: 298})
	alerts, _ := service.ForAnimal(ctx, "owner-1", "a1")
	if len(alerts) != 0 || weights.countCalls != 2 {
		t.Fatalf("expected re-evaluation after weight changed, got %+v (%d calls)", alerts, weights.countCalls)
	}

	fake.Advance(24 * time.Hour)
	alerts, _ = service.ForAnimal(ctx, "owner-1", "a1")
	if weights.countCalls != 3 {
		t.Fatalf("expected re-evaluation on a new day, got %d calls", weights.countCalls)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected weight from yesterday to still count, got %+v", alerts)
	}

	service.Invalidate("a1")
	if _, ok := cache.Get("a1"); ok {
		t.Fatalf("expected invalidate to drop cache entry")
	}
}

func TestForAnimalReevaluatesWhenPreviousWeightChanges(t *testing.T) {
	weights := &fakeWeights{weights: []recordsdomain.WeightEntry{
		{ID: "w1", AnimalID: "a1", Date: day(9), WeightGrams: 300},
		{ID: "w2", AnimalID: "a1", Date: day(10), WeightGrams: 280},
	}}
	cache := &mapCache{entries: make(map[string]CacheEntry)}
	service, _ := newTestService(weights, cache)
	ctx := context.Background()

	// A save lands between this read's weight lookup and its cache write,
	// so the stale result is stored after the invalidation.
	weights.afterCount = func() {
		weights.setWeight(0, recordsdomain.WeightEntry{ID: "w1", AnimalID: "a1", Date: day(9), WeightGrams: 281})
		service.Invalidate("a1")
	}
	alerts, err := service.ForAnimal(ctx, "owner-1", "a1")
	if err != nil || len(alerts) != 1 || alerts[0].Type != TypeWeightLoss {
		t.Fatalf("expected weight_loss from the first read, got %+v %v", alerts, err)
	}
	if _, ok := cache.Get("a1"); !ok {
		t.Fatalf("expected the racing read to have cached its result")
	}

	alerts, err = service.ForAnimal(ctx, "owner-1", "a1")
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 0 {
		t.Fatalf("expected edited previous weight to clear the alert, got %+v", alerts)
	}

	weights.setWeight(0, recordsdomain.WeightEntry{ID: "w4", AnimalID: "a1", Date: day(9), WeightGrams: 300})
	alerts, _ = service.ForAnimal(ctx, "owner-1", "a1")
	if len(alerts) != 1 || alerts[0].Type != TypeWeightLoss {
		t.Fatalf("expected replaced previous weight to raise the alert again, got %+v", alerts)
	}
}

func TestForOwnerEvaluatesConcurrently(t *testing.T) {
	weights := &fakeWeights{}
	for i := 0; i < 8; i++ {
		weights.weights = append(weights.weights, recordsdomain.WeightEntry{
			ID: fmt.Sprintf("w%d", i), AnimalID: fmt.Sprintf("m%d", i), Date: day(10), WeightGrams: 100,
		})
	}
	var animals []animalsdomain.Animal
	for i := 0; i < 8; i++ {
		animals = append(animals, animalsdomain.Animal{ID: fmt.Sprintf("m%d", i), OwnerID: "owner-9"})
	}
	fake := clockwork.NewFakeClockAt(time.Date(2024, 5, 10, 2, 0, 0, 0, time.UTC))
	service := NewService(weights, fakeAnimals{animals: animals}, clock.New(fake, time.UTC), nil, nil, Config{})

	result, err := service.ForOwner(context.Background(), "owner-9")
	if err != nil {
		t.Fatalf("for owner: %v", err)
	}
	if len(result) != 8 || weights.countCalls != 8 {
		t.Fatalf("expected 8 evaluations, got %d results and %d counts", len(result), weights.countCalls)
	}
	for i, entry := range result {
		if entry.AnimalID != fmt.Sprintf("m%d", i) || len(entry.Alerts) != 0 {
			t.Fatalf("unexpected entry %d: %+v", i, entry)
		}
	}
}

func TestForAnimalChecksOwnership(t *testing.T) {
	service, _ := newTestService(&fakeWeights{}, nil)
	if _, err := service.ForAnimal(context.Background(), "owner-1", "a3"); !errors.Is(err, animalsdomain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestForOwnerKeepsAnimalOrder(t *testing.T) {
	weights := &fakeWeights{weights: []recordsdomain.WeightEntry{
		{ID: "w1", AnimalID: "a2", Date: day(10), WeightGrams: 50},
	}}
	service, _ := newTestService(weights, nil)

	result, err := service.ForOwner(context.Background(), "owner-1")
	if err != nil {
		t.Fatalf("for owner: %v", err)
	}
	if len(result) != 2 || result[0].AnimalID != "a1" || result[1].AnimalID != "a2" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result[0].Alerts) != 1 || len(result[1].Alerts) != 0 {
		t.Fatalf("expected only a1 to lack recent weights, got %+v", result)
	}
}
