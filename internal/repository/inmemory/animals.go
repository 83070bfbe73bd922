package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	animalsdomain "pet-diary/internal/domain/animals"
)

// AnimalsRepository is the STORAGE=memory animal store. onDelete mirrors the
// postgres cascade into the records store.
type AnimalsRepository struct {
	writeMu  *sync.Mutex
	mu       *sync.RWMutex
	animals  map[string]animalsdomain.Animal
	inTx     bool
	onDelete func(animalID string)
}

func NewAnimalsRepository(onDelete func(animalID string)) *AnimalsRepository {
	return &AnimalsRepository{
		writeMu:  &sync.Mutex{},
		mu:       &sync.RWMutex{},
		animals:  make(map[string]animalsdomain.Animal),
		onDelete: onDelete,
	}
}

// Transaction holds the writer lock, which also covers LockOwner.
func (r *AnimalsRepository) Transaction(ctx context.Context, fn func(animalsdomain.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx := *r
	tx.inTx = true
	return fn(&tx)
}

func (r *AnimalsRepository) LockOwner(ctx context.Context, ownerID string) error {
	return ctx.Err()
}

func (r *AnimalsRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, animal := range r.animals {
		if animal.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (r *AnimalsRepository) ListByOwner(ctx context.Context, ownerID string) ([]animalsdomain.Animal, error) {
	r.mu.RLock()
	result := make([]animalsdomain.Animal, 0)
	for _, animal := range r.animals {
		if animal.OwnerID == ownerID {
			result = append(result, animal)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *AnimalsRepository) GetByID(ctx context.Context, animalID string) (*animalsdomain.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	animal, ok := r.animals[animalID]
	if !ok {
		return nil, animalsdomain.ErrAnimalNotFound
	}
	return &animal, nil
}

func (r *AnimalsRepository) Create(ctx context.Context, animal *animalsdomain.Animal) error {
	now := time.Now().UTC()
	animal.CreatedAt = now
	animal.UpdatedAt = now

	r.mu.Lock()
	r.animals[animal.ID] = *animal
	r.mu.Unlock()
	return nil
}

func (r *AnimalsRepository) Update(ctx context.Context, animal *animalsdomain.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.animals[animal.ID]; !ok {
		return animalsdomain.ErrAnimalNotFound
	}
	animal.UpdatedAt = time.Now().UTC()
	r.animals[animal.ID] = *animal
	return nil
}

func (r *AnimalsRepository) Delete(ctx context.Context, animalID string) (bool, error) {
	r.mu.Lock()
	_, ok := r.animals[animalID]
	delete(r.animals, animalID)
	r.mu.Unlock()

	if ok && r.onDelete != nil {
		r.onDelete(animalID)
	}
	return ok, nil
}
