package animals

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	LockOwner(ctx context.Context, ownerID string) error
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Animal, error)
	GetByID(ctx context.Context, animalID string) (*Animal, error)
	Create(ctx context.Context, animal *Animal) error
	Update(ctx context.Context, animal *Animal) error
	Delete(ctx context.Context, animalID string) (bool, error)
}
