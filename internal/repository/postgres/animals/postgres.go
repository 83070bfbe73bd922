package animals

import (
	"context"
	"errors"

	"gorm.io/gorm"

	animalsdomain "pet-diary/internal/domain/animals"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(animalsdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockOwner serialises animal creation per owner until the transaction ends.
func (r *PostgresRepository) LockOwner(ctx context.Context, ownerID string) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "animals:"+ownerID).
		Error
}

func (r *PostgresRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&animalsdomain.Animal{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]animalsdomain.Animal, error) {
	var animals []animalsdomain.Animal
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc, id asc").
		Find(&animals).Error; err != nil {
		return nil, err
	}
	return animals, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, animalID string) (*animalsdomain.Animal, error) {
	var animal animalsdomain.Animal
	if err := r.db.WithContext(ctx).Where("id = ?", animalID).First(&animal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, animalsdomain.ErrAnimalNotFound
		}
		return nil, err
	}
	return &animal, nil
}

func (r *PostgresRepository) Create(ctx context.Context, animal *animalsdomain.Animal) error {
	return r.db.WithContext(ctx).Create(animal).Error
}

func (r *PostgresRepository) Update(ctx context.Context, animal *animalsdomain.Animal) error {
	result := r.db.WithContext(ctx).
		Model(&animalsdomain.Animal{}).
		Where("id = ?", animal.ID).
		Updates(map[string]interface{}{
			"name":       animal.Name,
			"species":    animal.Species,
			"breed":      animal.Breed,
			"sex":        animal.Sex,
			"birth_date": animal.BirthDate,
			"notes":      animal.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return animalsdomain.ErrAnimalNotFound
	}
	return nil
}

// Delete removes the animal; daily records follow through ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, animalID string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", animalID).Delete(&animalsdomain.Animal{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
