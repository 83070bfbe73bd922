package animals

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-diary/internal/domain/validation"
	"pet-diary/pkg/clock"
)

type Service struct {
	repo  Repository
	clock *clock.Clock
}

func NewService(repo Repository, clk *clock.Clock) *Service {
	if clk == nil {
		clk = clock.New(nil, nil)
	}
	return &Service{repo: repo, clock: clk}
}

// CreateAnimal registers a new animal. The per-owner cap is checked under an
// owner-scoped lock inside the same transaction as the insert.
func (s *Service) CreateAnimal(ctx context.Context, input CreateAnimalInput) (*Animal, error) {
	animal := Animal{
		ID:        uuid.NewString(),
		OwnerID:   strings.TrimSpace(input.OwnerID),
		Name:      strings.TrimSpace(input.Name),
		Species:   strings.TrimSpace(input.Species),
		Breed:     strings.TrimSpace(input.Breed),
		Sex:       input.Sex,
		BirthDate: normalizeDate(input.BirthDate),
		Notes:     strings.TrimSpace(input.Notes),
	}
	if animal.Sex == "" {
		animal.Sex = SexUnknown
	}
	if animal.OwnerID == "" {
		return nil, validation.Errorf("ownerId", "is required")
	}
	if err := s.validate(animal); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockOwner(ctx, animal.OwnerID); err != nil {
			return err
		}
		count, err := tx.CountByOwner(ctx, animal.OwnerID)
		if err != nil {
			return err
		}
		if count >= MaxAnimalsPerOwner {
			return ErrLimitExceeded
		}
		return tx.Create(ctx, &animal)
	})
	if err != nil {
		return nil, err
	}

	return &animal, nil
}

func (s *Service) ListAnimals(ctx context.Context, ownerID string) ([]Animal, error) {
	animals, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if animals == nil {
		animals = []Animal{}
	}
	return animals, nil
}

func (s *Service) GetAnimal(ctx context.Context, ownerID, animalID string) (*Animal, error) {
	return s.Authorize(ctx, ownerID, animalID)
}

// Authorize loads the animal and checks that ownerID owns it.
func (s *Service) Authorize(ctx context.Context, ownerID, animalID string) (*Animal, error) {
	if _, err := uuid.Parse(animalID); err != nil {
		return nil, ErrAnimalNotFound
	}
	animal, err := s.repo.GetByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	if animal.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return animal, nil
}

func (s *Service) UpdateAnimal(ctx context.Context, input UpdateAnimalInput) (*Animal, error) {
	animal, err := s.Authorize(ctx, input.OwnerID, input.AnimalID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		animal.Name = strings.TrimSpace(*input.Name)
	}
	if input.Species != nil {
		animal.Species = strings.TrimSpace(*input.Species)
	}
	if input.Breed != nil {
		animal.Breed = strings.TrimSpace(*input.Breed)
	}
	if input.Sex != nil {
		animal.Sex = *input.Sex
	}
	if input.ClearBirthDate {
		animal.BirthDate = nil
	} else if input.BirthDate != nil {
		animal.BirthDate = normalizeDate(input.BirthDate)
	}
	if input.Notes != nil {
		animal.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.validate(*animal); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, animal); err != nil {
		return nil, err
	}
	return animal, nil
}

// DeleteAnimal removes the animal; its daily records go with it, reminders stay.
func (s *Service) DeleteAnimal(ctx context.Context, ownerID, animalID string) error {
	if _, err := s.Authorize(ctx, ownerID, animalID); err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, animalID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAnimalNotFound
	}
	return nil
}

func (s *Service) validate(animal Animal) error {
	err := validation.First(
		validation.Required("name", animal.Name),
		validation.MaxLen("name", animal.Name, maxNameLength),
		validation.MaxLen("species", animal.Species, maxSpeciesLength),
		validation.MaxLen("breed", animal.Breed, maxBreedLength),
		validation.MaxLen("notes", animal.Notes, maxNotesLength),
	)
	if err != nil {
		return err
	}
	if !animal.Sex.Valid() {
		return validation.Errorf("sex", "must be one of male, female, unknown")
	}
	if animal.BirthDate != nil && animal.BirthDate.After(s.clock.Today()) {
		return validation.Errorf("birthDate", "must not be in the future")
	}
	return nil
}

func normalizeDate(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	date := clock.DateOf(*value)
	return &date
}
