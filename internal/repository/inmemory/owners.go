package inmemory

import (
	"context"
	"sync"
	"time"

	ownersdomain "pet-diary/internal/domain/owners"
)

type OwnersRepository struct {
	mu       sync.RWMutex
	profiles map[string]ownersdomain.Profile
}

func NewOwnersRepository() *OwnersRepository {
	return &OwnersRepository{profiles: make(map[string]ownersdomain.Profile)}
}

func (r *OwnersRepository) UpsertProfile(ctx context.Context, profile *ownersdomain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored, ok := r.profiles[profile.OwnerID]
	if !ok {
		stored = ownersdomain.Profile{OwnerID: profile.OwnerID, CreatedAt: now}
	}
	if profile.Email != nil {
		email := *profile.Email
		stored.Email = &email
	}
	if profile.DisplayName != nil {
		name := *profile.DisplayName
		stored.DisplayName = &name
	}
	stored.UpdatedAt = now
	r.profiles[profile.OwnerID] = stored
	return nil
}

func (r *OwnersRepository) GetProfile(ctx context.Context, ownerID string) (*ownersdomain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.profiles[ownerID]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}
