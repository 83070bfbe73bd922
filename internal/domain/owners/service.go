package owners

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertProfile records the identity claims seen on an authenticated request.
// Empty claims leave the stored values untouched.
func (s *Service) UpsertProfile(ctx context.Context, ownerID, email, displayName string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return fmt.Errorf("owner id is required")
	}

	profile := Profile{OwnerID: ownerID}
	if email = strings.TrimSpace(email); email != "" {
		profile.Email = &email
	}
	if displayName = strings.TrimSpace(displayName); displayName != "" {
		profile.DisplayName = &displayName
	}

	return s.repo.UpsertProfile(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, ownerID string) (*Profile, error) {
	profile, err := s.repo.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}
