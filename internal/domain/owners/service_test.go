package owners

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	profiles map[string]Profile
}

func (f *fakeRepo) UpsertProfile(ctx context.Context, profile *Profile) error {
	stored := f.profiles[profile.OwnerID]
	stored.OwnerID = profile.OwnerID
	if profile.Email != nil {
		stored.Email = profile.Email
	}
	if profile.DisplayName != nil {
		stored.DisplayName = profile.DisplayName
	}
	f.profiles[profile.OwnerID] = stored
	return nil
}

func (f *fakeRepo) GetProfile(ctx context.Context, ownerID string) (*Profile, error) {
	stored, ok := f.profiles[ownerID]
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func TestUpsertProfileKeepsExistingClaims(t *testing.T) {
	repo := &fakeRepo{profiles: map[string]Profile{}}
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.UpsertProfile(ctx, "owner-1", "a@example.com", "Aki"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.UpsertProfile(ctx, "owner-1", "", " "); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	profile, err := svc.GetProfile(ctx, "owner-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if profile.Email == nil || *profile.Email != "a@example.com" {
		t.Fatalf("expected email kept, got %v", profile.Email)
	}
	if profile.DisplayName == nil || *profile.DisplayName != "Aki" {
		t.Fatalf("expected display name kept, got %v", profile.DisplayName)
	}
}

func TestUpsertProfileRequiresOwner(t *testing.T) {
	svc := NewService(&fakeRepo{profiles: map[string]Profile{}})
	if err := svc.UpsertProfile(context.Background(), "  ", "", ""); err == nil {
		t.Fatalf("expected error for empty owner id")
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewService(&fakeRepo{profiles: map[string]Profile{}})
	if _, err := svc.GetProfile(context.Background(), "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
