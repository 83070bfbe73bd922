package records

import (
	"context"
	"time"

	animalsdomain "pet-diary/internal/domain/animals"
)

// AnimalGuard resolves an animal and checks the caller owns it.
type AnimalGuard interface {
	Authorize(ctx context.Context, ownerID, animalID string) (*animalsdomain.Animal, error)
}

// Invalidator drops derived views of an animal after its records change.
type Invalidator interface {
	Invalidate(animalID string)
}

type BatchOutcome string

const (
	OutcomeApplied  BatchOutcome = "applied"
	OutcomeReplayed BatchOutcome = "replayed"
	OutcomeInvalid  BatchOutcome = "invalid"
	OutcomeConflict BatchOutcome = "conflict"
	OutcomeFailed   BatchOutcome = "failed"
)

type Metrics interface {
	ObserveBatch(outcome BatchOutcome, failedStep Step, duration time.Duration)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(string) {}

type noopMetrics struct{}

func (noopMetrics) ObserveBatch(BatchOutcome, Step, time.Duration) {}

type Option func(*Service)

func WithInvalidator(invalidator Invalidator) Option {
	return func(s *Service) {
		if invalidator != nil {
			s.invalidator = invalidator
		}
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}
