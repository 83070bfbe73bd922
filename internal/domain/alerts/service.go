package alerts

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	animalsdomain "pet-diary/internal/domain/animals"
	recordsdomain "pet-diary/internal/domain/records"
	"pet-diary/pkg/clock"
)

const maxConcurrentEvaluations = 4

type WeightReader interface {
	LatestWeights(ctx context.Context, animalID string, limit int) ([]recordsdomain.WeightEntry, error)
	CountWeightsBetween(ctx context.Context, animalID string, from, to time.Time) (int64, error)
}

type Animals interface {
	Authorize(ctx context.Context, ownerID, animalID string) (*animalsdomain.Animal, error)
	ListAnimals(ctx context.Context, ownerID string) ([]animalsdomain.Animal, error)
}

type Metrics interface {
	ObserveEvaluation(cacheHit bool, alerts []Alert)
}

type noopMetrics struct{}

func (noopMetrics) ObserveEvaluation(bool, []Alert) {}

type Config struct {
	CacheTTL time.Duration
}

type Service struct {
	weights WeightReader
	animals Animals
	clock   *clock.Clock
	cache   Cache
	metrics Metrics
	ttl     time.Duration
}

func NewService(weights WeightReader, animals Animals, clk *clock.Clock, cache Cache, metrics Metrics, cfg Config) *Service {
	if clk == nil {
		clk = clock.New(nil, nil)
	}
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		weights: weights,
		animals: animals,
		clock:   clk,
		cache:   cache,
		metrics: metrics,
		ttl:     cfg.CacheTTL,
	}
}

// Invalidate drops cached alerts after the animal's records change.
func (s *Service) Invalidate(animalID string) {
	s.cache.Delete(animalID)
}

func (s *Service) ForAnimal(ctx context.Context, ownerID, animalID string) ([]Alert, error) {
	if _, err := s.animals.Authorize(ctx, ownerID, animalID); err != nil {
		return nil, err
	}
	return s.evaluate(ctx, animalID)
}

// ForOwner evaluates every animal of the owner, in list order.
func (s *Service) ForOwner(ctx context.Context, ownerID string) ([]AnimalAlerts, error) {
	animals, err := s.animals.ListAnimals(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]AnimalAlerts, len(animals))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentEvaluations)
	for i, animal := range animals {
		group.Go(func() error {
			alerts, err := s.evaluate(groupCtx, animal.ID)
			if err != nil {
				return err
			}
			result[i] = AnimalAlerts{AnimalID: animal.ID, AnimalName: animal.Name, Alerts: alerts}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) evaluate(ctx context.Context, animalID string) ([]Alert, error) {
	today := s.clock.Today()

	latest, err := s.weights.LatestWeights(ctx, animalID, 2)
	if err != nil {
		return nil, err
	}
	samples := make([]WeightSample, 0, len(latest))
	for _, weight := range latest {
		samples = append(samples, WeightSample{ID: weight.ID, Date: weight.Date, Grams: weight.WeightGrams})
	}

	if entry, ok := s.cache.Get(animalID); ok && entry.Matches(samples, today) {
		s.metrics.ObserveEvaluation(true, entry.Alerts)
		return entry.Alerts, nil
	}

	from := clock.AddDays(today, -(NoRecordWindowDays - 1))
	count, err := s.weights.CountWeightsBetween(ctx, animalID, from, today)
	if err != nil {
		return nil, err
	}

	input := EvaluationInput{AnimalID: animalID, Latest: samples, RecentCount: count}
	alerts := Evaluate(input)

	if s.ttl > 0 {
		s.cache.Set(animalID, CacheEntry{Weights: samples, Today: today, Alerts: alerts}, s.ttl)
	}
	s.metrics.ObserveEvaluation(false, alerts)
	return alerts, nil
}
