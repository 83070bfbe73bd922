package records

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-diary/internal/domain/validation"
	"pet-diary/pkg/clock"
)

// GetWeightHistory returns weights dated from local today minus the range, ascending.
func (s *Service) GetWeightHistory(ctx context.Context, ownerID, animalID string, weightRange WeightRange) ([]WeightEntry, error) {
	if _, err := s.animals.Authorize(ctx, ownerID, animalID); err != nil {
		return nil, err
	}

	from := clock.AddDays(s.clock.Today(), -weightRange.Days())
	weights, err := s.repo.ListWeightsSince(ctx, animalID, from)
	if err != nil {
		return nil, err
	}
	if weights == nil {
		weights = []WeightEntry{}
	}
	return weights, nil
}

// GetRecentRecords groups weight, meal and excretion rows of the last
// windowDays by date, newest first. Dates without rows are omitted.
func (s *Service) GetRecentRecords(ctx context.Context, ownerID, animalID string, windowDays int) ([]RecentDay, error) {
	if windowDays == 0 {
		windowDays = DefaultRecentDays
	}
	if windowDays < 1 || windowDays > MaxRecentDays {
		return nil, validation.Errorf("days", "must be between 1 and %d", MaxRecentDays)
	}
	if _, err := s.animals.Authorize(ctx, ownerID, animalID); err != nil {
		return nil, err
	}

	from := clock.AddDays(s.clock.Today(), -windowDays)

	var (
		weights    []WeightEntry
		meals      []MealEntry
		excretions []ExcretionEntry
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		weights, err = s.repo.ListWeightsSince(groupCtx, animalID, from)
		return err
	})
	group.Go(func() error {
		var err error
		meals, err = s.repo.ListMealsSince(groupCtx, animalID, from)
		return err
	})
	group.Go(func() error {
		var err error
		excretions, err = s.repo.ListExcretionsSince(groupCtx, animalID, from)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return groupByDate(weights, meals, excretions), nil
}

func groupByDate(weights []WeightEntry, meals []MealEntry, excretions []ExcretionEntry) []RecentDay {
	days := make(map[time.Time]*RecentDay)
	dayFor := func(date time.Time) *RecentDay {
		key := clock.DateOf(date)
		day, ok := days[key]
		if !ok {
			day = &RecentDay{Date: key, Meals: []MealEntry{}, Excretions: []ExcretionEntry{}}
			days[key] = day
		}
		return day
	}

	for i := range weights {
		weight := weights[i]
		dayFor(weight.Date).Weight = &weight
	}
	for _, meal := range meals {
		day := dayFor(meal.Date)
		day.Meals = append(day.Meals, meal)
	}
	for _, excretion := range excretions {
		day := dayFor(excretion.Date)
		day.Excretions = append(day.Excretions, excretion)
	}

	result := make([]RecentDay, 0, len(days))
	for _, day := range days {
		result = append(result, *day)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result
}
