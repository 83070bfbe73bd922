package alerts

import "time"

// CacheEntry is valid only while the local date and every weight sample the
// alerts were evaluated from still match.
type CacheEntry struct {
	Weights []WeightSample
	Today   time.Time
	Alerts  []Alert
}

// Matches reports whether the entry was evaluated from exactly these samples on today.
func (e CacheEntry) Matches(weights []WeightSample, today time.Time) bool {
	if !e.Today.Equal(today) || len(e.Weights) != len(weights) {
		return false
	}
	for i, weight := range weights {
		cached := e.Weights[i]
		if cached.ID != weight.ID || cached.Grams != weight.Grams || !cached.Date.Equal(weight.Date) {
			return false
		}
	}
	return true
}

type Cache interface {
	Get(animalID string) (CacheEntry, bool)
	Set(animalID string, entry CacheEntry, ttl time.Duration)
	Delete(animalID string)
}

type noopCache struct{}

func (noopCache) Get(string) (CacheEntry, bool) {
	return CacheEntry{}, false
}

func (noopCache) Set(string, CacheEntry, time.Duration) {}

func (noopCache) Delete(string) {}
