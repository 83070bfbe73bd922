package inmemory

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	alertsdomain "pet-diary/internal/domain/alerts"
)

type AlertsCache struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	items map[string]alertsItem
}

type alertsItem struct {
	value     alertsdomain.CacheEntry
	expiresAt time.Time
}

func NewAlertsCache(clock clockwork.Clock) *AlertsCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AlertsCache{
		clock: clock,
		items: make(map[string]alertsItem),
	}
}

func (c *AlertsCache) Get(animalID string) (alertsdomain.CacheEntry, bool) {
	now := c.clock.Now()

	c.mu.RLock()
	item, ok := c.items[animalID]
	c.mu.RUnlock()
	if !ok {
		return alertsdomain.CacheEntry{}, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[animalID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, animalID)
		}
		c.mu.Unlock()
		return alertsdomain.CacheEntry{}, false
	}

	return cloneEntry(item.value), true
}

func (c *AlertsCache) Set(animalID string, entry alertsdomain.CacheEntry, ttl time.Duration) {
	if ttl <= 0 {
		c.Delete(animalID)
		return
	}

	c.mu.Lock()
	c.items[animalID] = alertsItem{
		value:     cloneEntry(entry),
		expiresAt: c.clock.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *AlertsCache) Delete(animalID string) {
	c.mu.Lock()
	delete(c.items, animalID)
	c.mu.Unlock()
}

func cloneEntry(entry alertsdomain.CacheEntry) alertsdomain.CacheEntry {
	entry.Weights = append([]alertsdomain.WeightSample(nil), entry.Weights...)
	entry.Alerts = append([]alertsdomain.Alert(nil), entry.Alerts...)
	return entry
}
