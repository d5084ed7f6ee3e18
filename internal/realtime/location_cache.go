package realtime

import (
	"hash/fnv"
	"sync"
	"time"

	"courier/internal/domain/entity"
	"courier/internal/errors"
	"courier/internal/geo"
)

// ErrStaleSample is returned when a reported sample is not strictly newer than
// the stored current sample for the agent. Stale samples are dropped, not merged.
var ErrStaleSample = errors.New("location sample is not newer than the cached one")

const shardCount = 32

// agentEntry keeps the two most recent samples for one agent. The previous
// sample exists only to derive speed.
type agentEntry struct {
	current  entity.Location
	previous *entity.Location
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]*agentEntry
}

// LocationCache is the shared last-known-location store, read and written by
// many connections concurrently. Access is sharded by agent ID so a report for
// one agent never blocks a read for another.
type LocationCache struct {
	shards               [shardCount]*cacheShard
	maxPlausibleSpeedKmh float64
}

// NewLocationCache creates an empty cache. maxPlausibleSpeedKmh bounds the
// speed plausibility band used by SpeedOf.
func NewLocationCache(maxPlausibleSpeedKmh float64) *LocationCache {
	cache := &LocationCache{maxPlausibleSpeedKmh: maxPlausibleSpeedKmh}
	for i := range cache.shards {
		cache.shards[i] = &cacheShard{entries: make(map[string]*agentEntry)}
	}

	return cache
}

func (c *LocationCache) shardFor(agentID string) *cacheShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(agentID))

	return c.shards[h.Sum32()%shardCount]
}

// Report stores a new sample for the agent, shifting the old current sample
// into the previous slot. Samples whose capturedAt is not strictly newer than
// the stored current one are rejected with ErrStaleSample.
func (c *LocationCache) Report(agentID string, sample entity.Location) error {
	if err := sample.Validate(); err != nil {
		return err
	}

	shard := c.shardFor(agentID)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	entry, ok := shard.entries[agentID]
	if !ok {
		shard.entries[agentID] = &agentEntry{current: sample}

		return nil
	}

	if !sample.CapturedAt.After(entry.current.CapturedAt) {
		return ErrStaleSample
	}

	prev := entry.current
	entry.previous = &prev
	entry.current = sample

	return nil
}

// CurrentOf returns the most recent sample for the agent, if any.
func (c *LocationCache) CurrentOf(agentID string) (entity.Location, bool) {
	shard := c.shardFor(agentID)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	entry, ok := shard.entries[agentID]
	if !ok {
		return entity.Location{}, false
	}

	return entry.current, true
}

// SpeedOf derives the agent's instantaneous speed from the stored sample pair.
// It reports false when fewer than two samples exist or the derived speed is
// implausible.
func (c *LocationCache) SpeedOf(agentID string) (float64, bool) {
	shard := c.shardFor(agentID)
	shard.mu.RLock()
	entry, ok := shard.entries[agentID]
	if !ok || entry.previous == nil {
		shard.mu.RUnlock()

		return 0, false
	}
	prev, curr := *entry.previous, entry.current
	shard.mu.RUnlock()

	return geo.SpeedKmh(prev, curr, c.maxPlausibleSpeedKmh)
}

// IsOnline reports whether the agent has a sample no older than the freshness
// window at the given time.
func (c *LocationCache) IsOnline(agentID string, now time.Time, freshnessWindow time.Duration) bool {
	current, ok := c.CurrentOf(agentID)
	if !ok {
		return false
	}

	return now.Sub(current.CapturedAt) <= freshnessWindow
}
