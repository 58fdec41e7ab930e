// Package cache provides small in-process caches used to memoize
// deterministic lookups during a report run.
package cache

// Cache defines a generic keyed cache.
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Len returns the current number of items in the cache
	Len() int
}

// Stats reports hit and miss counts for a cache.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// HitRatio returns hits / (hits + misses), or 0 when the cache was never read.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
