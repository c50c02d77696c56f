package router

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/metrics"
)

const (
	DefaultPathCacheTTL = 5 * time.Minute

	pathCacheMaxSize = 1024 // Power of 2 for efficient modulo
	pathCacheShards  = 16   // Number of shards for reduced lock contention
)

// FNV-1a constants for zero-allocation hashing
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// cacheEntry represents one cached search result set in contiguous memory
type cacheEntry struct {
	key     uint64
	results []*domain.PathfindingResult
	expiry  int64  // Unix nano for faster comparison
	used    uint32 // Clock bit for eviction
}

type cacheShard struct {
	mu      sync.RWMutex
	entries []cacheEntry
	size    int
	hand    int // Clock hand for eviction
}

// PathCache is a sharded clock-eviction cache keyed on the full search
// request: endpoints, amount, algorithm, and hop bound. Array-backed shards
// keep lookups a short linear scan with good locality. Entries expire after
// the TTL so cached routes never outlive a few graph refresh cycles.
type PathCache struct {
	shards   [pathCacheShards]cacheShard
	ttl      time.Duration
	hits     atomic.Int64
	misses   atomic.Int64
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewPathCache(ttl time.Duration) *PathCache {
	if ttl <= 0 {
		ttl = DefaultPathCacheTTL
	}
	pc := &PathCache{
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	entriesPerShard := pathCacheMaxSize / pathCacheShards
	for i := 0; i < pathCacheShards; i++ {
		pc.shards[i].entries = make([]cacheEntry, entriesPerShard)
	}
	go pc.cleanupLoop()
	return pc
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (pc *PathCache) Stop() {
	pc.stopOnce.Do(func() { close(pc.stopChan) })
}

// makeKeyInline generates the cache key using inline FNV-1a (zero allocation)
func makeKeyInline(from, to domain.TokenID, amountIn float64, opts *domain.PathOptions) uint64 {
	h := uint64(fnvOffset64)

	for i := 0; i < len(from); i++ {
		h ^= uint64(from[i])
		h *= fnvPrime64
	}
	h ^= 0xFF
	h *= fnvPrime64
	for i := 0; i < len(to); i++ {
		h ^= uint64(to[i])
		h *= fnvPrime64
	}

	for _, f := range [...]float64{amountIn, opts.MinLiquidityUSD, opts.MaxSlippagePct} {
		bits := math.Float64bits(f)
		for i := 0; i < 8; i++ {
			h ^= (bits >> (i * 8)) & 0xFF
			h *= fnvPrime64
		}
	}

	for i := 0; i < len(opts.Algorithm); i++ {
		h ^= uint64(opts.Algorithm[i])
		h *= fnvPrime64
	}
	for i := 0; i < len(opts.OptimizeFor); i++ {
		h ^= uint64(opts.OptimizeFor[i])
		h *= fnvPrime64
	}
	h ^= uint64(opts.MaxHops)
	h *= fnvPrime64
	h ^= uint64(opts.MaxPaths)
	h *= fnvPrime64
	if opts.IncludeArbitrage {
		h ^= 1
	}
	h *= fnvPrime64

	return h
}

func (pc *PathCache) getShard(key uint64) *cacheShard {
	return &pc.shards[key%pathCacheShards]
}

// Get returns the cached result set or nil. Expired entries miss without
// being removed; the cleanup loop and clock eviction reclaim them.
func (pc *PathCache) Get(from, to domain.TokenID, amountIn float64, opts *domain.PathOptions) []*domain.PathfindingResult {
	key := makeKeyInline(from, to, amountIn, opts)
	now := time.Now().UnixNano()

	shard := pc.getShard(key)
	shard.mu.RLock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key && now <= entry.expiry {
			atomic.StoreUint32(&entry.used, 1)
			results := entry.results
			shard.mu.RUnlock()
			pc.hits.Add(1)
			metrics.PathCacheHits.Inc()
			return results
		}
	}

	shard.mu.RUnlock()
	pc.misses.Add(1)
	metrics.PathCacheMisses.Inc()
	return nil
}

func (pc *PathCache) Set(from, to domain.TokenID, amountIn float64, opts *domain.PathOptions, results []*domain.PathfindingResult) {
	key := makeKeyInline(from, to, amountIn, opts)
	expiry := time.Now().Add(pc.ttl).UnixNano()

	shard := pc.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	for i := 0; i < shard.size; i++ {
		entry := &shard.entries[i]
		if entry.key == key {
			entry.results = results
			entry.expiry = expiry
			atomic.StoreUint32(&entry.used, 1)
			return
		}
	}

	entriesPerShard := len(shard.entries)

	if shard.size < entriesPerShard {
		entry := &shard.entries[shard.size]
		entry.key = key
		entry.results = results
		entry.expiry = expiry
		entry.used = 1
		shard.size++
		return
	}

	// Clock eviction with second chance
	for attempts := 0; attempts < entriesPerShard*2; attempts++ {
		entry := &shard.entries[shard.hand]
		shard.hand = (shard.hand + 1) % entriesPerShard

		now := time.Now().UnixNano()
		if atomic.LoadUint32(&entry.used) == 0 || now > entry.expiry {
			entry.key = key
			entry.results = results
			entry.expiry = expiry
			entry.used = 1
			return
		}

		atomic.StoreUint32(&entry.used, 0)
	}

	// Fallback: overwrite at current hand position
	entry := &shard.entries[shard.hand]
	entry.key = key
	entry.results = results
	entry.expiry = expiry
	entry.used = 1
	shard.hand = (shard.hand + 1) % entriesPerShard
}

// Purge drops every entry, used after a graph rebuild invalidates routes.
func (pc *PathCache) Purge() {
	for i := 0; i < pathCacheShards; i++ {
		shard := &pc.shards[i]
		shard.mu.Lock()
		for j := 0; j < shard.size; j++ {
			shard.entries[j] = cacheEntry{}
		}
		shard.size = 0
		shard.hand = 0
		shard.mu.Unlock()
	}
	metrics.PathCacheSize.Set(0)
}

// evictExpired marks expired entries unused so the next Set reclaims them
func (pc *PathCache) evictExpired() {
	now := time.Now().UnixNano()

	for i := 0; i < pathCacheShards; i++ {
		shard := &pc.shards[i]
		shard.mu.Lock()
		for j := 0; j < shard.size; j++ {
			entry := &shard.entries[j]
			if now > entry.expiry {
				atomic.StoreUint32(&entry.used, 0)
			}
		}
		shard.mu.Unlock()
	}
}

// Size returns current entry count across all shards
func (pc *PathCache) Size() int {
	total := 0
	for i := 0; i < pathCacheShards; i++ {
		shard := &pc.shards[i]
		shard.mu.RLock()
		total += shard.size
		shard.mu.RUnlock()
	}
	return total
}

// Hits and Misses expose the lifetime counters for stats reporting.
func (pc *PathCache) Hits() int64   { return pc.hits.Load() }
func (pc *PathCache) Misses() int64 { return pc.misses.Load() }

func (pc *PathCache) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-pc.stopChan:
			return
		case <-ticker.C:
			pc.evictExpired()
			metrics.PathCacheSize.Set(float64(pc.Size()))
		}
	}
}
