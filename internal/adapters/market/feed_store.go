package market

import (
	"context"
	"sync"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

const numShards = 16

// tokenShard holds the per-token market signals for one shard.
type tokenShard struct {
	mu         sync.RWMutex
	prices     map[domain.TokenID]float64
	volatility map[domain.TokenID]float64
}

// FeedStore is a sharded in-memory market signal store fed by external price
// and telemetry pushes. It implements domain.MarketDataProvider; sharding
// keeps writer feeds from stalling concurrent searches resolving a context.
type FeedStore struct {
	shards [numShards]tokenShard

	gasMu sync.RWMutex
	gas   map[uint64]float64

	slipMu   sync.RWMutex
	slippage map[string]float64
}

func NewFeedStore() *FeedStore {
	s := &FeedStore{
		gas:      make(map[uint64]float64),
		slippage: make(map[string]float64),
	}
	for i := 0; i < numShards; i++ {
		s.shards[i].prices = make(map[domain.TokenID]float64)
		s.shards[i].volatility = make(map[domain.TokenID]float64)
	}
	return s
}

// getShard hashes the token ID's first byte, cheap and uniform enough for
// address-derived IDs.
func (s *FeedStore) getShard(id domain.TokenID) *tokenShard {
	if len(id) == 0 {
		return &s.shards[0]
	}
	var h byte
	for i := 0; i < len(id); i++ {
		h ^= id[i]
	}
	return &s.shards[h%numShards]
}

func (s *FeedStore) SetPrice(id domain.TokenID, priceUSD float64) {
	shard := s.getShard(id)
	shard.mu.Lock()
	shard.prices[id] = priceUSD
	shard.mu.Unlock()
}

func (s *FeedStore) SetVolatility(id domain.TokenID, vol float64) {
	shard := s.getShard(id)
	shard.mu.Lock()
	shard.volatility[id] = vol
	shard.mu.Unlock()
}

func (s *FeedStore) SetGasMultiplier(chainID uint64, multiplier float64) {
	s.gasMu.Lock()
	s.gas[chainID] = multiplier
	s.gasMu.Unlock()
}

func (s *FeedStore) SetPoolSlippage(poolAddress string, slippagePct float64) {
	s.slipMu.Lock()
	s.slippage[poolAddress] = slippagePct
	s.slipMu.Unlock()
}

// PriceCount returns how many tokens currently have a price.
func (s *FeedStore) PriceCount() int {
	total := 0
	for i := 0; i < numShards; i++ {
		s.shards[i].mu.RLock()
		total += len(s.shards[i].prices)
		s.shards[i].mu.RUnlock()
	}
	return total
}

func (s *FeedStore) TokenPriceUSD(_ context.Context, id domain.TokenID) (float64, error) {
	shard := s.getShard(id)
	shard.mu.RLock()
	price := shard.prices[id]
	shard.mu.RUnlock()
	return price, nil
}

func (s *FeedStore) Volatility(_ context.Context, id domain.TokenID) (float64, error) {
	shard := s.getShard(id)
	shard.mu.RLock()
	vol := shard.volatility[id]
	shard.mu.RUnlock()
	return vol, nil
}

func (s *FeedStore) GasPriceMultiplier(_ context.Context, chainID uint64) (float64, error) {
	s.gasMu.RLock()
	m := s.gas[chainID]
	s.gasMu.RUnlock()
	if m <= 0 {
		m = 1
	}
	return m, nil
}

func (s *FeedStore) HistoricalSlippagePct(_ context.Context, poolAddress string) (float64, error) {
	s.slipMu.RLock()
	v := s.slippage[poolAddress]
	s.slipMu.RUnlock()
	return v, nil
}
