package domain

import (
	"context"
	"time"
)

// MarketDataProvider is the injected capability supplying external market
// signals. Implementations may hit price feeds; the engine resolves a
// MarketContext snapshot before a search begins so no traversal blocks on I/O.
type MarketDataProvider interface {
	// TokenPriceUSD returns the USD price for a token, 0 if unknown.
	TokenPriceUSD(ctx context.Context, id TokenID) (float64, error)
	// GasPriceMultiplier scales per-pool gas estimates for current chain
	// conditions (1 = the estimate as quoted).
	GasPriceMultiplier(ctx context.Context, chainID uint64) (float64, error)
	// Volatility returns a 0..1 short-term volatility signal for a token.
	Volatility(ctx context.Context, id TokenID) (float64, error)
	// HistoricalSlippagePct returns observed average slippage for a pool.
	HistoricalSlippagePct(ctx context.Context, poolAddress string) (float64, error)
}

// MarketContext is an immutable point-in-time view of market signals. Every
// search call owns one; nothing in it is shared mutable state.
type MarketContext struct {
	TokenPricesUSD map[TokenID]float64
	GasMultiplier  map[uint64]float64
	Volatility     map[TokenID]float64
	HistSlippage   map[string]float64
	AsOf           time.Time
}

func NewMarketContext() *MarketContext {
	return &MarketContext{
		TokenPricesUSD: make(map[TokenID]float64),
		GasMultiplier:  make(map[uint64]float64),
		Volatility:     make(map[TokenID]float64),
		HistSlippage:   make(map[string]float64),
		AsOf:           time.Now(),
	}
}

// PriceUSD returns the token price or 0 when the provider had none.
func (mc *MarketContext) PriceUSD(id TokenID) float64 {
	if mc == nil {
		return 0
	}
	return mc.TokenPricesUSD[id]
}

// GasFactor returns the chain gas multiplier, defaulting to 1.
func (mc *MarketContext) GasFactor(chainID uint64) float64 {
	if mc == nil {
		return 1
	}
	if m, ok := mc.GasMultiplier[chainID]; ok && m > 0 {
		return m
	}
	return 1
}

func (mc *MarketContext) VolatilityOf(id TokenID) float64 {
	if mc == nil {
		return 0
	}
	return mc.Volatility[id]
}

func (mc *MarketContext) HistoricalSlippage(pool string) (float64, bool) {
	if mc == nil {
		return 0, false
	}
	v, ok := mc.HistSlippage[pool]
	return v, ok
}

// StaticMarketData is a deterministic in-memory provider used as the default
// when no live integration is wired, and by tests.
type StaticMarketData struct {
	Prices    map[TokenID]float64
	GasFactor map[uint64]float64
	Vol       map[TokenID]float64
	Slippage  map[string]float64
}

func NewStaticMarketData() *StaticMarketData {
	return &StaticMarketData{
		Prices:    make(map[TokenID]float64),
		GasFactor: make(map[uint64]float64),
		Vol:       make(map[TokenID]float64),
		Slippage:  make(map[string]float64),
	}
}

func (s *StaticMarketData) TokenPriceUSD(_ context.Context, id TokenID) (float64, error) {
	return s.Prices[id], nil
}

func (s *StaticMarketData) GasPriceMultiplier(_ context.Context, chainID uint64) (float64, error) {
	if m, ok := s.GasFactor[chainID]; ok {
		return m, nil
	}
	return 1, nil
}

func (s *StaticMarketData) Volatility(_ context.Context, id TokenID) (float64, error) {
	return s.Vol[id], nil
}

func (s *StaticMarketData) HistoricalSlippagePct(_ context.Context, pool string) (float64, error) {
	return s.Slippage[pool], nil
}
