package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func nodeFor(symbol string, chainID uint64, tvl float64) *domain.GraphNode {
	return &domain.GraphNode{
		Token:  domain.Token{Address: "0x" + symbol, Symbol: symbol, Decimals: 18, ChainID: chainID},
		TVLUSD: tvl,
	}
}

func TestHeuristicRegistryScore(t *testing.T) {
	reg := NewHeuristicRegistry()
	reg.Register("constant", 2.0, func(_, _ *domain.GraphNode, _ *domain.MarketContext) float64 {
		return 1.5
	})

	score := reg.Score(nodeFor("AAA", 1, 0), nodeFor("BBB", 1, 0), domain.NewMarketContext())
	assert.InDelta(t, 3.0, score, 1e-12)
}

func TestHeuristicRegistryZeroWeightSkipped(t *testing.T) {
	called := false
	reg := NewHeuristicRegistry()
	reg.Register("tracked", 1.0, func(_, _ *domain.GraphNode, _ *domain.MarketContext) float64 {
		called = true
		return 1
	})
	assert.True(t, reg.SetWeight("tracked", 0))

	score := reg.Score(nodeFor("AAA", 1, 0), nodeFor("BBB", 1, 0), domain.NewMarketContext())
	assert.Zero(t, score)
	assert.False(t, called)
}

func TestHeuristicRegistryUpsert(t *testing.T) {
	reg := NewHeuristicRegistry()
	reg.Register("sig", 1.0, func(_, _ *domain.GraphNode, _ *domain.MarketContext) float64 { return 1 })
	reg.Register("sig", 1.0, func(_, _ *domain.GraphNode, _ *domain.MarketContext) float64 { return 5 })

	score := reg.Score(nodeFor("AAA", 1, 0), nodeFor("BBB", 1, 0), domain.NewMarketContext())
	assert.InDelta(t, 5.0, score, 1e-12)
}

func TestDefaultHeuristicsPreferSameChainAndDepth(t *testing.T) {
	reg := DefaultHeuristics()
	target := nodeFor("TGT", 1, 0)
	mc := domain.NewMarketContext()

	sameChainDeep := reg.Score(nodeFor("AAA", 1, 100_000_000), target, mc)
	otherChainThin := reg.Score(nodeFor("BBB", 137, 1_000), target, mc)

	assert.Less(t, sameChainDeep, otherChainThin, "lower score must mean more promising")
}

func TestZeroHeuristicsScoreNothing(t *testing.T) {
	reg := ZeroHeuristics()
	score := reg.Score(nodeFor("USDC", 1, 1_000_000), nodeFor("TGT", 137, 0), domain.NewMarketContext())
	assert.Zero(t, score)
}
