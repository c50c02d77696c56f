package router

import (
	"math"
	"sync"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

// HeuristicFunc scores how promising a node looks on the way to the target.
// Lower is better; negative values are bonuses.
type HeuristicFunc func(node, target *domain.GraphNode, mc *domain.MarketContext) float64

type weightedHeuristic struct {
	name   string
	weight float64
	fn     HeuristicFunc
}

// HeuristicRegistry holds named, weighted scoring functions consumed by the
// guided best-first search. The blended score carries no admissibility
// guarantee; see the note on (*searchRun).astar.
type HeuristicRegistry struct {
	mu      sync.RWMutex
	entries []weightedHeuristic
}

func NewHeuristicRegistry() *HeuristicRegistry {
	return &HeuristicRegistry{}
}

func (r *HeuristicRegistry) Register(name string, weight float64, fn HeuristicFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].name == name {
			r.entries[i].weight = weight
			r.entries[i].fn = fn
			return
		}
	}
	r.entries = append(r.entries, weightedHeuristic{name: name, weight: weight, fn: fn})
}

// SetWeight adjusts a registered heuristic, returning false if unknown.
func (r *HeuristicRegistry) SetWeight(name string, weight float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].name == name {
			r.entries[i].weight = weight
			return true
		}
	}
	return false
}

// Score returns the weighted sum over all registered heuristics.
func (r *HeuristicRegistry) Score(node, target *domain.GraphNode, mc *domain.MarketContext) float64 {
	if node == nil || target == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var score float64
	for i := range r.entries {
		if r.entries[i].weight == 0 {
			continue
		}
		score += r.entries[i].weight * r.entries[i].fn(node, target, mc)
	}
	return score
}

const (
	HeuristicChainLocality = "chain-locality"
	HeuristicLiquidity     = "liquidity"
	HeuristicStablecoin    = "stablecoin-bias"
	HeuristicVolume        = "volume-bonus"
	HeuristicVolatility    = "volatility-penalty"
)

// DefaultHeuristics registers the standard signal blend.
func DefaultHeuristics() *HeuristicRegistry {
	r := NewHeuristicRegistry()

	// Crossing chains costs a bridge hop, so prefer staying on the target's chain.
	r.Register(HeuristicChainLocality, 1.0, func(node, target *domain.GraphNode, _ *domain.MarketContext) float64 {
		if node.Token.ChainID == target.Token.ChainID {
			return 0
		}
		return 2.0
	})

	// Deep nodes are likelier to reach anywhere cheaply.
	r.Register(HeuristicLiquidity, 0.5, func(node, _ *domain.GraphNode, _ *domain.MarketContext) float64 {
		if node.TVLUSD <= 0 {
			return 0
		}
		return -math.Min(1, math.Log10(1+node.TVLUSD)/9)
	})

	// Stablecoins are the usual routing hubs.
	r.Register(HeuristicStablecoin, 0.3, func(node, _ *domain.GraphNode, _ *domain.MarketContext) float64 {
		if domain.IsStablecoin(node.Token.Symbol) {
			return -0.5
		}
		return 0
	})

	r.Register(HeuristicVolume, 0.3, func(node, _ *domain.GraphNode, _ *domain.MarketContext) float64 {
		if node.VolumeUSD24h <= 0 {
			return 0
		}
		return -math.Min(1, math.Log10(1+node.VolumeUSD24h)/8)
	})

	r.Register(HeuristicVolatility, 0.4, func(node, _ *domain.GraphNode, mc *domain.MarketContext) float64 {
		return mc.VolatilityOf(node.ID())
	})

	return r
}

// ZeroHeuristics returns a registry whose score is always zero, degrading the
// guided search to the plain weighted search.
func ZeroHeuristics() *HeuristicRegistry {
	return NewHeuristicRegistry()
}
