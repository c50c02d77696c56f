package router

import (
	"math"
	"sort"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

// minConfidence is the floor below which a candidate route is discarded
// during ranking regardless of its cost.
const minConfidence = 0.2

// routeConfidence scores a candidate route in [0,1] from the signals that
// correlate with a quote surviving until execution: pool reliability, route
// length, price impact, and how deep the trade sits in the route's thinnest
// pool.
func routeConfidence(res *domain.PathfindingResult, amountUSD float64) float64 {
	if len(res.Edges) == 0 {
		return 0
	}

	reliability := 0.0
	thinnest := math.Inf(1)
	for _, edge := range res.Edges {
		reliability += edge.Reliability / 100
		if edge.LiquidityUSD < thinnest {
			thinnest = edge.LiquidityUSD
		}
	}
	reliability /= float64(len(res.Edges))

	hopFactor := 1 - 0.08*float64(res.HopCount-1)
	if hopFactor < 0.4 {
		hopFactor = 0.4
	}

	impactFactor := 1 - res.TotalPriceImpactPct/20
	if impactFactor < 0 {
		impactFactor = 0
	}

	depthFactor := 1.0
	if thinnest > 0 && amountUSD > 0 {
		if used := amountUSD / thinnest; used > 0.1 {
			depthFactor = 1 - math.Min(1, (used-0.1)/0.9)*0.6
		}
	}

	c := reliability * hopFactor * impactFactor * depthFactor
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// isValidPath applies the hard constraint checks that the soft search
// penalties only discouraged: hop bound, per-edge liquidity floor, and both
// per-edge and cumulative impact against the slippage cap.
func (r *searchRun) isValidPath(res *domain.PathfindingResult) bool {
	if res == nil || len(res.Edges) == 0 || res.HopCount > r.opts.MaxHops {
		return false
	}
	if res.TotalPriceImpactPct > r.opts.MaxSlippagePct {
		return false
	}

	amount := edgeAmountIn(r.snap, r.mc, res.Edges[0], r.amountUSD)
	for _, edge := range res.Edges {
		if r.opts.MinLiquidityUSD > 0 && edge.LiquidityUSD < r.opts.MinLiquidityUSD {
			return false
		}
		rate, impact := edgeQuote(edge, amount)
		if impact > r.opts.MaxSlippagePct {
			return false
		}
		amount *= rate
	}
	return true
}

// isValidCycle applies the hard bounds that still make sense on a cycle:
// per-edge liquidity floor and cumulative impact against the slippage cap.
// The hop bound is enforced during extraction, and confidence scoring is a
// point-to-point concern.
func (r *searchRun) isValidCycle(res *domain.PathfindingResult) bool {
	if res == nil || len(res.Edges) == 0 {
		return false
	}
	if res.TotalPriceImpactPct > r.opts.MaxSlippagePct {
		return false
	}
	for _, edge := range res.Edges {
		if r.opts.MinLiquidityUSD > 0 && edge.LiquidityUSD < r.opts.MinLiquidityUSD {
			return false
		}
	}
	return true
}

// filterAndSortResults drops invalid and low-confidence candidates,
// de-duplicates node sequences keeping the cheapest, and orders the survivors
// for the configured objective. Arbitrage cycles skip the confidence floor
// but still honor the caller's liquidity and slippage bounds.
func (r *searchRun) filterAndSortResults(candidates []*domain.PathfindingResult) []*domain.PathfindingResult {
	best := make(map[string]*domain.PathfindingResult, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, res := range candidates {
		if res == nil {
			continue
		}
		if res.Arbitrage {
			if !r.isValidCycle(res) {
				continue
			}
		} else if !r.isValidPath(res) || res.Confidence < minConfidence {
			continue
		}
		key := res.NodeSequenceKey()
		if prev, ok := best[key]; ok {
			if res.TotalWeight < prev.TotalWeight {
				best[key] = res
			}
			continue
		}
		best[key] = res
		order = append(order, key)
	}

	kept := make([]*domain.PathfindingResult, 0, len(order))
	for _, key := range order {
		kept = append(kept, best[key])
	}

	sort.SliceStable(kept, func(i, j int) bool { return r.lessForObjective(kept[i], kept[j]) })

	if len(kept) > r.opts.MaxPaths {
		kept = kept[:r.opts.MaxPaths]
	}
	return kept
}

func (r *searchRun) lessForObjective(a, b *domain.PathfindingResult) bool {
	// Profitable cycles always lead, most profitable first.
	if a.Arbitrage != b.Arbitrage {
		return a.Arbitrage
	}
	if a.Arbitrage {
		return a.ProfitFactor > b.ProfitFactor
	}

	switch r.opts.OptimizeFor {
	case domain.OptimizeOutput:
		return a.EstimatedOutUSD > b.EstimatedOutUSD
	case domain.OptimizeGas:
		return a.TotalGasUSD < b.TotalGasUSD
	case domain.OptimizeSpeed:
		if a.HopCount != b.HopCount {
			return a.HopCount < b.HopCount
		}
		return avgReliability(a) > avgReliability(b)
	case domain.OptimizeSafety:
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.TotalPriceImpactPct < b.TotalPriceImpactPct
	default:
		return balancedScore(a) > balancedScore(b)
	}
}

func avgReliability(res *domain.PathfindingResult) float64 {
	if len(res.Edges) == 0 {
		return 0
	}
	var sum float64
	for _, edge := range res.Edges {
		sum += edge.Reliability
	}
	return sum / float64(len(res.Edges))
}

// balancedScore is the composite used by the default objective. The terms are
// normalized with soft scales rather than across the candidate set so the
// ordering is stable regardless of which other routes were found.
func balancedScore(res *domain.PathfindingResult) float64 {
	output := res.EstimatedOutUSD / (res.EstimatedOutUSD + res.TotalFeeUSD + res.TotalGasUSD + 1)
	gas := 1 / (1 + res.TotalGasUSD/gasScaleUSD)
	latency := 1 / float64(res.HopCount)
	reliability := avgReliability(res) / 100
	simplicity := 1 - float64(res.HopCount-1)/8

	return 0.35*output + 0.2*gas + 0.1*latency + 0.25*reliability + 0.1*simplicity
}
