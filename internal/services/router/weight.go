package router

import (
	"math"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

const (
	// Weight clamps keep -log(rate) finite for degenerate pools.
	maxEdgeWeight = 230.0
	minEdgeWeight = -230.0

	// hopPenalty is added per edge by the frontier searches to discourage
	// unnecessarily long routes.
	hopPenalty = 0.05

	// softConstraintPenalty strongly disfavors edges that breach the caller's
	// slippage/liquidity bounds without removing them from the search: a
	// near-violating edge can still carry a route when nothing compliant
	// exists. Hard exclusion happens later in isValidPath.
	softConstraintPenalty = 25.0

	// reliabilityThreshold is where the speed objective starts charging a
	// latency penalty.
	reliabilityThreshold = 90.0

	gasScaleUSD = 10.0
	feeScaleBps = 100.0
)

// edgeAmountIn converts the trade's USD notional into input-token units for
// one edge, using the market context price with the node's indexed price as
// fallback.
func edgeAmountIn(snap *Snapshot, mc *domain.MarketContext, edge *domain.GraphEdge, amountUSD float64) float64 {
	price := mc.PriceUSD(edge.From)
	if price <= 0 {
		if node := snap.Node(edge.From); node != nil {
			price = node.PriceUSD
		}
	}
	if price <= 0 {
		price = 1
	}
	return amountUSD / price
}

// edgeQuote returns the post-fee, post-impact output-per-input rate and the
// price impact for a trade of the given size through the edge.
func edgeQuote(edge *domain.GraphEdge, amountIn float64) (float64, float64) {
	rate, impact := edge.Source().EffectiveRate(amountIn)
	rate *= 1 - edge.FeeBps/10000
	return rate, impact
}

// rateWeight maps an effective exchange rate to an additive cost: -log(rate),
// so multiplying rates along a path becomes summing weights and a cycle whose
// combined rate exceeds 1 sums negative.
func rateWeight(rate float64) float64 {
	if rate <= 0 || math.IsNaN(rate) {
		return maxEdgeWeight
	}
	w := -math.Log(rate)
	if w > maxEdgeWeight {
		return maxEdgeWeight
	}
	if w < minEdgeWeight {
		return minEdgeWeight
	}
	return w
}

// calculateEdgeWeight derives the scalar cost of one edge for the configured
// objective. Weight is always evaluated at search time from the edge, the
// trade size, the options, and the market context; it is never stored.
func calculateEdgeWeight(snap *Snapshot, edge *domain.GraphEdge, amountUSD float64, opts *domain.PathOptions, mc *domain.MarketContext) float64 {
	amountIn := edgeAmountIn(snap, mc, edge, amountUSD)
	rate, impact := edgeQuote(edge, amountIn)
	base := rateWeight(rate)
	gasUSD := edge.GasUSD * mc.GasFactor(edge.ChainID)

	var w float64
	switch opts.OptimizeFor {
	case domain.OptimizeOutput:
		w = base
	case domain.OptimizeGas:
		w = gasUSD
	case domain.OptimizeSpeed:
		w = base
		if edge.Reliability < reliabilityThreshold {
			w += (reliabilityThreshold - edge.Reliability) * 0.05
		}
	case domain.OptimizeSafety:
		w = base + (100-edge.Reliability)*0.02
	default: // balanced
		w = 0.5*base + 0.3*(gasUSD/gasScaleUSD) + 0.2*(edge.FeeBps/feeScaleBps)
	}

	if impact > opts.MaxSlippagePct {
		w += softConstraintPenalty
	}
	if opts.MinLiquidityUSD > 0 && edge.LiquidityUSD < opts.MinLiquidityUSD {
		w += softConstraintPenalty
	}
	return w
}
