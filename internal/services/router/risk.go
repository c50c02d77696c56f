package router

import (
	"fmt"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

const (
	// liquiditySafetyMultiplier is how much headroom a pool must hold over
	// the trade notional before it counts as sufficient.
	liquiditySafetyMultiplier = 2.0

	// historicalBlendWeight is the share of observed slippage mixed into the
	// model estimate when history is available.
	historicalBlendWeight = 0.3

	utilizationWarnPct = 50.0
)

// RiskAssessor produces the advisory slippage and liquidity assessments
// attached to each ranked route. It reads the route and market context and
// never mutates either.
type RiskAssessor struct {
	SafetyMultiplier float64
	HistoricalWeight float64
}

func NewRiskAssessor() *RiskAssessor {
	return &RiskAssessor{
		SafetyMultiplier: liquiditySafetyMultiplier,
		HistoricalWeight: historicalBlendWeight,
	}
}

// EstimateSlippage sums per-hop impact, scales it by the most volatile token
// on the route, and blends in observed per-pool execution slippage when the
// market context carries it.
func (r *RiskAssessor) EstimateSlippage(route *domain.PathfindingResult, mc *domain.MarketContext) *domain.SlippageAnalysis {
	modeled := route.TotalPriceImpactPct

	maxVol := 0.0
	for _, id := range route.Nodes {
		if v := mc.VolatilityOf(id); v > maxVol {
			maxVol = v
		}
	}
	volAdj := 1 + maxVol

	expected := modeled * volAdj

	// Blend in observed execution slippage from each hop that has history.
	histSum, histHits := 0.0, 0
	for _, edge := range route.Edges {
		if hist, ok := mc.HistoricalSlippage(edge.PoolAddress); ok {
			histSum += hist
			histHits++
		}
	}
	histWeight := 0.0
	if histHits > 0 {
		histWeight = r.HistoricalWeight
		expected = expected*(1-histWeight) + histSum*histWeight
	}

	return &domain.SlippageAnalysis{
		ExpectedSlippagePct:  expected,
		MaximumSlippagePct:   expected * 1.5,
		VolatilityAdjustment: volAdj,
		HistoricalWeightPct:  histWeight * 100,
	}
}

// ValidateLiquidity checks every hop for depth against the trade notional
// with the safety multiplier applied. The route's thinnest pool decides
// sufficiency; warnings and split-trade recommendations accumulate per hop.
func (r *RiskAssessor) ValidateLiquidity(route *domain.PathfindingResult, amountUSD float64) *domain.LiquidityValidation {
	v := &domain.LiquidityValidation{
		Sufficient:       true,
		RequiredUSD:      amountUSD * r.SafetyMultiplier,
		SafetyMultiplier: r.SafetyMultiplier,
	}

	thinnest := 0.0
	for i, edge := range route.Edges {
		if i == 0 || edge.LiquidityUSD < thinnest {
			thinnest = edge.LiquidityUSD
		}

		if edge.LiquidityUSD < v.RequiredUSD {
			v.Sufficient = false
			v.Warnings = append(v.Warnings, fmt.Sprintf(
				"hop %d (%s via %s) holds $%.0f liquidity, below the $%.0f required",
				i+1, edge.Dex, edge.PoolAddress, edge.LiquidityUSD, v.RequiredUSD))
		}

		if edge.LiquidityUSD > 0 {
			util := amountUSD / edge.LiquidityUSD * 100
			if util > utilizationWarnPct {
				v.Warnings = append(v.Warnings, fmt.Sprintf(
					"hop %d consumes %.1f%% of pool depth", i+1, util))
				v.Recommendations = append(v.Recommendations, fmt.Sprintf(
					"split the trade into %d smaller orders to stay under %.0f%% utilization on hop %d",
					splitCount(util), utilizationWarnPct, i+1))
			}
		}
	}

	v.AvailableUSD = thinnest
	if thinnest > 0 {
		v.UtilizationPct = amountUSD / thinnest * 100
	}
	return v
}

func splitCount(utilizationPct float64) int {
	n := int(utilizationPct/utilizationWarnPct) + 1
	if n < 2 {
		n = 2
	}
	return n
}
