package router

import (
	"github.com/lumenfi/route-optimizer/internal/domain"
)

// Fee defaults, overridable through EngineConfig.
const (
	DefaultProtocolFeeRate = 0.0025
	DefaultFeeCapUSD       = 50.0
	DefaultBridgeFeeRate   = 0.0004
	DefaultBridgeFeeMinUSD = 2.0
)

// FeeCalculator prices a route's full cost stack: per-leg trading fees on the
// progressively reduced notional, gas scaled by the live multiplier, bridge
// fees on cross-chain legs, and the capped protocol fee on top.
type FeeCalculator struct {
	ProtocolFeeRate float64
	FeeCapUSD       float64
	BridgeFeeRate   float64
	BridgeFeeMinUSD float64
}

func NewFeeCalculator() *FeeCalculator {
	return &FeeCalculator{
		ProtocolFeeRate: DefaultProtocolFeeRate,
		FeeCapUSD:       DefaultFeeCapUSD,
		BridgeFeeRate:   DefaultBridgeFeeRate,
		BridgeFeeMinUSD: DefaultBridgeFeeMinUSD,
	}
}

// Calculate is pure: same route, amount, and market context always produce
// the same breakdown.
func (f *FeeCalculator) Calculate(route *domain.PathfindingResult, amountUSD float64, mc *domain.MarketContext) *domain.FeeBreakdown {
	breakdown := &domain.FeeBreakdown{
		ProtocolFeeRate: f.ProtocolFeeRate,
		LegFees:         make([]domain.LegFee, 0, len(route.Edges)),
	}

	notional := amountUSD
	for _, edge := range route.Edges {
		legFeeUSD := notional * edge.FeeBps / 10000
		gasUSD := edge.GasUSD * mc.GasFactor(edge.ChainID)

		breakdown.LegFees = append(breakdown.LegFees, domain.LegFee{
			PoolAddress: edge.PoolAddress,
			Dex:         edge.Dex,
			FeeBps:      edge.FeeBps,
			FeeUSD:      legFeeUSD,
			GasUSD:      gasUSD,
		})
		breakdown.GasUSD += gasUSD

		if edge.IsCrossChain() {
			bridgeFee := notional * f.BridgeFeeRate
			if bridgeFee < f.BridgeFeeMinUSD {
				bridgeFee = f.BridgeFeeMinUSD
			}
			breakdown.BridgeFeeUSD += bridgeFee
		}

		notional -= legFeeUSD
		if notional < 0 {
			notional = 0
		}
	}

	breakdown.ProtocolFeeUSD = amountUSD * f.ProtocolFeeRate
	if f.FeeCapUSD > 0 && breakdown.ProtocolFeeUSD > f.FeeCapUSD {
		breakdown.ProtocolFeeUSD = f.FeeCapUSD
		breakdown.FeeCapped = true
	}

	var legTotal float64
	for _, leg := range breakdown.LegFees {
		legTotal += leg.FeeUSD
	}
	breakdown.TotalUSD = legTotal + breakdown.GasUSD + breakdown.BridgeFeeUSD + breakdown.ProtocolFeeUSD
	if amountUSD > 0 {
		breakdown.EffectiveFeePct = breakdown.TotalUSD / amountUSD * 100
	}
	return breakdown
}
