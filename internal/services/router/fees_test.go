package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func twoHopRoute() *domain.PathfindingResult {
	a, b, c := testToken("AAA"), testToken("BBB"), testToken("CCC")
	return &domain.PathfindingResult{
		Nodes: []domain.TokenID{a.ID(), b.ID(), c.ID()},
		Edges: []*domain.GraphEdge{
			{From: a.ID(), To: b.ID(), PoolAddress: "pool-ab", Dex: "alpha", ChainID: 1, FeeBps: 30, GasUSD: 1, LiquidityUSD: 1_000_000},
			{From: b.ID(), To: c.ID(), PoolAddress: "pool-bc", Dex: "beta", ChainID: 1, FeeBps: 20, GasUSD: 2, LiquidityUSD: 1_000_000},
		},
		HopCount: 2,
	}
}

func TestFeeCalculatorProgressiveNotional(t *testing.T) {
	f := NewFeeCalculator()
	route := twoHopRoute()
	mc := domain.NewMarketContext()

	breakdown := f.Calculate(route, 10_000, mc)
	require.Len(t, breakdown.LegFees, 2)

	// First leg: 30bps on the full notional.
	assert.InDelta(t, 10_000*0.003, breakdown.LegFees[0].FeeUSD, 1e-9)
	// Second leg: 20bps on the reduced notional.
	assert.InDelta(t, (10_000-30)*0.002, breakdown.LegFees[1].FeeUSD, 1e-9)

	assert.InDelta(t, 3, breakdown.GasUSD, 1e-9)
	assert.Zero(t, breakdown.BridgeFeeUSD)
	assert.Positive(t, breakdown.EffectiveFeePct)
}

func TestFeeCalculatorProtocolFeeCap(t *testing.T) {
	f := NewFeeCalculator()
	route := twoHopRoute()
	mc := domain.NewMarketContext()

	small := f.Calculate(route, 1_000, mc)
	assert.False(t, small.FeeCapped)
	assert.InDelta(t, 1_000*f.ProtocolFeeRate, small.ProtocolFeeUSD, 1e-9)

	large := f.Calculate(route, 1_000_000, mc)
	assert.True(t, large.FeeCapped)
	assert.InDelta(t, f.FeeCapUSD, large.ProtocolFeeUSD, 1e-9)
}

func TestFeeCalculatorGasMultiplier(t *testing.T) {
	f := NewFeeCalculator()
	route := twoHopRoute()

	mc := domain.NewMarketContext()
	mc.GasMultiplier[1] = 3

	breakdown := f.Calculate(route, 10_000, mc)
	assert.InDelta(t, 9, breakdown.GasUSD, 1e-9)
}

func TestFeeCalculatorBridgeFee(t *testing.T) {
	f := NewFeeCalculator()
	route := twoHopRoute()
	// Make the second hop cross-chain.
	route.Edges[1].To = domain.MakeTokenID(137, "0xccc000000")

	breakdown := f.Calculate(route, 10_000, domain.NewMarketContext())
	assert.Positive(t, breakdown.BridgeFeeUSD)
	assert.GreaterOrEqual(t, breakdown.BridgeFeeUSD, f.BridgeFeeMinUSD)
}

func TestRiskAssessorSlippage(t *testing.T) {
	r := NewRiskAssessor()
	route := twoHopRoute()
	route.TotalPriceImpactPct = 1.0

	mc := domain.NewMarketContext()
	base := r.EstimateSlippage(route, mc)
	assert.InDelta(t, 1.0, base.ExpectedSlippagePct, 1e-9)
	assert.InDelta(t, 1.5, base.MaximumSlippagePct, 1e-9)

	mc.Volatility[route.Nodes[1]] = 0.5
	volatile := r.EstimateSlippage(route, mc)
	assert.InDelta(t, 1.5, volatile.ExpectedSlippagePct, 1e-9)
	assert.InDelta(t, 1.5, volatile.VolatilityAdjustment, 1e-9)

	mc.HistSlippage["pool-ab"] = 3.0
	blended := r.EstimateSlippage(route, mc)
	assert.Greater(t, blended.ExpectedSlippagePct, volatile.ExpectedSlippagePct)
	assert.Positive(t, blended.HistoricalWeightPct)
}

func TestRiskAssessorLiquidityValidation(t *testing.T) {
	r := NewRiskAssessor()
	route := twoHopRoute()

	ok := r.ValidateLiquidity(route, 10_000)
	assert.True(t, ok.Sufficient)
	assert.Empty(t, ok.Warnings)
	assert.InDelta(t, 1_000_000, ok.AvailableUSD, 1e-6)

	deep := r.ValidateLiquidity(route, 800_000)
	assert.False(t, deep.Sufficient)
	assert.NotEmpty(t, deep.Warnings)
	assert.NotEmpty(t, deep.Recommendations)
	assert.Greater(t, deep.UtilizationPct, 50.0)
}
