package domain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantProductOut(t *testing.T) {
	// out = 2000 * 100 / (1000 + 100) = 181
	out := ConstantProductOut(big.NewInt(1000), big.NewInt(2000), big.NewInt(100))
	require.NotNil(t, out)
	assert.Equal(t, int64(181), out.Int64())

	// Swapping against an empty pool yields nothing meaningful.
	zero := ConstantProductOut(big.NewInt(0), big.NewInt(0), big.NewInt(0))
	assert.Nil(t, zero)
}

func TestBindSourceCoversEveryPoolKind(t *testing.T) {
	for _, kind := range []PoolKind{PoolConstantProduct, PoolConcentrated, PoolStableSwap, PoolBridge} {
		edge := &GraphEdge{
			Kind:         kind,
			PoolAddress:  "pool-" + kind.String(),
			Dex:          "alpha",
			FeeBps:       30,
			LiquidityUSD: 1_000_000,
			SpotRate:     1,
			Reliability:  99,
		}
		edge.BindSource()

		src := edge.Source()
		require.NotNil(t, src, kind.String())
		// The shared descriptor fields must read through to the edge.
		assert.Equal(t, edge.PoolAddress, src.PoolAddress())
		assert.Equal(t, edge.FeeBps, src.FeeBps())
		assert.Equal(t, edge.LiquidityUSD, src.LiquidityUSD())

		rate, impact := src.EffectiveRate(10_000)
		assert.Greater(t, rate, 0.0, kind.String())
		assert.GreaterOrEqual(t, impact, 0.0, kind.String())
	}
}

func TestConstantProductSourceImpactGrowsWithSize(t *testing.T) {
	reserve := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18))
	edge := &GraphEdge{
		Kind:         PoolConstantProduct,
		ReserveIn:    reserve,
		ReserveOut:   new(big.Int).Set(reserve),
		DecimalsIn:   18,
		DecimalsOut:  18,
		SpotRate:     1,
		LiquidityUSD: 2_000_000,
	}
	edge.BindSource()

	smallRate, smallImpact := edge.Source().EffectiveRate(1_000)
	largeRate, largeImpact := edge.Source().EffectiveRate(100_000)

	assert.Greater(t, largeImpact, smallImpact)
	assert.Less(t, largeRate, smallRate)
	// Exact x*y=k: swapping 10% of the reserve lands near 1/1.1 output rate.
	assert.InDelta(t, 1/1.1, largeRate, 1e-3)
}

func TestStableSwapParityFallback(t *testing.T) {
	edge := &GraphEdge{
		Kind:         PoolStableSwap,
		LiquidityUSD: 5_000_000,
		StablePair:   true,
	}
	edge.BindSource()

	rate, impact := edge.Source().EffectiveRate(10_000)
	assert.InDelta(t, 1.0, rate, 0.01)
	assert.Less(t, impact, 0.1, "stable pools stay near-flat inside the band")
}

func TestConcentratedImpactBelowFallbackModel(t *testing.T) {
	base := &GraphEdge{Kind: PoolConstantProduct, SpotRate: 1, LiquidityUSD: 1_000_000}
	base.BindSource()
	cl := &GraphEdge{Kind: PoolConcentrated, SpotRate: 1, LiquidityUSD: 1_000_000}
	cl.BindSource()

	_, baseImpact := base.Source().EffectiveRate(10_000)
	_, clImpact := cl.Source().EffectiveRate(10_000)
	assert.Less(t, clImpact, baseImpact)
}

func TestShallowImpactBounds(t *testing.T) {
	assert.InDelta(t, 100, shallowImpact(1, 0, 1), 1e-12)
	assert.InDelta(t, 100, shallowImpact(1e12, 1_000, 1), 1e-12)
	assert.Zero(t, shallowImpact(-5, 1_000, 1))
}

func TestClassifyImpactBands(t *testing.T) {
	assert.Equal(t, SeverityNone, ClassifyImpact(0.05))
	assert.Equal(t, SeverityLow, ClassifyImpact(0.5))
	assert.Equal(t, SeverityModerate, ClassifyImpact(2))
	assert.Equal(t, SeverityHigh, ClassifyImpact(4))
	assert.Equal(t, SeverityExtreme, ClassifyImpact(7))
}
