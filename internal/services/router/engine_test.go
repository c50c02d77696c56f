package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func newTestEngine(t *testing.T, g *Graph) *Engine {
	t.Helper()
	e := NewEngine(domain.NewStaticMarketData())
	e.graph = g
	t.Cleanup(func() { e.cache.Stop() })
	return e
}

func TestFindOptimalPathsValidation(t *testing.T) {
	g, ids := lineGraph()
	e := newTestEngine(t, g)
	ctx := context.Background()

	_, err := e.FindOptimalPaths(ctx, ids[0], ids[0], 1_000, domain.DefaultPathOptions())
	assert.ErrorIs(t, err, ErrSameToken)

	_, err = e.FindOptimalPaths(ctx, ids[0], ids[1], 0, domain.DefaultPathOptions())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = e.FindOptimalPaths(ctx, ids[0], domain.MakeTokenID(1, "0xmissing"), 1_000, domain.DefaultPathOptions())
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestFindOptimalPathsAnnotatesResults(t *testing.T) {
	g, ids := lineGraph()
	e := newTestEngine(t, g)

	results, err := e.FindOptimalPaths(context.Background(), ids[0], ids[2], 1_000, domain.DefaultPathOptions())
	require.NoError(t, err)
	require.NotEmpty(t, results)

	res := results[0]
	require.NotNil(t, res.Fees)
	assert.Positive(t, res.Fees.TotalUSD)
	assert.Len(t, res.Fees.LegFees, res.HopCount)
	require.NotNil(t, res.Slippage)
	assert.GreaterOrEqual(t, res.Slippage.MaximumSlippagePct, res.Slippage.ExpectedSlippagePct)
	require.NotNil(t, res.Liquidity)
	assert.True(t, res.Liquidity.Sufficient)
	assert.False(t, res.Diagnostics.FromCache)
}

func TestFindOptimalPathsServesFromCache(t *testing.T) {
	g, ids := lineGraph()
	e := newTestEngine(t, g)
	ctx := context.Background()
	opts := domain.DefaultPathOptions()

	first, err := e.FindOptimalPaths(ctx, ids[0], ids[2], 1_000, opts)
	require.NoError(t, err)

	second, err := e.FindOptimalPaths(ctx, ids[0], ids[2], 1_000, opts)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	assert.True(t, second[0].Diagnostics.FromCache)
	assert.False(t, first[0].Diagnostics.FromCache, "cached copy must not mutate the original")
	assert.Equal(t, first[0].NodeSequenceKey(), second[0].NodeSequenceKey())

	stats := e.GetPerformanceStats()
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
}

func TestUpdateGraphInvalidatesCache(t *testing.T) {
	g, ids := lineGraph()
	e := newTestEngine(t, g)
	ctx := context.Background()
	opts := domain.DefaultPathOptions()

	_, err := e.FindOptimalPaths(ctx, ids[0], ids[2], 1_000, opts)
	require.NoError(t, err)

	a, b := testToken("AAA"), testToken("BBB")
	require.NoError(t, e.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.2, 2_000_000, 30),
	}))

	results, err := e.FindOptimalPaths(ctx, ids[0], ids[2], 1_000, opts)
	require.NoError(t, err)
	assert.False(t, results[0].Diagnostics.FromCache)
}

func TestFindOptimalPathsNoRoute(t *testing.T) {
	a, b, c, d := testToken("AAA"), testToken("BBB"), testToken("CCC"), testToken("DDD")
	g := NewGraph()
	require.NoError(t, g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.0, 1_000_000, 30),
		testPool("pool-cd", "alpha", c, d, 1.0, 1_000_000, 30),
	}))
	e := newTestEngine(t, g)

	// No viable route is a normal empty outcome, never an error.
	results, err := e.FindOptimalPaths(context.Background(), a.ID(), d.ID(), 1_000, domain.DefaultPathOptions())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCalculateFeesIsDeterministic(t *testing.T) {
	g, ids := lineGraph()
	e := newTestEngine(t, g)
	ctx := context.Background()

	results, err := e.FindOptimalPaths(ctx, ids[0], ids[2], 1_000, domain.DefaultPathOptions())
	require.NoError(t, err)

	first := e.CalculateFees(ctx, results[0], 1_000)
	second := e.CalculateFees(ctx, results[0], 1_000)
	assert.Equal(t, first, second)
}

func TestGraphStatsExposed(t *testing.T) {
	g, _ := lineGraph()
	e := newTestEngine(t, g)

	stats := e.GetGraphStats()
	assert.Equal(t, 4, stats.Nodes)
	assert.Equal(t, 6, stats.Edges)
	assert.Equal(t, 3, stats.Pools)
}
