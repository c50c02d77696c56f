package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

// triangleGraph wires A->B->C->A. With rate > 1 on each pool the cycle's
// combined rate beats 1 and its weight sum goes negative.
func triangleGraph(rate float64) (*Graph, []domain.TokenID) {
	a, b, c := testToken("AAA"), testToken("BBB"), testToken("CCC")
	g := NewGraph()
	g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, rate, 5_000_000, 5),
		testPool("pool-bc", "alpha", b, c, rate, 5_000_000, 5),
		testPool("pool-ca", "alpha", c, a, rate, 5_000_000, 5),
	})
	return g, []domain.TokenID{a.ID(), b.ID(), c.ID()}
}

func TestBellmanFordDetectsArbitrageCycle(t *testing.T) {
	g, ids := triangleGraph(1.1)
	run := newTestRun(g, ids[0], ids[2], 1_000, domain.PathOptions{
		MaxHops:          4,
		MaxPaths:         5,
		OptimizeFor:      domain.OptimizeOutput,
		IncludeArbitrage: true,
	})

	results, err := run.bellmanFord(context.Background())
	require.NoError(t, err)

	var cycles, routes int
	for _, res := range results {
		if res.Arbitrage {
			cycles++
			assert.Greater(t, res.ProfitFactor, 1.0)
			assert.Negative(t, res.TotalWeight)
			assert.Equal(t, res.Nodes[0], res.Nodes[len(res.Nodes)-1])
		} else {
			routes++
		}
	}
	assert.Positive(t, cycles, "expected at least one arbitrage cycle")
	assert.Positive(t, routes, "expected the point-to-point route too")
}

func TestBellmanFordNoFalseArbitrage(t *testing.T) {
	// Unit rates with fees: every cycle loses money.
	g, ids := triangleGraph(1.0)
	run := newTestRun(g, ids[0], ids[2], 1_000, domain.PathOptions{
		MaxHops:          4,
		MaxPaths:         5,
		OptimizeFor:      domain.OptimizeOutput,
		IncludeArbitrage: true,
	})

	results, err := run.bellmanFord(context.Background())
	require.NoError(t, err)

	for _, res := range results {
		assert.False(t, res.Arbitrage, "no cycle should be profitable")
	}
}

func TestBellmanFordArbitrageGatedByOption(t *testing.T) {
	g, ids := triangleGraph(1.1)
	run := newTestRun(g, ids[0], ids[2], 1_000, domain.PathOptions{
		MaxHops:     4,
		MaxPaths:    5,
		OptimizeFor: domain.OptimizeOutput,
	})

	results, err := run.bellmanFord(context.Background())
	require.NoError(t, err)

	for _, res := range results {
		assert.False(t, res.Arbitrage)
	}
}

func TestBellmanFordShortestRouteMatchesDijkstra(t *testing.T) {
	g, ids := lineGraph()
	opts := domain.PathOptions{MaxHops: 4, MaxPaths: 3, OptimizeFor: domain.OptimizeOutput}

	bf := newTestRun(g, ids[0], ids[2], 1_000, opts)
	bfResults, err := bf.bellmanFord(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, bfResults)

	dj := newTestRun(g, ids[0], ids[2], 1_000, opts)
	djResults, err := dj.dijkstra(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, djResults)

	assert.Equal(t, djResults[0].NodeSequenceKey(), bfResults[0].NodeSequenceKey())
}
