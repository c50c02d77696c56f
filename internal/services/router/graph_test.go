package router

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func TestUpdateGraphBuildsBidirectionalEdges(t *testing.T) {
	a, b := testToken("AAA"), testToken("BBB")
	g := NewGraph()

	err := g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 2.0, 1_000_000, 30),
	})
	require.NoError(t, err)

	snap := g.Snapshot()
	assert.Equal(t, 2, snap.NodeCount())
	assert.Equal(t, 2, snap.EdgeCount())

	forward := snap.EdgesBetween(a.ID(), b.ID())
	require.Len(t, forward, 1)
	assert.InDelta(t, 2.0, forward[0].SpotRate, 1e-12)

	reverse := snap.EdgesBetween(b.ID(), a.ID())
	require.Len(t, reverse, 1)
	assert.InDelta(t, 0.5, reverse[0].SpotRate, 1e-12)
}

func TestUpdateGraphIdempotent(t *testing.T) {
	a, b, c := testToken("AAA"), testToken("BBB"), testToken("CCC")
	pools := []*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.0, 1_000_000, 30),
		testPool("pool-bc", "beta", b, c, 1.0, 1_000_000, 30),
	}

	g := NewGraph()
	require.NoError(t, g.UpdateGraph(pools))
	first := g.Stats()

	require.NoError(t, g.UpdateGraph(pools))
	second := g.Stats()

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
	assert.Equal(t, first.Pools, second.Pools)
}

func TestUpdateGraphRefreshesEdgeInPlace(t *testing.T) {
	a, b := testToken("AAA"), testToken("BBB")
	g := NewGraph()

	require.NoError(t, g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.0, 1_000_000, 30),
	}))
	require.NoError(t, g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.5, 3_000_000, 30),
	}))

	snap := g.Snapshot()
	assert.Equal(t, 2, snap.EdgeCount())

	edges := snap.EdgesBetween(a.ID(), b.ID())
	require.Len(t, edges, 1)
	assert.InDelta(t, 1.5, edges[0].SpotRate, 1e-12)
	assert.InDelta(t, 3_000_000, edges[0].LiquidityUSD, 1e-6)
}

func TestUpdateGraphKeepsParallelDexEdges(t *testing.T) {
	a, b := testToken("AAA"), testToken("BBB")
	g := NewGraph()

	require.NoError(t, g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-1", "alpha", a, b, 1.0, 1_000_000, 30),
		testPool("pool-2", "beta", a, b, 1.01, 500_000, 25),
	}))

	edges := g.Snapshot().EdgesBetween(a.ID(), b.ID())
	assert.Len(t, edges, 2)
	assert.Zero(t, g.Stats().EdgesDropped)
}

func TestUpdateGraphCapsParallelEdgesAndReportsDrops(t *testing.T) {
	a, b := testToken("AAA"), testToken("BBB")
	g := NewGraph()

	pools := make([]*domain.LiquidityPool, 0, MaxEdgesPerPair+1)
	for i := 0; i <= MaxEdgesPerPair; i++ {
		addr := fmt.Sprintf("pool-%d", i)
		dex := fmt.Sprintf("dex-%d", i)
		pools = append(pools, testPool(addr, dex, a, b, 1.0, float64(100_000*(i+1)), 30))
	}
	require.NoError(t, g.UpdateGraph(pools))

	// Lowest-liquidity edge past the cap is excluded in each direction.
	assert.Len(t, g.Snapshot().EdgesBetween(a.ID(), b.ID()), MaxEdgesPerPair)
	assert.Len(t, g.Snapshot().EdgesBetween(b.ID(), a.ID()), MaxEdgesPerPair)
	assert.Equal(t, 2, g.Stats().EdgesDropped)

	for _, edge := range g.Snapshot().EdgesBetween(a.ID(), b.ID()) {
		assert.NotEqual(t, "pool-0", edge.PoolAddress)
	}
}

func TestUpdateGraphAppliesValidAndReportsInvalid(t *testing.T) {
	a, b := testToken("AAA"), testToken("BBB")
	bad := testPool("", "alpha", a, b, 1.0, 1_000_000, 30) // missing address

	g := NewGraph()
	err := g.UpdateGraph([]*domain.LiquidityPool{
		bad,
		testPool("pool-ok", "alpha", a, b, 1.0, 1_000_000, 30),
	})

	require.Error(t, err)
	assert.Equal(t, 2, g.Snapshot().EdgeCount())
}

func TestSnapshotIsolatedFromLaterUpdates(t *testing.T) {
	a, b, c := testToken("AAA"), testToken("BBB"), testToken("CCC")
	g := NewGraph()
	require.NoError(t, g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.0, 1_000_000, 30),
	}))

	snap := g.Snapshot()
	require.NoError(t, g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-bc", "alpha", b, c, 1.0, 1_000_000, 30),
	}))

	assert.Equal(t, 2, snap.NodeCount())
	assert.Equal(t, 3, g.Snapshot().NodeCount())
}

func TestResetDropsEverything(t *testing.T) {
	g, _ := lineGraph()
	g.Reset()

	stats := g.Stats()
	assert.Zero(t, stats.Nodes)
	assert.Zero(t, stats.Edges)
	assert.Zero(t, stats.Pools)
}
