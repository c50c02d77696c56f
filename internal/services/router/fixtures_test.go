package router

import (
	"strings"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

func testToken(symbol string) domain.Token {
	return domain.Token{
		Address:  "0x" + strings.ToLower(symbol) + "000000",
		Symbol:   symbol,
		Decimals: 18,
		ChainID:  1,
	}
}

// testPool builds a concentrated-liquidity pool quoting a spot rate, the
// simplest shape for deterministic weight math.
func testPool(address, dex string, a, b domain.Token, rateAB, liquidityUSD, feeBps float64) *domain.LiquidityPool {
	return &domain.LiquidityPool{
		Address:      address,
		Dex:          dex,
		Kind:         domain.PoolConcentrated,
		ChainID:      1,
		TokenA:       a,
		TokenB:       b,
		SpotRateAB:   rateAB,
		LiquidityUSD: liquidityUSD,
		FeeBps:       feeBps,
		GasUSD:       0.5,
		Reliability:  99,
	}
}

// lineGraph wires A->B->C->D through one DEX with unit rates.
func lineGraph() (*Graph, []domain.TokenID) {
	a, b, c, d := testToken("AAA"), testToken("BBB"), testToken("CCC"), testToken("DDD")
	g := NewGraph()
	g.UpdateGraph([]*domain.LiquidityPool{
		testPool("pool-ab", "alpha", a, b, 1.0, 2_000_000, 30),
		testPool("pool-bc", "alpha", b, c, 1.0, 2_000_000, 30),
		testPool("pool-cd", "alpha", c, d, 1.0, 2_000_000, 30),
	})
	return g, []domain.TokenID{a.ID(), b.ID(), c.ID(), d.ID()}
}

func newTestRun(g *Graph, from, to domain.TokenID, amountUSD float64, opts domain.PathOptions) *searchRun {
	opts.Normalize()
	return &searchRun{
		snap:       g.Snapshot(),
		opts:       &opts,
		mc:         domain.NewMarketContext(),
		heuristics: DefaultHeuristics(),
		from:       from,
		to:         to,
		amountUSD:  amountUSD,
	}
}
