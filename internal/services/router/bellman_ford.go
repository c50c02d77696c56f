package router

import (
	"context"
	"math"

	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/metrics"
)

// relaxEpsilon guards against float noise re-triggering relaxation.
const relaxEpsilon = 1e-12

// bellmanFord relaxes every edge over |V|-1 rounds, tolerating the negative
// weights that favorable rate combinations produce. One extra pass then
// detects edges that still relax: each marks a negative cycle, which is
// extracted and reported as an arbitrage result distinct from the
// point-to-point route.
func (r *searchRun) bellmanFord(ctx context.Context) ([]*domain.PathfindingResult, error) {
	nodes := r.snap.NodeIDs()
	edges := r.snap.Edges()

	for _, edge := range edges {
		if err := r.snap.checkIntegrity(edge); err != nil {
			return nil, err
		}
	}

	// Weights are stable for the whole run; evaluate once per edge.
	weights := make([]float64, len(edges))
	for i, edge := range edges {
		weights[i] = r.weight(edge)
	}

	dist := make(map[domain.TokenID]float64, len(nodes))
	parent := make(map[domain.TokenID]*domain.GraphEdge, len(nodes))
	for _, id := range nodes {
		dist[id] = math.Inf(1)
	}
	dist[r.from] = 0

	for round := 0; round < len(nodes)-1; round++ {
		if ctx.Err() != nil {
			return nil, newTimeoutError(domain.AlgorithmBellmanFord, r.opts.Timeout)
		}
		changed := false
		for i, edge := range edges {
			d := dist[edge.From]
			if math.IsInf(d, 1) {
				continue
			}
			r.explored++
			if next := d + weights[i]; next < dist[edge.To]-relaxEpsilon {
				dist[edge.To] = next
				parent[edge.To] = edge
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	var results []*domain.PathfindingResult

	if r.opts.IncludeArbitrage {
		seen := make(map[string]struct{})
		for i, edge := range edges {
			d := dist[edge.From]
			if math.IsInf(d, 1) || d+weights[i] >= dist[edge.To]-relaxEpsilon {
				continue
			}
			cycle := extractCycle(parent, edge, len(nodes))
			if cycle == nil || len(cycle) > r.opts.MaxHops {
				continue
			}
			res := r.buildCycleResult(cycle)
			if res == nil || res.ProfitFactor <= 1 {
				continue
			}
			key := res.NodeSequenceKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			metrics.ArbitrageCycles.Inc()
			results = append(results, res)
			if len(results) >= r.opts.MaxPaths {
				break
			}
		}
	}

	if route := r.reconstructRoute(dist, parent); route != nil {
		results = append(results, route)
	}

	return results, nil
}

// reconstructRoute walks parents back from the target. A nil return means the
// target is unreachable or the path breaches the hop bound.
func (r *searchRun) reconstructRoute(dist map[domain.TokenID]float64, parent map[domain.TokenID]*domain.GraphEdge) *domain.PathfindingResult {
	if math.IsInf(dist[r.to], 1) {
		return nil
	}
	var rev []*domain.GraphEdge
	for at := r.to; at != r.from; {
		edge := parent[at]
		if edge == nil || len(rev) > len(dist) {
			return nil // parent chain corrupted by a cycle upstream
		}
		rev = append(rev, edge)
		at = edge.From
	}
	if len(rev) > r.opts.MaxHops {
		return nil
	}
	edges := make([]*domain.GraphEdge, len(rev))
	for i, e := range rev {
		edges[len(rev)-1-i] = e
	}
	return r.buildResult(edges, dist[r.to], domain.AlgorithmBellmanFord)
}

// extractCycle steps |V| parents back from a still-relaxing edge to land
// inside the cycle, then collects it.
func extractCycle(parent map[domain.TokenID]*domain.GraphEdge, edge *domain.GraphEdge, nodeCount int) []*domain.GraphEdge {
	at := edge.To
	for i := 0; i < nodeCount; i++ {
		p := parent[at]
		if p == nil {
			return nil
		}
		at = p.From
	}

	start := at
	var rev []*domain.GraphEdge
	for {
		p := parent[at]
		if p == nil {
			return nil
		}
		rev = append(rev, p)
		at = p.From
		if at == start {
			break
		}
		if len(rev) > nodeCount {
			return nil
		}
	}

	cycle := make([]*domain.GraphEdge, len(rev))
	for i, e := range rev {
		cycle[len(rev)-1-i] = e
	}
	return cycle
}

// buildCycleResult builds the arbitrage-category result for a negative
// cycle. ProfitFactor is the post-fee, post-impact rate product around the
// loop, which is unit-consistent because the cycle returns to its start token.
func (r *searchRun) buildCycleResult(cycle []*domain.GraphEdge) *domain.PathfindingResult {
	res := r.buildResult(cycle, 0, domain.AlgorithmBellmanFord)
	if res == nil {
		return nil
	}

	profit := 1.0
	amount := edgeAmountIn(r.snap, r.mc, cycle[0], r.amountUSD)
	var weight float64
	for _, edge := range cycle {
		rate, _ := edgeQuote(edge, amount)
		profit *= rate
		weight += rateWeight(rate)
		amount *= rate
	}

	res.Arbitrage = true
	res.ProfitFactor = profit
	res.TotalWeight = weight
	return res
}
