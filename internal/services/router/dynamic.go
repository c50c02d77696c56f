package router

import (
	"context"
	"math"
	"sort"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

// dynamic is the bounded-hop table strategy: layer h holds the cheapest known
// cost of reaching each node in exactly h hops, built by relaxing every edge
// from layer h-1. One candidate route per depth is reconstructed, so the
// caller sees the best 1-hop, best 2-hop, ... best maxHops route rather than
// maxPaths variations of the same depth.
func (r *searchRun) dynamic(ctx context.Context) ([]*domain.PathfindingResult, error) {
	edges := r.snap.Edges()
	for _, edge := range edges {
		if err := r.snap.checkIntegrity(edge); err != nil {
			return nil, err
		}
	}

	weights := make([]float64, len(edges))
	for i, edge := range edges {
		weights[i] = r.weight(edge)
	}

	layers := make([]dpLayer, r.opts.MaxHops+1)
	layers[0] = dpLayer{cost: map[domain.TokenID]float64{r.from: 0}}

	for h := 1; h <= r.opts.MaxHops; h++ {
		if ctx.Err() != nil {
			return nil, newTimeoutError(domain.AlgorithmDynamic, r.opts.Timeout)
		}
		cur := dpLayer{
			cost:   make(map[domain.TokenID]float64),
			parent: make(map[domain.TokenID]*domain.GraphEdge),
		}
		prev := layers[h-1]
		for i, edge := range edges {
			d, ok := prev.cost[edge.From]
			if !ok {
				continue
			}
			r.explored++
			next := d + weights[i]
			if best, seen := cur.cost[edge.To]; !seen || next < best {
				cur.cost[edge.To] = next
				cur.parent[edge.To] = edge
			}
		}
		layers[h] = cur
	}

	var results []*domain.PathfindingResult
	for h := 1; h <= r.opts.MaxHops; h++ {
		cost, ok := layers[h].cost[r.to]
		if !ok || math.IsInf(cost, 1) {
			continue
		}
		path := reconstructLayered(layers[1:h+1], r.to)
		if path == nil {
			continue
		}
		if res := r.buildResult(path, cost, domain.AlgorithmDynamic); res != nil {
			results = append(results, res)
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].TotalWeight < results[j].TotalWeight })
	if len(results) > r.opts.MaxPaths {
		results = results[:r.opts.MaxPaths]
	}
	return results, nil
}

// dpLayer holds the cheapest known cost and incoming edge per node at one
// exact hop depth.
type dpLayer struct {
	cost   map[domain.TokenID]float64
	parent map[domain.TokenID]*domain.GraphEdge
}

// reconstructLayered walks parents down the layer stack. Because each layer
// fixes the hop count the walk cannot loop forever, but it can revisit a
// token; such walks are rejected since a route must be loopless.
func reconstructLayered(layers []dpLayer, to domain.TokenID) []*domain.GraphEdge {
	edges := make([]*domain.GraphEdge, len(layers))
	seen := map[domain.TokenID]struct{}{to: {}}
	at := to
	for h := len(layers) - 1; h >= 0; h-- {
		edge := layers[h].parent[at]
		if edge == nil {
			return nil
		}
		if _, dup := seen[edge.From]; dup {
			return nil
		}
		seen[edge.From] = struct{}{}
		edges[h] = edge
		at = edge.From
	}
	return edges
}
