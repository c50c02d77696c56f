package router

import (
	"container/heap"
	"context"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

// deadlineCheckInterval is how many frontier pops / relaxation rounds pass
// between context checks.
const deadlineCheckInterval = 32

// searchRun is the transient state owned by one algorithm invocation over one
// snapshot. Nothing here is shared across concurrent searches.
type searchRun struct {
	snap       *Snapshot
	opts       *domain.PathOptions
	mc         *domain.MarketContext
	heuristics *HeuristicRegistry

	from      domain.TokenID
	to        domain.TokenID
	amountUSD float64

	explored int
}

func (r *searchRun) weight(edge *domain.GraphEdge) float64 {
	return calculateEdgeWeight(r.snap, edge, r.amountUSD, r.opts, r.mc)
}

// buildResult walks the chosen edges once more to aggregate totals, carrying
// the simulated amount through every hop.
func (r *searchRun) buildResult(edges []*domain.GraphEdge, cost float64, algorithm domain.Algorithm) *domain.PathfindingResult {
	if len(edges) == 0 {
		return nil
	}

	nodes := make([]domain.TokenID, 0, len(edges)+1)
	nodes = append(nodes, edges[0].From)

	amount := edgeAmountIn(r.snap, r.mc, edges[0], r.amountUSD)
	inNotionalUSD := r.amountUSD

	var feeUSD, gasUSD, impactPct float64
	notional := r.amountUSD
	for _, edge := range edges {
		nodes = append(nodes, edge.To)

		rate, impact := edgeQuote(edge, amount)
		feeUSD += notional * edge.FeeBps / 10000
		gasUSD += edge.GasUSD * r.mc.GasFactor(edge.ChainID)
		impactPct += impact

		amount *= rate
		notional *= (1 - edge.FeeBps/10000) * (1 - impact/100)
	}

	outUSD := notional
	last := edges[len(edges)-1].To
	if price := r.mc.PriceUSD(last); price > 0 {
		outUSD = amount * price
	} else if node := r.snap.Node(last); node != nil && node.PriceUSD > 0 {
		outUSD = amount * node.PriceUSD
	}

	result := &domain.PathfindingResult{
		Nodes:               nodes,
		Edges:               edges,
		TotalWeight:         cost,
		EstimatedOutUSD:     outUSD,
		TotalFeeUSD:         feeUSD,
		TotalGasUSD:         gasUSD,
		TotalPriceImpactPct: impactPct,
		HopCount:            len(edges),
		Strategy:            string(algorithm),
		Severity:            domain.ClassifyImpact(impactPct),
		Diagnostics: domain.SearchDiagnostics{
			Algorithm:     string(algorithm),
			NodesExplored: r.explored,
		},
	}
	result.Confidence = routeConfidence(result, inNotionalUSD)
	return result
}

// frontierItem is one entry in a best-first frontier. It owns its own edge
// path so multiple arrivals at the same node stay independent.
type frontierItem struct {
	node     domain.TokenID
	cost     float64
	priority float64
	edges    []*domain.GraphEdge
}

type frontier []*frontierItem

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].priority < f[j].priority }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x interface{}) { *f = append(*f, x.(*frontierItem)) }
func (f *frontier) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

func (it *frontierItem) visits(id domain.TokenID) bool {
	if len(it.edges) == 0 {
		return false
	}
	if it.edges[0].From == id {
		return true
	}
	for _, e := range it.edges {
		if e.To == id {
			return true
		}
	}
	return false
}

func (it *frontierItem) extend(edge *domain.GraphEdge, stepCost float64) *frontierItem {
	edges := make([]*domain.GraphEdge, len(it.edges), len(it.edges)+1)
	copy(edges, it.edges)
	return &frontierItem{
		node:  edge.To,
		cost:  it.cost + stepCost,
		edges: append(edges, edge),
	}
}

// dijkstra is the weighted shortest-path strategy: expand the cheapest
// frontier entry, relax out-edges with a fixed per-hop penalty, and keep
// exploring past the first arrival until maxPaths distinct terminal arrivals
// are recorded or the frontier empties.
func (r *searchRun) dijkstra(ctx context.Context) ([]*domain.PathfindingResult, error) {
	return r.bestFirst(ctx, domain.AlgorithmDijkstra, nil)
}

// astar is the heuristic-guided best-first strategy. The frontier is ordered
// by accumulated cost plus the registry's weighted signal blend. The blend is
// NOT admissible, so this is a guided best-first search, not provably-optimal
// A*: it usually finds good routes faster than the plain weighted search but
// may miss the true optimum. With all heuristic weights at zero it degrades
// to exactly the plain weighted search.
func (r *searchRun) astar(ctx context.Context) ([]*domain.PathfindingResult, error) {
	target := r.snap.Node(r.to)
	h := func(id domain.TokenID) float64 {
		return r.heuristics.Score(r.snap.Node(id), target, r.mc)
	}
	return r.bestFirst(ctx, domain.AlgorithmAStar, h)
}

func (r *searchRun) bestFirst(ctx context.Context, algorithm domain.Algorithm, h func(domain.TokenID) float64) ([]*domain.PathfindingResult, error) {
	start := &frontierItem{node: r.from}
	if h != nil {
		start.priority = h(r.from)
	}

	front := frontier{start}
	heap.Init(&front)

	// A node may be expanded up to maxPaths times so alternative routes
	// through shared intermediates survive.
	expansions := make(map[domain.TokenID]int, r.snap.NodeCount())
	results := make([]*domain.PathfindingResult, 0, r.opts.MaxPaths)

	for iter := 0; front.Len() > 0; iter++ {
		if iter%deadlineCheckInterval == 0 && ctx.Err() != nil {
			return nil, newTimeoutError(algorithm, r.opts.Timeout)
		}

		item := heap.Pop(&front).(*frontierItem)
		r.explored++

		if item.node == r.to {
			if res := r.buildResult(item.edges, item.cost, algorithm); res != nil {
				results = append(results, res)
			}
			if len(results) >= r.opts.MaxPaths {
				break
			}
			continue
		}

		if expansions[item.node] >= r.opts.MaxPaths {
			continue
		}
		expansions[item.node]++

		if len(item.edges) >= r.opts.MaxHops {
			continue
		}

		for _, edge := range r.snap.OutEdges(item.node) {
			if err := r.snap.checkIntegrity(edge); err != nil {
				return nil, err
			}
			if item.visits(edge.To) {
				continue
			}
			next := item.extend(edge, r.weight(edge)+hopPenalty)
			next.priority = next.cost
			if h != nil {
				next.priority += h(next.node)
			}
			heap.Push(&front, next)
		}
	}

	return results, nil
}
