package router

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lumenfi/route-optimizer/internal/domain"
)

// largeGraphNodes is the node count past which plain exhaustive expansion
// gets expensive enough to prefer the guided search.
const largeGraphNodes = 500

type strategyFunc func(context.Context) ([]*domain.PathfindingResult, error)

// selectAlgorithm resolves the auto choice: arbitrage scans need the
// relaxation search, safety-first callers get the depth-exact table, very
// large graphs get the guided search, and everything else runs the plain
// weighted search.
func selectAlgorithm(snap *Snapshot, opts *domain.PathOptions) domain.Algorithm {
	if opts.Algorithm != domain.AlgorithmAuto {
		return opts.Algorithm
	}
	if opts.IncludeArbitrage {
		return domain.AlgorithmBellmanFord
	}
	if opts.OptimizeFor == domain.OptimizeSafety {
		return domain.AlgorithmDynamic
	}
	if snap.NodeCount() > largeGraphNodes {
		return domain.AlgorithmAStar
	}
	return domain.AlgorithmDijkstra
}

// dispatch runs the resolved strategy and returns its raw candidates; the
// caller filters and ranks. Composite strategies fan out clones of the run so
// the per-run exploration counters stay race-free.
func (r *searchRun) dispatch(ctx context.Context, algorithm domain.Algorithm) ([]*domain.PathfindingResult, error) {
	switch algorithm {
	case domain.AlgorithmDijkstra:
		return r.dijkstra(ctx)
	case domain.AlgorithmAStar:
		return r.astar(ctx)
	case domain.AlgorithmBellmanFord:
		return r.bellmanFord(ctx)
	case domain.AlgorithmDynamic:
		return r.dynamic(ctx)
	case domain.AlgorithmParallel:
		return r.fanOut(ctx,
			domain.AlgorithmDijkstra,
			domain.AlgorithmAStar,
			domain.AlgorithmBellmanFord,
			domain.AlgorithmDynamic,
		)
	case domain.AlgorithmHybrid:
		return r.hybrid(ctx)
	default:
		return r.dijkstra(ctx)
	}
}

// fanOut races the named strategies concurrently over the same snapshot and
// merges whatever they produce. A recoverable failure in one strategy is
// logged and dropped rather than failing the merged search; only when every
// strategy fails does the last error surface.
func (r *searchRun) fanOut(ctx context.Context, algorithms ...domain.Algorithm) ([]*domain.PathfindingResult, error) {
	type outcome struct {
		algorithm domain.Algorithm
		results   []*domain.PathfindingResult
		explored  int
		err       error
	}

	out := make(chan outcome, len(algorithms))
	var wg sync.WaitGroup
	for _, algorithm := range algorithms {
		wg.Add(1)
		go func(algorithm domain.Algorithm) {
			defer wg.Done()
			clone := *r
			clone.explored = 0
			results, err := clone.dispatch(ctx, algorithm)
			out <- outcome{algorithm: algorithm, results: results, explored: clone.explored, err: err}
		}(algorithm)
	}
	wg.Wait()
	close(out)

	var merged []*domain.PathfindingResult
	var lastErr error
	failures := 0
	for oc := range out {
		r.explored += oc.explored
		if oc.err != nil {
			failures++
			lastErr = oc.err
			if IsRecoverable(oc.err) {
				log.Warn().Err(oc.err).Str("algorithm", string(oc.algorithm)).Msg("strategy dropped from parallel search")
				continue
			}
			return nil, oc.err
		}
		merged = append(merged, oc.results...)
	}
	if failures == len(algorithms) {
		return nil, lastErr
	}
	return merged, nil
}

// hybrid runs the guided search first and tops up from the plain weighted
// search when the guided pass came back short. Duplicate node sequences are
// collapsed later by ranking.
func (r *searchRun) hybrid(ctx context.Context) ([]*domain.PathfindingResult, error) {
	results, err := r.astar(ctx)
	if err != nil && !IsRecoverable(err) {
		return nil, err
	}
	if err != nil {
		log.Warn().Err(err).Msg("guided pass failed, falling back to weighted search")
		results = nil
	}
	if len(results) >= r.opts.MaxPaths {
		return results, nil
	}

	fallback, err := r.dijkstra(ctx)
	if err != nil {
		if len(results) > 0 && IsRecoverable(err) {
			return results, nil
		}
		return nil, err
	}
	return append(results, fallback...), nil
}
