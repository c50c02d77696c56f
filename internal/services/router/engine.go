package router

import (
	"context"
	"sync/atomic"
	"time"

	container "github.com/thehyperflames/dicontainer-go"

	"github.com/lumenfi/route-optimizer/internal/adapters/market"
	"github.com/lumenfi/route-optimizer/internal/adapters/persistence"
	"github.com/lumenfi/route-optimizer/internal/config"
	"github.com/lumenfi/route-optimizer/internal/domain"
	"github.com/lumenfi/route-optimizer/internal/metrics"
	"github.com/lumenfi/route-optimizer/internal/services"
)

const ROUTER_ENGINE_SERVICE = "router-engine"

// Engine is the route optimization facade: it owns the graph, the path
// cache, the pricing and risk components, and dispatches searches. It is
// safe for concurrent use; every search works on an immutable snapshot.
type Engine struct {
	container.BaseDIInstance
	logger *services.ServiceLogger

	graph      *Graph
	cache      *PathCache
	fees       *FeeCalculator
	risk       *RiskAssessor
	heuristics *HeuristicRegistry
	market     domain.MarketDataProvider
	feed       *market.FeedStore
	storage    *persistence.Storage

	cfg *config.EngineConfig

	searches    atomic.Int64
	searchNanos atomic.Int64
}

// NewEngine builds a standalone engine with defaults, primarily for embedding
// and tests. The DI path goes through Configure instead.
func NewEngine(market domain.MarketDataProvider) *Engine {
	if market == nil {
		market = domain.NewStaticMarketData()
	}
	return &Engine{
		graph:      NewGraph(),
		cache:      NewPathCache(DefaultPathCacheTTL),
		fees:       NewFeeCalculator(),
		risk:       NewRiskAssessor(),
		heuristics: DefaultHeuristics(),
		market:     market,
	}
}

func (e *Engine) ID() string {
	return ROUTER_ENGINE_SERVICE
}

func (e *Engine) Configure(c container.IContainer) error {
	e.logger = services.NewServiceLogger(e)
	e.cfg = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)

	e.graph = NewGraph()
	e.cache = NewPathCache(e.cfg.CacheTTL())
	e.fees = &FeeCalculator{
		ProtocolFeeRate: e.cfg.ProtocolFeeRate,
		FeeCapUSD:       e.cfg.FeeCapUSD,
		BridgeFeeRate:   e.cfg.BridgeFeeRate,
		BridgeFeeMinUSD: e.cfg.BridgeFeeMinUSD,
	}
	e.risk = NewRiskAssessor()
	e.heuristics = DefaultHeuristics()
	if e.market == nil {
		e.feed = market.NewFeedStore()
		e.market = e.feed
	}

	if e.cfg.PersistenceEnabled {
		storage, err := persistence.NewStorage(e.cfg.DBPath)
		if err != nil {
			return err
		}
		e.storage = storage
	}
	return nil
}

// Start warm-starts the graph from the last persisted pool set.
func (e *Engine) Start() error {
	if e.storage == nil {
		return nil
	}
	pools, err := e.storage.LoadAllPools()
	if err != nil {
		return err
	}
	if len(pools) == 0 {
		return nil
	}
	if err := e.graph.UpdateGraph(pools); err != nil {
		e.logger.Warn().Err(err).Msg("some persisted pools were rejected during warm start")
	}
	e.logger.Info().Int("pools", len(pools)).Msg("graph warm-started from disk")
	return nil
}

func (e *Engine) Stop() error {
	e.cache.Stop()
	if e.storage == nil {
		return nil
	}
	return e.storage.Close()
}

// SetMarketDataProvider swaps the market signal source. Call before serving.
func (e *Engine) SetMarketDataProvider(p domain.MarketDataProvider) {
	if p != nil {
		e.market = p
		e.feed = nil
	}
}

// MarketFeed returns the push-fed store, nil when an external provider was
// installed instead.
func (e *Engine) MarketFeed() *market.FeedStore {
	return e.feed
}

// Heuristics exposes the registry so callers can tune or register signals.
func (e *Engine) Heuristics() *HeuristicRegistry {
	return e.heuristics
}

// UpdateGraph merges a pool snapshot batch into the graph, drops every cached
// route, and persists the batch when storage is on. Invalid pools are skipped
// and reported in the returned error while valid ones still apply.
func (e *Engine) UpdateGraph(pools []*domain.LiquidityPool) error {
	updateErr := e.graph.UpdateGraph(pools)
	e.cache.Purge()

	if e.storage != nil {
		valid := make([]*domain.LiquidityPool, 0, len(pools))
		for _, pool := range pools {
			if pool != nil && pool.Validate() == nil {
				valid = append(valid, pool)
			}
		}
		if err := e.storage.SavePoolBatch(valid); err != nil {
			e.logger.Error().Err(err).Msg("failed to persist pool batch")
		}
	}
	return updateErr
}

// FindOptimalPaths runs a full search: validate, consult the cache, resolve a
// market context, dispatch the selected algorithm under the time budget, then
// filter, rank, and annotate the survivors.
func (e *Engine) FindOptimalPaths(ctx context.Context, from, to domain.TokenID, amountUSD float64, opts domain.PathOptions) ([]*domain.PathfindingResult, error) {
	if from == to {
		return nil, ErrSameToken
	}
	if amountUSD <= 0 {
		return nil, ErrInvalidAmount
	}
	opts.Normalize()

	snap := e.graph.Snapshot()
	if !snap.HasNode(from) || !snap.HasNode(to) {
		return nil, ErrUnknownToken
	}

	if cached := e.cache.Get(from, to, amountUSD, &opts); cached != nil {
		return cachedCopy(cached), nil
	}

	algorithm := selectAlgorithm(snap, &opts)
	run := &searchRun{
		snap:       snap,
		opts:       &opts,
		mc:         e.resolveMarketContext(ctx, snap),
		heuristics: e.heuristics,
		from:       from,
		to:         to,
		amountUSD:  amountUSD,
	}

	searchCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	started := time.Now()
	candidates, err := run.dispatch(searchCtx, algorithm)
	elapsed := time.Since(started)

	e.searches.Add(1)
	e.searchNanos.Add(int64(elapsed))
	metrics.SearchDuration.WithLabelValues(string(algorithm)).Observe(elapsed.Seconds())
	metrics.NodesExplored.Observe(float64(run.explored))

	if err != nil {
		// Timeouts are already counted where the TimeoutError is built.
		metrics.SearchRequests.WithLabelValues(string(algorithm), "error").Inc()
		return nil, err
	}

	results := run.filterAndSortResults(candidates)
	if len(results) == 0 {
		// No viable route is a normal outcome, not a failure.
		metrics.SearchRequests.WithLabelValues(string(algorithm), "no_route").Inc()
		return []*domain.PathfindingResult{}, nil
	}

	for _, res := range results {
		res.Fees = e.fees.Calculate(res, amountUSD, run.mc)
		res.Slippage = e.risk.EstimateSlippage(res, run.mc)
		res.Liquidity = e.risk.ValidateLiquidity(res, amountUSD)
		res.Diagnostics.SearchTime = elapsed
		metrics.PriceImpact.WithLabelValues(string(res.Severity)).Observe(res.TotalPriceImpactPct)
	}

	metrics.SearchRequests.WithLabelValues(string(algorithm), "ok").Inc()
	metrics.PathsReturned.Observe(float64(len(results)))

	e.cache.Set(from, to, amountUSD, &opts, results)
	return results, nil
}

// CalculateFees prices one already-chosen route without re-running a search.
func (e *Engine) CalculateFees(ctx context.Context, route *domain.PathfindingResult, amountUSD float64) *domain.FeeBreakdown {
	return e.fees.Calculate(route, amountUSD, e.resolveMarketContext(ctx, e.graph.Snapshot()))
}

func (e *Engine) GetGraphStats() domain.GraphStats {
	return e.graph.Stats()
}

func (e *Engine) GetPerformanceStats() domain.PerformanceStats {
	stats := domain.PerformanceStats{
		Searches:    e.searches.Load(),
		CacheHits:   e.cache.Hits(),
		CacheMisses: e.cache.Misses(),
		CacheSize:   e.cache.Size(),
	}
	if stats.Searches > 0 {
		stats.AvgSearchLatency = time.Duration(e.searchNanos.Load() / stats.Searches)
	}
	if total := stats.CacheHits + stats.CacheMisses; total > 0 {
		stats.CacheHitRate = float64(stats.CacheHits) / float64(total)
	}
	return stats
}

// resolveMarketContext pulls every signal the traversal needs up front so no
// search step blocks on the provider.
func (e *Engine) resolveMarketContext(ctx context.Context, snap *Snapshot) *domain.MarketContext {
	mc := domain.NewMarketContext()

	chains := make(map[uint64]struct{})
	for _, id := range snap.NodeIDs() {
		if price, err := e.market.TokenPriceUSD(ctx, id); err == nil && price > 0 {
			mc.TokenPricesUSD[id] = price
		}
		if vol, err := e.market.Volatility(ctx, id); err == nil && vol > 0 {
			mc.Volatility[id] = vol
		}
		chains[id.ChainID()] = struct{}{}
	}
	for chainID := range chains {
		if m, err := e.market.GasPriceMultiplier(ctx, chainID); err == nil && m > 0 {
			mc.GasMultiplier[chainID] = m
		}
	}
	for _, edge := range snap.Edges() {
		if _, seen := mc.HistSlippage[edge.PoolAddress]; seen {
			continue
		}
		if s, err := e.market.HistoricalSlippagePct(ctx, edge.PoolAddress); err == nil && s > 0 {
			mc.HistSlippage[edge.PoolAddress] = s
		}
	}
	return mc
}

// cachedCopy shallow-copies cached results so per-request diagnostic fields
// never mutate the shared cached slice.
func cachedCopy(results []*domain.PathfindingResult) []*domain.PathfindingResult {
	out := make([]*domain.PathfindingResult, len(results))
	for i, res := range results {
		clone := *res
		clone.Diagnostics.FromCache = true
		out[i] = &clone
	}
	return out
}
