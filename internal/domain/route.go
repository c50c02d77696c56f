package domain

import "time"

// ImpactSeverity classifies total route price impact.
type ImpactSeverity string

const (
	SeverityNone     ImpactSeverity = "none"     // < 0.1%
	SeverityLow      ImpactSeverity = "low"      // 0.1-1%
	SeverityModerate ImpactSeverity = "moderate" // 1-3%
	SeverityHigh     ImpactSeverity = "high"     // 3-5%
	SeverityExtreme  ImpactSeverity = "extreme"  // > 5%
)

func ClassifyImpact(totalImpactPct float64) ImpactSeverity {
	switch {
	case totalImpactPct < 0.1:
		return SeverityNone
	case totalImpactPct < 1:
		return SeverityLow
	case totalImpactPct < 3:
		return SeverityModerate
	case totalImpactPct < 5:
		return SeverityHigh
	default:
		return SeverityExtreme
	}
}

// SearchDiagnostics describes how a result was produced.
type SearchDiagnostics struct {
	Algorithm     string        `json:"algorithm"`
	NodesExplored int           `json:"nodesExplored"`
	SearchTime    time.Duration `json:"searchTime"`
	FromCache     bool          `json:"fromCache"`
}

// PathfindingResult is one concrete candidate route: an ordered node sequence
// plus the edges connecting them, with aggregated totals. Arbitrage results
// are cycles (first node == last node) discovered by the relaxation search.
type PathfindingResult struct {
	Nodes []TokenID    `json:"nodes"`
	Edges []*GraphEdge `json:"edges"`

	TotalWeight         float64 `json:"totalWeight"`
	EstimatedOutUSD     float64 `json:"estimatedOutUsd"`
	TotalFeeUSD         float64 `json:"totalFeeUsd"`
	TotalGasUSD         float64 `json:"totalGasUsd"`
	TotalPriceImpactPct float64 `json:"totalPriceImpactPct"`

	Confidence float64        `json:"confidence"`
	HopCount   int            `json:"hopCount"`
	Strategy   string         `json:"strategy"`
	Arbitrage  bool           `json:"arbitrage"`
	Severity   ImpactSeverity `json:"severity"`

	// ProfitFactor is only set on arbitrage results: cycle output per unit in.
	ProfitFactor float64 `json:"profitFactor,omitempty"`

	Fees      *FeeBreakdown        `json:"fees,omitempty"`
	Slippage  *SlippageAnalysis    `json:"slippage,omitempty"`
	Liquidity *LiquidityValidation `json:"liquidity,omitempty"`

	Diagnostics SearchDiagnostics `json:"diagnostics"`
}

// NodeSequenceKey identifies a route by its ordered node sequence, used for
// cross-strategy deduplication.
func (r *PathfindingResult) NodeSequenceKey() string {
	key := make([]byte, 0, len(r.Nodes)*16)
	for i, n := range r.Nodes {
		if i > 0 {
			key = append(key, '>')
		}
		key = append(key, n...)
	}
	return string(key)
}

// LegFee is the DEX fee charged on one hop.
type LegFee struct {
	PoolAddress string  `json:"poolAddress"`
	Dex         string  `json:"dex"`
	FeeBps      float64 `json:"feeBps"`
	FeeUSD      float64 `json:"feeUsd"`
	GasUSD      float64 `json:"gasUsd"`
}

// FeeBreakdown is the full cost decomposition for a chosen route.
type FeeBreakdown struct {
	ProtocolFeeUSD  float64  `json:"protocolFeeUsd"`
	ProtocolFeeRate float64  `json:"protocolFeeRate"`
	FeeCapped       bool     `json:"feeCapped"`
	LegFees         []LegFee `json:"legFees"`
	GasUSD          float64  `json:"gasUsd"`
	BridgeFeeUSD    float64  `json:"bridgeFeeUsd,omitempty"`
	TotalUSD        float64  `json:"totalUsd"`
	EffectiveFeePct float64  `json:"effectiveFeePct"`
}

// SlippageAnalysis is a derived, read-only assessment; it never mutates the
// route it describes.
type SlippageAnalysis struct {
	ExpectedSlippagePct  float64 `json:"expectedSlippagePct"`
	MaximumSlippagePct   float64 `json:"maximumSlippagePct"`
	VolatilityAdjustment float64 `json:"volatilityAdjustment"`
	HistoricalWeightPct  float64 `json:"historicalWeightPct"`
}

// LiquidityValidation compares required against available liquidity with a
// safety multiplier. Warnings are advisory, not hard failures.
type LiquidityValidation struct {
	Sufficient       bool     `json:"sufficient"`
	RequiredUSD      float64  `json:"requiredUsd"`
	AvailableUSD     float64  `json:"availableUsd"`
	SafetyMultiplier float64  `json:"safetyMultiplier"`
	UtilizationPct   float64  `json:"utilizationPct"`
	Warnings         []string `json:"warnings,omitempty"`
	Recommendations  []string `json:"recommendations,omitempty"`
}

// GraphStats are the observability counters for the graph itself.
type GraphStats struct {
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	EdgesDropped int       `json:"edgesDropped"`
	Pools        int       `json:"pools"`
	AvgOutDegree float64   `json:"avgOutDegree"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// PerformanceStats are the engine-level observability counters.
type PerformanceStats struct {
	Searches         int64         `json:"searches"`
	AvgSearchLatency time.Duration `json:"avgSearchLatency"`
	CacheHits        int64         `json:"cacheHits"`
	CacheMisses      int64         `json:"cacheMisses"`
	CacheHitRate     float64       `json:"cacheHitRate"`
	CacheSize        int           `json:"cacheSize"`
}
