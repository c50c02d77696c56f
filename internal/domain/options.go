package domain

import "time"

// Algorithm selects the search strategy. Empty means auto-select.
type Algorithm string

const (
	AlgorithmAuto        Algorithm = ""
	AlgorithmDijkstra    Algorithm = "dijkstra"
	AlgorithmAStar       Algorithm = "astar"
	AlgorithmBellmanFord Algorithm = "bellman-ford"
	AlgorithmDynamic     Algorithm = "dynamic"
	AlgorithmParallel    Algorithm = "parallel"
	AlgorithmHybrid      Algorithm = "hybrid"
)

// Objective selects what the edge weighting minimizes.
type Objective string

const (
	OptimizeOutput   Objective = "output"
	OptimizeGas      Objective = "gas"
	OptimizeSpeed    Objective = "speed"
	OptimizeSafety   Objective = "safety"
	OptimizeBalanced Objective = "balanced"
)

const (
	DefaultMaxHops  = 4
	DefaultMaxPaths = 5
	DefaultTimeout  = 500 * time.Millisecond

	// DefaultMaxSlippagePct is the per-route price impact ceiling when the
	// caller does not supply one.
	DefaultMaxSlippagePct = 5.0
)

// PathOptions are the caller-supplied search constraints.
type PathOptions struct {
	MaxHops          int           `json:"maxHops"`
	MaxPaths         int           `json:"maxPaths"`
	Algorithm        Algorithm     `json:"algorithm"`
	OptimizeFor      Objective     `json:"optimizeFor"`
	MinLiquidityUSD  float64       `json:"minLiquidity"`
	MaxSlippagePct   float64       `json:"maxSlippage"`
	IncludeArbitrage bool          `json:"includeArbitrage"`
	Timeout          time.Duration `json:"timeout"`
}

func DefaultPathOptions() PathOptions {
	return PathOptions{
		MaxHops:        DefaultMaxHops,
		MaxPaths:       DefaultMaxPaths,
		Algorithm:      AlgorithmAuto,
		OptimizeFor:    OptimizeBalanced,
		MaxSlippagePct: DefaultMaxSlippagePct,
		Timeout:        DefaultTimeout,
	}
}

// Normalize fills zero values with defaults and clamps nonsense.
func (o *PathOptions) Normalize() {
	if o.MaxHops <= 0 {
		o.MaxHops = DefaultMaxHops
	}
	if o.MaxHops > 8 {
		o.MaxHops = 8
	}
	if o.MaxPaths <= 0 {
		o.MaxPaths = DefaultMaxPaths
	}
	if o.OptimizeFor == "" {
		o.OptimizeFor = OptimizeBalanced
	}
	if o.MaxSlippagePct <= 0 {
		o.MaxSlippagePct = DefaultMaxSlippagePct
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
}
