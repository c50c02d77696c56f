package domain

import (
	"fmt"
	"math/big"
	"time"
)

// PoolKind discriminates the pricing model of a liquidity source.
type PoolKind uint8

const (
	PoolConstantProduct PoolKind = iota // x*y=k AMM (Uniswap v2 style)
	PoolConcentrated                    // concentrated liquidity (Uniswap v3 style)
	PoolStableSwap                      // stable-curve pools (Curve style)
	PoolBridge                          // cross-chain bridge leg
)

func (k PoolKind) String() string {
	switch k {
	case PoolConstantProduct:
		return "ConstantProduct"
	case PoolConcentrated:
		return "Concentrated"
	case PoolStableSwap:
		return "StableSwap"
	case PoolBridge:
		return "Bridge"
	default:
		return "UNKNOWN"
	}
}

// LiquidityPool is the snapshot format the liquidity-indexing collaborator
// pushes into the engine. One pool produces two directed graph edges.
type LiquidityPool struct {
	Address string   `json:"address"`
	Dex     string   `json:"dex"`
	Kind    PoolKind `json:"kind"`
	ChainID uint64   `json:"chainId"`

	TokenA Token `json:"tokenA"`
	TokenB Token `json:"tokenB"`

	// Raw reserves in smallest token units. Optional; when present the engine
	// derives the spot rate and price impact from them.
	ReserveA *big.Int `json:"reserveA,omitempty"`
	ReserveB *big.Int `json:"reserveB,omitempty"`

	// SpotRateAB is the quoted pre-fee rate for A->B (output tokens per input
	// token). Zero means derive from reserves or USD prices.
	SpotRateAB float64 `json:"spotRateAB,omitempty"`

	LiquidityUSD float64 `json:"liquidityUsd"`
	VolumeUSD24h float64 `json:"volumeUsd24h"`
	FeeBps       float64 `json:"feeBps"`
	GasUSD       float64 `json:"gasUsd"`
	Reliability  float64 `json:"reliability"` // 0-100 execution success score
	APY          float64 `json:"apy,omitempty"`
	StablePair   bool    `json:"stablePair,omitempty"`

	// Node market metadata carried with the snapshot.
	TokenATVLUSD   float64 `json:"tokenATvlUsd,omitempty"`
	TokenBTVLUSD   float64 `json:"tokenBTvlUsd,omitempty"`
	TokenAPriceUSD float64 `json:"tokenAPriceUsd,omitempty"`
	TokenBPriceUSD float64 `json:"tokenBPriceUsd,omitempty"`
}

func (p *LiquidityPool) Validate() error {
	if p.Address == "" {
		return fmt.Errorf("pool missing address")
	}
	if p.Dex == "" {
		return fmt.Errorf("pool %s missing dex", p.Address)
	}
	if err := p.TokenA.Validate(); err != nil {
		return fmt.Errorf("pool %s: %w", p.Address, err)
	}
	if err := p.TokenB.Validate(); err != nil {
		return fmt.Errorf("pool %s: %w", p.Address, err)
	}
	if p.TokenA.ID() == p.TokenB.ID() {
		return fmt.Errorf("pool %s pairs a token with itself", p.Address)
	}
	if p.FeeBps < 0 || p.LiquidityUSD < 0 {
		return fmt.Errorf("pool %s has negative fee or liquidity", p.Address)
	}
	return nil
}

// IsCrossChain reports whether the pool bridges two chains.
func (p *LiquidityPool) IsCrossChain() bool {
	return p.TokenA.ChainID != p.TokenB.ChainID
}

// GraphNode is one token on one chain plus its mutable market metadata.
// Nodes are created on first reference by an edge and refreshed in place on
// graph updates; readers only ever see them through immutable snapshots.
type GraphNode struct {
	Token        Token     `json:"token"`
	TVLUSD       float64   `json:"tvlUsd"`
	VolumeUSD24h float64   `json:"volumeUsd24h"`
	PriceUSD     float64   `json:"priceUsd"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (n *GraphNode) ID() TokenID {
	return n.Token.ID()
}

// GraphEdge is a directed swap leg through one DEX pool. Parallel edges
// between the same node pair (one per DEX) are intentional and preserved.
// The scalar weight is never stored here; it is a function of
// (edge, amount, options, market context) evaluated at search time.
type GraphEdge struct {
	From TokenID `json:"from"`
	To   TokenID `json:"to"`

	PoolAddress string   `json:"poolAddress"`
	Dex         string   `json:"dex"`
	Kind        PoolKind `json:"kind"`
	ChainID     uint64   `json:"chainId"`

	// Reserves oriented in edge direction: ReserveIn backs the input token.
	ReserveIn  *big.Int `json:"-"`
	ReserveOut *big.Int `json:"-"`

	DecimalsIn  uint8 `json:"-"`
	DecimalsOut uint8 `json:"-"`

	// SpotRate is the pre-fee output-per-input rate in edge direction.
	SpotRate float64 `json:"spotRate"`

	FeeBps       float64 `json:"feeBps"`
	GasUSD       float64 `json:"gasUsd"`
	LiquidityUSD float64 `json:"liquidityUsd"`
	Reliability  float64 `json:"reliability"`
	APY          float64 `json:"apy,omitempty"`
	StablePair   bool    `json:"stablePair,omitempty"`

	src LiquiditySource
}

func (e *GraphEdge) IsCrossChain() bool {
	return e.From.ChainID() != e.To.ChainID()
}
