package domain

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// LiquiditySource exposes exactly the venue fields the router needs, hiding
// the per-DEX pricing model behind one interface.
type LiquiditySource interface {
	PoolAddress() string
	Dex() string
	FeeBps() float64
	LiquidityUSD() float64
	GasUSD() float64
	Reliability() float64

	// EffectiveRate returns the post-impact, pre-fee output-per-input rate and
	// the price impact in percent for a trade of amountIn input-token units.
	EffectiveRate(amountIn float64) (rate float64, impactPct float64)
}

// BindSource attaches the pricing model matching the edge kind. Called once
// while the graph snapshot is built, before the edge is published to readers.
func (e *GraphEdge) BindSource() {
	switch e.Kind {
	case PoolConstantProduct:
		e.src = &constantProductSource{edgeSource{edge: e}}
	case PoolConcentrated:
		e.src = &concentratedSource{edgeSource{edge: e}}
	case PoolStableSwap:
		e.src = &stableSwapSource{edgeSource{edge: e}}
	default:
		e.src = &bridgeSource{edgeSource{edge: e}}
	}
}

func (e *GraphEdge) Source() LiquiditySource {
	if e.src == nil {
		e.BindSource()
	}
	return e.src
}

// edgeSource carries the descriptor fields shared by every pricing model.
type edgeSource struct {
	edge *GraphEdge
}

func (s *edgeSource) PoolAddress() string   { return s.edge.PoolAddress }
func (s *edgeSource) Dex() string           { return s.edge.Dex }
func (s *edgeSource) FeeBps() float64       { return s.edge.FeeBps }
func (s *edgeSource) LiquidityUSD() float64 { return s.edge.LiquidityUSD }
func (s *edgeSource) GasUSD() float64       { return s.edge.GasUSD }
func (s *edgeSource) Reliability() float64  { return s.edge.Reliability }

// spotRate returns the pre-fee rate, falling back to reserve ratio when the
// collaborator did not quote one.
func (s *edgeSource) spotRate() float64 {
	if s.edge.SpotRate > 0 {
		return s.edge.SpotRate
	}
	if s.edge.ReserveIn != nil && s.edge.ReserveOut != nil && s.edge.ReserveIn.Sign() > 0 {
		in := rawToFloat(s.edge.ReserveIn, s.edge.DecimalsIn)
		out := rawToFloat(s.edge.ReserveOut, s.edge.DecimalsOut)
		if in > 0 {
			return out / in
		}
	}
	return 0
}

// constantProductSource prices x*y=k pools exactly from raw reserves.
type constantProductSource struct {
	edgeSource
}

func (s *constantProductSource) EffectiveRate(amountIn float64) (float64, float64) {
	spot := s.spotRate()
	edge := s.edgeSource.edge
	if edge.ReserveIn == nil || edge.ReserveOut == nil || edge.ReserveIn.Sign() <= 0 || edge.ReserveOut.Sign() <= 0 {
		return spot, shallowImpact(amountIn*spotTokenUSD(edge), edge.LiquidityUSD, 1.0)
	}

	amountRaw := floatToRaw(amountIn, edge.DecimalsIn)
	outRaw := ConstantProductOut(edge.ReserveIn, edge.ReserveOut, amountRaw)
	if outRaw == nil || outRaw.Sign() <= 0 {
		return 0, 100
	}

	out := rawToFloat(outRaw, edge.DecimalsOut)
	if amountIn <= 0 {
		return spot, 0
	}
	exec := out / amountIn
	if spot <= 0 {
		return exec, 0
	}
	impact := (spot - exec) / spot * 100
	if impact < 0 {
		impact = 0
	}
	return exec, impact
}

// concentratedSource approximates CL pools: depth near the active tick is
// denser, so impact per notional is lower than a v2 pool of equal TVL.
type concentratedSource struct {
	edgeSource
}

const concentrationFactor = 0.4

func (s *concentratedSource) EffectiveRate(amountIn float64) (float64, float64) {
	spot := s.spotRate()
	edge := s.edgeSource.edge
	impact := shallowImpact(amountIn*spotTokenUSD(edge), edge.LiquidityUSD, concentrationFactor)
	return spot * (1 - impact/100), impact
}

// stableSwapSource prices curve-style pools: near-flat inside the peg band.
type stableSwapSource struct {
	edgeSource
}

const stableSwapFactor = 0.05

func (s *stableSwapSource) EffectiveRate(amountIn float64) (float64, float64) {
	spot := s.spotRate()
	if spot == 0 {
		spot = 1 // stable pairs trade at parity absent a quote
	}
	edge := s.edgeSource.edge
	impact := shallowImpact(amountIn*spotTokenUSD(edge), edge.LiquidityUSD, stableSwapFactor)
	return spot * (1 - impact/100), impact
}

// bridgeSource models a cross-chain leg: rate is the quoted parity, impact
// comes from bridge pool depth.
type bridgeSource struct {
	edgeSource
}

func (s *bridgeSource) EffectiveRate(amountIn float64) (float64, float64) {
	spot := s.spotRate()
	if spot == 0 {
		spot = 1
	}
	edge := s.edgeSource.edge
	impact := shallowImpact(amountIn*spotTokenUSD(edge), edge.LiquidityUSD, 0.2)
	return spot * (1 - impact/100), impact
}

// shallowImpact is the fallback impact model when raw reserves are absent:
// trading against half the pool depth, scaled by the venue's concentration.
func shallowImpact(amountUSD, liquidityUSD, factor float64) float64 {
	if liquidityUSD <= 0 {
		return 100
	}
	impact := amountUSD / (2 * liquidityUSD) * 100 * factor
	if impact > 100 {
		impact = 100
	}
	if impact < 0 || math.IsNaN(impact) {
		return 0
	}
	return impact
}

// spotTokenUSD estimates the USD value of one input token so the shallow
// impact model can compare trade notional against pool depth.
func spotTokenUSD(e *GraphEdge) float64 {
	if e.LiquidityUSD <= 0 {
		return 1
	}
	if e.ReserveIn != nil && e.ReserveIn.Sign() > 0 {
		in := rawToFloat(e.ReserveIn, e.DecimalsIn)
		if in > 0 {
			// half the pool's USD depth backs the input side
			return e.LiquidityUSD / 2 / in
		}
	}
	return 1
}

// ConstantProductOut computes amountOut = reserveOut*amountIn/(reserveIn+amountIn)
// in uint256 space to avoid big.Int allocation churn on the hot path.
func ConstantProductOut(reserveIn, reserveOut, amountIn *big.Int) *big.Int {
	rIn, overflow := uint256.FromBig(reserveIn)
	if overflow {
		return nil
	}
	rOut, overflow := uint256.FromBig(reserveOut)
	if overflow {
		return nil
	}
	aIn, overflow := uint256.FromBig(amountIn)
	if overflow {
		return nil
	}

	denom := new(uint256.Int).Add(rIn, aIn)
	if denom.IsZero() {
		return nil
	}
	num := new(uint256.Int).Mul(rOut, aIn)
	return new(uint256.Int).Div(num, denom).ToBig()
}

func rawToFloat(v *big.Int, decimals uint8) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f / math.Pow10(int(decimals))
}

func floatToRaw(v float64, decimals uint8) *big.Int {
	scaled := new(big.Float).Mul(big.NewFloat(v), big.NewFloat(math.Pow10(int(decimals))))
	out, _ := scaled.Int(nil)
	return out
}
