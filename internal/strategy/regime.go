package strategy

import "math"

// MarketState is a coarse volatility regime classification used to scale
// order sizing. It is a fixed threshold rule, not a fitted model: the name
// "regime" refers to its role in the pipeline, not to any trained state
// transition structure.
type MarketState int32

const (
	MarketStateUnknown MarketState = iota
	MarketStateLowVolatility
	MarketStateHighVolatility
)

func (s MarketState) String() string {
	switch s {
	case MarketStateLowVolatility:
		return "low_volatility"
	case MarketStateHighVolatility:
		return "high_volatility"
	default:
		return "unknown"
	}
}

const (
	lowVolatilityThreshold  = 0.1
	highVolatilityThreshold = 0.5
)

// RegimeClassifier tracks the current volatility regime from a stream of DC
// signals. It has no memory beyond the last classified state: an
// observation that falls between the two thresholds leaves the state
// unchanged rather than resetting it to unknown.
type RegimeClassifier struct {
	state MarketState
}

// NewRegimeClassifier creates a classifier starting in the unknown state.
func NewRegimeClassifier() *RegimeClassifier {
	return &RegimeClassifier{state: MarketStateUnknown}
}

// State returns the current classified regime.
func (c *RegimeClassifier) State() MarketState {
	return c.state
}

// Observe folds a new DC signal's TMV and duration into the classifier and
// returns the (possibly unchanged) resulting state.
func (c *RegimeClassifier) Observe(tmvExt float64, durationNs int64) MarketState {
	if durationNs <= 0 {
		return c.state
	}

	volatility := math.Abs(tmvExt) / (float64(durationNs) / 1e9)

	switch {
	case volatility < lowVolatilityThreshold:
		c.state = MarketStateLowVolatility
	case volatility > highVolatilityThreshold:
		c.state = MarketStateHighVolatility
	}

	return c.state
}

// VolatilityAdjustedLeverage returns the sizing multiplier associated with
// the current regime: larger in calm markets, smaller in turbulent ones.
func (c *RegimeClassifier) VolatilityAdjustedLeverage() float64 {
	switch c.state {
	case MarketStateLowVolatility:
		return 1.5
	case MarketStateHighVolatility:
		return 0.5
	default:
		return 1.0
	}
}
