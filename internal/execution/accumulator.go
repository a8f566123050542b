package execution

import (
	"math"
	"sync"

	"github.com/yanun0323/decimal"

	"dcengine/internal/schema"
	"dcengine/internal/timeutil"
)

// maxReturnsWindow bounds the trailing-return buffer used for the Sharpe
// ratio calculation to roughly one year of trading days.
const maxReturnsWindow = 252

// PerformanceMetrics is a snapshot of the accumulator's running totals.
type PerformanceMetrics struct {
	TotalPnL              float64
	AvgTradePnL           float64
	TotalTrades           int64
	WinningTrades         int64
	LosingTrades          int64
	WinRate               float64
	MaxDrawdown           float64
	SharpeRatio           float64
	AvgExecutionLatencyNs float64
	MaxExecutionLatencyNs int64
}

// Accumulator tracks position, capital, and trade statistics across a
// stream of fills. Unlike the reference implementation's static-last-price
// shortcut, P&L is computed from a tracked weighted-average entry price:
// a buy only adjusts the entry price and position, and realized P&L is
// booked on sells against that entry price.
type Accumulator struct {
	mu sync.Mutex

	initialCapital decimal.Decimal
	currentCapital decimal.Decimal
	peakCapital    decimal.Decimal

	position      float64
	avgEntryPrice float64

	metrics PerformanceMetrics
	latency timeutil.LatencyStats

	returns []float64
}

// NewAccumulator creates an accumulator seeded with the given starting
// capital.
func NewAccumulator(initialCapital float64) *Accumulator {
	capital := decimal.NewFromFloat(initialCapital)
	return &Accumulator{
		initialCapital: capital,
		currentCapital: capital,
		peakCapital:    capital,
	}
}

// Record folds a filled trade execution into the accumulator's state and
// returns the realized P&L booked for that trade (zero for an opening buy).
func (a *Accumulator) Record(execution schema.TradeExecution) float64 {
	if execution.Status != schema.ExecutionFilled {
		return 0.0
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tradePnL := a.applyFill(execution.Signal, execution.ExecutedPrice, execution.ExecutedQuantity)

	a.currentCapital = a.currentCapital.Add(decimal.NewFromFloat(tradePnL))

	a.metrics.TotalPnL += tradePnL
	a.metrics.TotalTrades++
	if tradePnL > 0 {
		a.metrics.WinningTrades++
	} else if tradePnL < 0 {
		a.metrics.LosingTrades++
	}
	a.metrics.WinRate = float64(a.metrics.WinningTrades) / float64(a.metrics.TotalTrades)
	a.metrics.AvgTradePnL = a.metrics.TotalPnL / float64(a.metrics.TotalTrades)

	a.updateDrawdown()

	if execution.ExecutionLatencyNs > 0 {
		a.latency.Observe(execution.ExecutionLatencyNs)
		a.metrics.AvgExecutionLatencyNs = a.latency.AvgNs()
		a.metrics.MaxExecutionLatencyNs = a.latency.MaxNs()
	}

	initial, _ := a.initialCapital.Float64()
	if initial != 0 {
		a.returns = append(a.returns, tradePnL/initial)
	}
	if len(a.returns) > maxReturnsWindow {
		a.returns = a.returns[len(a.returns)-maxReturnsWindow:]
	}
	a.metrics.SharpeRatio = sharpeRatio(a.returns)

	return tradePnL
}

// applyFill updates position and average entry price for a buy or sell and
// returns the realized P&L for a sell (zero for a buy).
func (a *Accumulator) applyFill(signal schema.Signal, price, quantity float64) float64 {
	switch signal {
	case schema.SignalBuy:
		a.openOrAverage(price, quantity)
		return 0.0
	case schema.SignalSell:
		return a.closeOrShort(price, quantity)
	default:
		return 0.0
	}
}

func (a *Accumulator) openOrAverage(price, quantity float64) {
	if a.position >= 0 {
		// Extending or opening a long: roll the average entry price.
		totalCost := a.avgEntryPrice*a.position + price*quantity
		a.position += quantity
		if a.position != 0 {
			a.avgEntryPrice = totalCost / a.position
		}
		return
	}

	// Covering a short with a buy.
	covered := math.Min(-a.position, quantity)
	a.position += covered
	remaining := quantity - covered
	if remaining > 0 {
		// Flips through flat into a new long at the buy price.
		a.position += remaining
		a.avgEntryPrice = price
	}
	if a.position == 0 {
		a.avgEntryPrice = 0
	}
}

func (a *Accumulator) closeOrShort(price, quantity float64) float64 {
	if a.position <= 0 {
		// Opening or extending a short: no realized P&L yet.
		totalCost := a.avgEntryPrice*(-a.position) + price*quantity
		a.position -= quantity
		if a.position != 0 {
			a.avgEntryPrice = totalCost / (-a.position)
		}
		return 0.0
	}

	closed := math.Min(a.position, quantity)
	pnl := (price - a.avgEntryPrice) * closed
	a.position -= closed

	remaining := quantity - closed
	if remaining > 0 {
		// Flips through flat into a new short at the sell price.
		a.position -= remaining
		a.avgEntryPrice = price
	}
	if a.position == 0 {
		a.avgEntryPrice = 0
	}
	return pnl
}

func (a *Accumulator) updateDrawdown() {
	if a.currentCapital.Cmp(a.peakCapital) > 0 {
		a.peakCapital = a.currentCapital
	}

	peak, _ := a.peakCapital.Float64()
	current, _ := a.currentCapital.Float64()
	if peak == 0 {
		return
	}

	drawdown := (peak - current) / peak
	if drawdown > a.metrics.MaxDrawdown {
		a.metrics.MaxDrawdown = drawdown
	}
}

// sharpeRatio computes the sample mean over sample standard deviation of
// the trailing returns, annualized by sqrt(252)/sqrt(252) as in the
// reference implementation: the two factors cancel, leaving the ratio
// dimensionally identical to the unannualized form. Preserved verbatim
// rather than "fixed", since changing it would silently alter every
// reported Sharpe ratio against the system this was ported from.
func sharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev <= 0.0 {
		return 0.0
	}

	return (mean * math.Sqrt(252)) / (stdDev * math.Sqrt(252))
}

// Metrics returns a snapshot of the accumulator's current performance.
func (a *Accumulator) Metrics() PerformanceMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}

// Position returns the current signed position and average entry price.
func (a *Accumulator) Position() (quantity, avgEntryPrice float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.position, a.avgEntryPrice
}

// CurrentCapital returns the current capital as a float64.
func (a *Accumulator) CurrentCapital() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, _ := a.currentCapital.Float64()
	return v
}

// Reset clears all tracked state back to the initial capital.
func (a *Accumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentCapital = a.initialCapital
	a.peakCapital = a.initialCapital
	a.position = 0
	a.avgEntryPrice = 0
	a.metrics = PerformanceMetrics{}
	a.latency = timeutil.LatencyStats{}
	a.returns = nil
}
