// Package strategy implements the second pipeline stage: it consumes DC
// signals, decides whether to trade, sizes the order, and publishes it
// onto the order lane for the execution engine.
package strategy

import (
	"sync"

	"github.com/yanun0323/logs"

	"dcengine/internal/bus"
	"dcengine/internal/codec"
	"dcengine/internal/risk"
	"dcengine/internal/schema"
	"dcengine/internal/timeutil"
)

// Statistics tracks signal throughput for the strategy engine.
type Statistics struct {
	SignalsProcessed     int64
	OrdersGenerated      int64
	BuySignals           int64
	SellSignals          int64
	AvgStrategyLatencyNs float64
	MaxStrategyLatencyNs int64
	CurrentMarketState   MarketState
}

// Config controls how the strategy engine sizes and classifies orders.
type Config struct {
	LeverageFactor float64
	EnableRegime   bool
}

// Engine reads DCSignal records from an input Lane and writes Order
// records to an output Lane.
type Engine struct {
	in  *bus.Lane
	out *bus.Lane
	cfg Config

	mu         sync.Mutex
	classifier *RegimeClassifier
	latency    timeutil.LatencyStats
	signals    int64
	orders     int64
	buys       int64
	sells      int64
}

// New creates an Engine wired to the given input and output lanes.
func New(in, out *bus.Lane, cfg Config) *Engine {
	if cfg.LeverageFactor <= 0 {
		cfg.LeverageFactor = 1.0
	}
	return &Engine{
		in:         in,
		out:        out,
		cfg:        cfg,
		classifier: NewRegimeClassifier(),
	}
}

// Statistics returns a snapshot of the engine's running counters.
func (e *Engine) Statistics() Statistics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Statistics{
		SignalsProcessed:     e.signals,
		OrdersGenerated:      e.orders,
		BuySignals:           e.buys,
		SellSignals:          e.sells,
		AvgStrategyLatencyNs: e.latency.AvgNs(),
		MaxStrategyLatencyNs: e.latency.MaxNs(),
		CurrentMarketState:   e.classifier.State(),
	}
}

// PollOnce drains up to maxFragments DC signals from the input lane.
func (e *Engine) PollOnce(maxFragments int) int {
	return e.in.Poll(e.handleFragment, maxFragments)
}

func (e *Engine) handleFragment(fragment []byte) {
	start := timeutil.NowNs()

	signal, ok := codec.DecodeDCSignal(fragment)
	if !ok {
		logs.Errorf("strategy: invalid dc signal fragment size %d", len(fragment))
		return
	}

	e.mu.Lock()
	e.signals++
	if e.cfg.EnableRegime {
		e.classifier.Observe(signal.TMVExt, signal.Duration)
	}
	e.mu.Unlock()

	tradingSignal := e.generateTradingSignal(signal)

	if tradingSignal != schema.SignalNone {
		order := schema.Order{
			Timestamp:         timeutil.NowNs(),
			Signal:            tradingSignal,
			Price:             signal.Price,
			Quantity:          e.calculateOrderQuantity(signal.Price),
			Symbol:            signal.Symbol,
			StrategyLatencyNs: timeutil.NowNs() - signal.Timestamp,
		}

		if e.publish(order) {
			e.mu.Lock()
			e.orders++
			switch tradingSignal {
			case schema.SignalBuy:
				e.buys++
			case schema.SignalSell:
				e.sells++
			}
			e.mu.Unlock()
		}
	}

	e.mu.Lock()
	e.latency.Observe(timeutil.NowNs() - start)
	e.mu.Unlock()
}

// generateTradingSignal applies the DC reversal rule: an upturn with a
// positive time-adjusted return is a buy; a downturn with a negative one is
// a sell. Anything else produces no signal.
func (e *Engine) generateTradingSignal(signal schema.DCSignal) schema.Signal {
	switch signal.EventKind {
	case schema.EventUpturn:
		if signal.TimeAdjustedReturn > 0.0 {
			return schema.SignalBuy
		}
	case schema.EventDownturn:
		if signal.TimeAdjustedReturn < 0.0 {
			return schema.SignalSell
		}
	}
	return schema.SignalNone
}

func (e *Engine) calculateOrderQuantity(price float64) float64 {
	e.mu.Lock()
	volAdjustment := 1.0
	if e.cfg.EnableRegime {
		volAdjustment = e.classifier.VolatilityAdjustedLeverage()
	}
	leverage := e.cfg.LeverageFactor
	e.mu.Unlock()

	return risk.SizeOrder(price, leverage, volAdjustment)
}

func (e *Engine) publish(order schema.Order) bool {
	buf := codec.EncodeOrder(nil, order)
	switch result := e.out.Offer(buf); result {
	case bus.OfferOK:
		logs.Infof("trading order generated: signal=%s price=%f quantity=%f", order.Signal, order.Price, order.Quantity)
		return true
	case bus.OfferNotConnected:
		logs.Errorf("strategy: order lane not connected, dropping order")
	case bus.OfferBackPressured:
		logs.Debugf("strategy: order lane back pressured, dropping order")
	case bus.OfferClosed:
		logs.Errorf("strategy: order lane closed, dropping order")
	}
	return false
}
