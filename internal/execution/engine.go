// Package execution implements the final pipeline stage: it consumes
// orders, simulates (or would route) their fills, and accumulates
// position, P&L, and performance statistics.
package execution

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"dcengine/internal/bus"
	"dcengine/internal/codec"
	"dcengine/internal/schema"
	"dcengine/internal/timeutil"
)

// minSimulatedLatencyNs and maxSimulatedLatencyNs bound the artificial fill
// latency simulateExecution sleeps for, matching the reference simulator's
// 10-100 microsecond range.
const (
	minSimulatedLatencyNs = 10_000
	maxSimulatedLatencyNs = 100_000
	maxSlippage           = 0.0001 // +/- 0.01%
)

// Engine reads Order records from an input Lane, simulates their
// execution, and folds the results into an Accumulator.
type Engine struct {
	in *bus.Lane

	simulationMode bool
	orderCounter   uint64

	lifecycle   *Lifecycle
	accumulator *Accumulator

	rng *rand.Rand

	historyMu sync.Mutex
	history   []schema.TradeExecution
}

// New creates an Engine wired to the given input lane and starting capital.
// With simulationMode true every order is filled by the simulator; with it
// false orders go to the live placeholder and stay pending.
func New(in *bus.Lane, initialCapital float64, simulationMode bool) *Engine {
	return &Engine{
		in:             in,
		simulationMode: simulationMode,
		lifecycle:      NewLifecycle(),
		accumulator:    NewAccumulator(initialCapital),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Accumulator returns the engine's performance accumulator.
func (e *Engine) Accumulator() *Accumulator {
	return e.accumulator
}

// Lifecycle returns the engine's order lifecycle tracker.
func (e *Engine) Lifecycle() *Lifecycle {
	return e.lifecycle
}

// History returns a copy of every trade execution recorded so far, in
// execution order. Safe for concurrent readers.
func (e *Engine) History() []schema.TradeExecution {
	e.historyMu.Lock()
	defer e.historyMu.Unlock()
	out := make([]schema.TradeExecution, len(e.history))
	copy(out, e.history)
	return out
}

// PollOnce drains up to maxFragments orders from the input lane.
func (e *Engine) PollOnce(maxFragments int) int {
	return e.in.Poll(e.handleFragment, maxFragments)
}

func (e *Engine) handleFragment(fragment []byte) {
	order, ok := codec.DecodeOrder(fragment)
	if !ok {
		logs.Errorf("execution: invalid order fragment size %d", len(fragment))
		return
	}

	execution := e.executeOrder(order)
	e.lifecycle.Open(execution.OrderID)
	if err := e.lifecycle.Transition(execution.OrderID, execution.Status); err != nil {
		logs.Errorf("execution: lifecycle transition failed for %s: %v", execution.OrderID, err)
	}

	pnl := e.accumulator.Record(execution)

	e.historyMu.Lock()
	e.history = append(e.history, execution)
	e.historyMu.Unlock()

	logs.Infof("order executed: signal=%s price=%f quantity=%f status=%s pnl=%f",
		execution.Signal, execution.ExecutedPrice, execution.ExecutedQuantity, execution.Status, pnl)
}

func (e *Engine) executeOrder(order schema.Order) schema.TradeExecution {
	if e.simulationMode {
		return e.simulateExecution(order)
	}
	return e.executeLiveOrder(order)
}

// simulateExecution assumes every order fills, applying a randomized
// latency and small slippage as a stand-in for a real exchange round trip.
func (e *Engine) simulateExecution(order schema.Order) schema.TradeExecution {
	start := time.Now()

	execution := schema.TradeExecution{
		ExecutionTimestamp: timeutil.NowNs(),
		OrderID:            e.generateOrderID(),
		Signal:             order.Signal,
		ExecutedPrice:      order.Price,
		ExecutedQuantity:   order.Quantity,
		Status:             schema.ExecutionFilled,
		Symbol:             order.Symbol,
	}

	simulatedLatency := time.Duration(minSimulatedLatencyNs+e.rng.Intn(maxSimulatedLatencyNs-minSimulatedLatencyNs+1)) * time.Nanosecond
	time.Sleep(simulatedLatency)

	execution.ExecutionLatencyNs = timeutil.SinceNs(start)

	slippage := (e.rng.Float64()*2 - 1) * maxSlippage
	execution.ExecutedPrice *= 1.0 + slippage

	return execution
}

// executeLiveOrder is a placeholder for routing to a real broker; the
// pipeline never runs in live mode today, so this only marks the order
// pending and lets an external caller resolve it via Lifecycle.Transition.
func (e *Engine) executeLiveOrder(order schema.Order) schema.TradeExecution {
	logs.Errorf("execution: live order execution not implemented, returning pending placeholder")
	return schema.TradeExecution{
		ExecutionTimestamp: timeutil.NowNs(),
		OrderID:            e.generateOrderID(),
		Signal:             order.Signal,
		ExecutedPrice:      order.Price,
		ExecutedQuantity:   order.Quantity,
		Status:             schema.ExecutionPending,
		Symbol:             order.Symbol,
	}
}

func (e *Engine) generateOrderID() string {
	n := atomic.AddUint64(&e.orderCounter, 1)
	return fmt.Sprintf("ORDER_%d_%d", n, timeutil.NowUs())
}
