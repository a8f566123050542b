package strategy

import (
	"testing"

	"dcengine/internal/bus"
	"dcengine/internal/codec"
	"dcengine/internal/schema"
)

func offerSignal(t *testing.T, lane *bus.Lane, sig schema.DCSignal) {
	t.Helper()
	if result := lane.Offer(codec.EncodeDCSignal(nil, sig)); result != bus.OfferOK {
		t.Fatalf("offer failed: %s", result)
	}
}

func TestEngineEmitsBuyOnPositiveUpturn(t *testing.T) {
	in := bus.NewLane(8)
	out := bus.NewLane(8)
	in.Connect()
	out.Connect()

	e := New(in, out, Config{LeverageFactor: 1.0})
	sym := schema.NewSymbol("BTCUSD")

	offerSignal(t, in, schema.DCSignal{
		EventKind:          schema.EventUpturn,
		Price:              100.0,
		TimeAdjustedReturn: 0.01,
		Symbol:             sym,
	})

	e.PollOnce(10)

	var orders []schema.Order
	out.Poll(func(fragment []byte) {
		o, ok := codec.DecodeOrder(fragment)
		if !ok {
			t.Fatalf("failed to decode order")
		}
		orders = append(orders, o)
	}, 10)

	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].Signal != schema.SignalBuy {
		t.Fatalf("expected buy signal, got %s", orders[0].Signal)
	}
}

func TestEngineEmitsSellOnNegativeDownturn(t *testing.T) {
	in := bus.NewLane(8)
	out := bus.NewLane(8)
	in.Connect()
	out.Connect()

	e := New(in, out, Config{LeverageFactor: 1.0})

	offerSignal(t, in, schema.DCSignal{
		EventKind:          schema.EventDownturn,
		Price:              100.0,
		TimeAdjustedReturn: -0.01,
		Symbol:             schema.NewSymbol("BTCUSD"),
	})

	e.PollOnce(10)

	stats := e.Statistics()
	if stats.SellSignals != 1 {
		t.Fatalf("expected 1 sell signal, got %d", stats.SellSignals)
	}
}

func TestEngineSkipsNonConfirmingReturn(t *testing.T) {
	in := bus.NewLane(8)
	out := bus.NewLane(8)
	in.Connect()
	out.Connect()

	e := New(in, out, Config{LeverageFactor: 1.0})

	// Upturn with a non-positive time-adjusted return should not trade.
	offerSignal(t, in, schema.DCSignal{
		EventKind:          schema.EventUpturn,
		Price:              100.0,
		TimeAdjustedReturn: 0.0,
		Symbol:             schema.NewSymbol("BTCUSD"),
	})

	e.PollOnce(10)

	if stats := e.Statistics(); stats.OrdersGenerated != 0 {
		t.Fatalf("expected no orders, got %d", stats.OrdersGenerated)
	}
}

func TestEngineAppliesRegimeSizing(t *testing.T) {
	in := bus.NewLane(8)
	out := bus.NewLane(8)
	in.Connect()
	out.Connect()

	e := New(in, out, Config{LeverageFactor: 1.0, EnableRegime: true})

	// Long duration relative to TMVExt classifies as low volatility,
	// which should scale sizing up relative to the default.
	offerSignal(t, in, schema.DCSignal{
		EventKind:          schema.EventUpturn,
		Price:              10.0,
		TMVExt:             1.0,
		Duration:           100 * int64(1e9),
		TimeAdjustedReturn: 0.01,
		Symbol:             schema.NewSymbol("BTCUSD"),
	})

	e.PollOnce(10)

	var order schema.Order
	out.Poll(func(fragment []byte) {
		o, _ := codec.DecodeOrder(fragment)
		order = o
	}, 10)

	if e.classifier.State() != MarketStateLowVolatility {
		t.Fatalf("expected low-volatility classification, got %s", e.classifier.State())
	}
	if order.Quantity <= 100.0 {
		t.Fatalf("expected low-volatility sizing to scale above the base 100 units, got %f", order.Quantity)
	}
}

func TestEngineDropsOrderWhenOutputLaneDisconnected(t *testing.T) {
	in := bus.NewLane(8)
	out := bus.NewLane(8) // never connected
	in.Connect()

	e := New(in, out, Config{LeverageFactor: 1.0})

	offerSignal(t, in, schema.DCSignal{
		EventKind:          schema.EventUpturn,
		Price:              100.0,
		TimeAdjustedReturn: 0.01,
		Symbol:             schema.NewSymbol("BTCUSD"),
	})

	e.PollOnce(10)

	if stats := e.Statistics(); stats.OrdersGenerated != 0 {
		t.Fatalf("expected dropped order to not count as generated, got %d", stats.OrdersGenerated)
	}
}
