package risk

import "testing"

func TestSizeOrderDefaultLeverage(t *testing.T) {
	qty := SizeOrder(50.0, 1.0, 1.0)
	if qty != 100.0 {
		t.Fatalf("expected 100 units, got %f", qty)
	}
}

func TestSizeOrderCapsAtMaxNotional(t *testing.T) {
	// 100 * 3.0 leverage = 300 units at price 1000 -> notional 300,000,
	// well past the 10,000 cap, so it should clamp to 10.
	qty := SizeOrder(1000.0, 3.0, 1.0)
	want := MaxNotionalPerTrade / 1000.0
	if qty != want {
		t.Fatalf("expected capped quantity %f, got %f", want, qty)
	}
}

func TestSizeOrderFloorsAtMinimum(t *testing.T) {
	// An extreme price pushes the notional cap below 1 unit.
	qty := SizeOrder(50000.0, 1.0, 1.0)
	if qty != MinQuantity {
		t.Fatalf("expected floor of %f, got %f", MinQuantity, qty)
	}
}

func TestSizeOrderZeroPriceSkipsCap(t *testing.T) {
	qty := SizeOrder(0, 1.0, 1.0)
	if qty != BaseQuantity {
		t.Fatalf("expected uncapped base quantity %f, got %f", BaseQuantity, qty)
	}
}

func TestSizeOrderVolatilityAdjustment(t *testing.T) {
	low := SizeOrder(10.0, 1.0, 1.5)  // low-volatility regime
	high := SizeOrder(10.0, 1.0, 0.5) // high-volatility regime
	if !(high < low) {
		t.Fatalf("expected high-volatility sizing (%f) to be smaller than low-volatility sizing (%f)", high, low)
	}
}
