package execution

import (
	"testing"

	"dcengine/internal/schema"
)

func fill(signal schema.Signal, price, qty float64) schema.TradeExecution {
	return schema.TradeExecution{
		Signal:           signal,
		ExecutedPrice:    price,
		ExecutedQuantity: qty,
		Status:           schema.ExecutionFilled,
	}
}

func TestRecordBuyHasZeroPnL(t *testing.T) {
	a := NewAccumulator(100000)
	pnl := a.Record(fill(schema.SignalBuy, 100.0, 10))
	if pnl != 0 {
		t.Fatalf("expected zero P&L on opening buy, got %f", pnl)
	}
	qty, avg := a.Position()
	if qty != 10 || avg != 100.0 {
		t.Fatalf("expected position 10 @ 100.0, got %f @ %f", qty, avg)
	}
}

func TestRecordSellRealizesPnL(t *testing.T) {
	a := NewAccumulator(100000)
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	pnl := a.Record(fill(schema.SignalSell, 110.0, 10))

	if pnl != 100.0 {
		t.Fatalf("expected 100.0 realized P&L, got %f", pnl)
	}

	metrics := a.Metrics()
	if metrics.TotalTrades != 2 {
		t.Fatalf("expected 2 recorded trades, got %d", metrics.TotalTrades)
	}
	if metrics.WinningTrades != 1 {
		t.Fatalf("expected 1 winning trade, got %d", metrics.WinningTrades)
	}
}

func TestRecordPartialSellKeepsRemainingPosition(t *testing.T) {
	a := NewAccumulator(100000)
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	a.Record(fill(schema.SignalSell, 110.0, 4))

	qty, avg := a.Position()
	if qty != 6 {
		t.Fatalf("expected 6 units remaining, got %f", qty)
	}
	if avg != 100.0 {
		t.Fatalf("expected average entry price to remain 100.0, got %f", avg)
	}
}

func TestRecordOversellOpensShort(t *testing.T) {
	a := NewAccumulator(100000)
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	// Selling more than held: 10 units close the long, 5 open a new short.
	pnl := a.Record(fill(schema.SignalSell, 90.0, 15))

	if pnl != -100.0 {
		t.Fatalf("expected -100.0 realized P&L on the closed portion, got %f", pnl)
	}

	qty, avg := a.Position()
	if qty != -5 {
		t.Fatalf("expected a short position of -5, got %f", qty)
	}
	if avg != 90.0 {
		t.Fatalf("expected new short entry price 90.0, got %f", avg)
	}
}

func TestWinRateAndAverageTradePnL(t *testing.T) {
	a := NewAccumulator(100000)
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	a.Record(fill(schema.SignalSell, 110.0, 10)) // +100
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	a.Record(fill(schema.SignalSell, 95.0, 10)) // -50

	metrics := a.Metrics()
	if metrics.WinningTrades != 1 || metrics.LosingTrades != 1 {
		t.Fatalf("expected 1 win and 1 loss, got win=%d loss=%d", metrics.WinningTrades, metrics.LosingTrades)
	}
	if metrics.WinRate != 0.25 {
		t.Fatalf("expected win rate 0.25 (2 pnl-neutral buys + 1 win + 1 loss), got %f", metrics.WinRate)
	}
	if metrics.AvgTradePnL != 12.5 {
		t.Fatalf("expected average trade P&L 12.5 (total 50 over 4 trades), got %f", metrics.AvgTradePnL)
	}
}

func TestMaxDrawdownTracksPeakToTrough(t *testing.T) {
	a := NewAccumulator(1000)
	a.Record(fill(schema.SignalBuy, 10.0, 10))
	a.Record(fill(schema.SignalSell, 20.0, 10)) // capital rises to 1100, new peak
	a.Record(fill(schema.SignalBuy, 10.0, 10))
	a.Record(fill(schema.SignalSell, 5.0, 10)) // capital falls to 1050

	metrics := a.Metrics()
	if metrics.MaxDrawdown <= 0 {
		t.Fatalf("expected a positive drawdown after the losing trade, got %f", metrics.MaxDrawdown)
	}
}

func TestSharpeRatioZeroUnderTwoSamples(t *testing.T) {
	a := NewAccumulator(100000)
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	metrics := a.Metrics()
	if metrics.SharpeRatio != 0 {
		t.Fatalf("expected zero Sharpe ratio with fewer than 2 returns, got %f", metrics.SharpeRatio)
	}
}

func TestResetClearsAllState(t *testing.T) {
	a := NewAccumulator(50000)
	a.Record(fill(schema.SignalBuy, 100.0, 10))
	a.Record(fill(schema.SignalSell, 110.0, 10))

	a.Reset()

	if a.CurrentCapital() != 50000 {
		t.Fatalf("expected capital reset to 50000, got %f", a.CurrentCapital())
	}
	metrics := a.Metrics()
	if metrics.TotalTrades != 0 {
		t.Fatalf("expected trade count reset to 0, got %d", metrics.TotalTrades)
	}
}

func TestNonFilledExecutionIsIgnored(t *testing.T) {
	a := NewAccumulator(100000)
	pnl := a.Record(schema.TradeExecution{Signal: schema.SignalBuy, Status: schema.ExecutionRejected, ExecutedQuantity: 10})
	if pnl != 0 {
		t.Fatalf("expected zero P&L for a rejected execution, got %f", pnl)
	}
	if metrics := a.Metrics(); metrics.TotalTrades != 0 {
		t.Fatalf("expected rejected execution to not count as a trade, got %d", metrics.TotalTrades)
	}
}
