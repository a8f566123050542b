package bus

import "testing"

func TestLaneOfferNotConnected(t *testing.T) {
	l := NewLane(4)
	if got := l.Offer([]byte("x")); got != OfferNotConnected {
		t.Fatalf("expected not_connected, got %s", got)
	}
}

func TestLaneOfferBackPressure(t *testing.T) {
	l := NewLane(1)
	l.Connect()

	if got := l.Offer([]byte("a")); got != OfferOK {
		t.Fatalf("expected ok, got %s", got)
	}
	if got := l.Offer([]byte("b")); got != OfferBackPressured {
		t.Fatalf("expected back_pressured, got %s", got)
	}
}

func TestLaneOfferClosed(t *testing.T) {
	l := NewLane(1)
	l.Connect()
	l.Close()

	if got := l.Offer([]byte("a")); got != OfferClosed {
		t.Fatalf("expected closed, got %s", got)
	}
}

func TestLanePollDrainsInOrder(t *testing.T) {
	l := NewLane(4)
	l.Connect()

	for _, b := range [][]byte{[]byte("a"), []byte("b"), []byte("c")} {
		if got := l.Offer(b); got != OfferOK {
			t.Fatalf("offer failed: %s", got)
		}
	}

	var got []string
	n := l.Poll(func(fragment []byte) {
		got = append(got, string(fragment))
	}, 10)

	if n != 3 {
		t.Fatalf("expected 3 fragments, got %d", n)
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("fragment %d: got %q, want %q", i, got[i], w)
		}
	}
}

func TestLanePollRespectsMaxFragments(t *testing.T) {
	l := NewLane(4)
	l.Connect()
	l.Offer([]byte("a"))
	l.Offer([]byte("b"))

	n := l.Poll(func([]byte) {}, 1)
	if n != 1 {
		t.Fatalf("expected 1 fragment, got %d", n)
	}
	if n := l.Poll(func([]byte) {}, 10); n != 1 {
		t.Fatalf("expected 1 remaining fragment, got %d", n)
	}
}

func TestFaultLaneDropRateOne(t *testing.T) {
	f, err := NewFaultLane(4, FaultConfig{Seed: 1, DropRate: 1.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Connect()

	if got := f.Offer([]byte("a")); got != OfferOK {
		t.Fatalf("expected ok (dropped silently), got %s", got)
	}
	if n := f.Poll(func([]byte) {}, 10); n != 0 {
		t.Fatalf("expected dropped fragment to never reach the lane, got %d", n)
	}
}

func TestFaultLaneInvalidConfig(t *testing.T) {
	if _, err := NewFaultLane(4, FaultConfig{DropRate: 2}); err == nil {
		t.Fatalf("expected validation error for out-of-range drop rate")
	}
}
