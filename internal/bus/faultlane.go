package bus

import (
	"fmt"
	"math/rand"
	"time"
)

// FaultConfig controls the fault-injection rules applied by a FaultLane.
// It exists to exercise drop, duplicate, and reordering handling in the
// pipeline stages without a real network or IPC layer.
type FaultConfig struct {
	Seed          int64
	DropRate      float64
	DuplicateRate float64
	ReorderWindow int
}

// Validate ensures the config is within supported ranges.
func (c FaultConfig) Validate() error {
	if c.DropRate < 0 || c.DropRate > 1 {
		return fmt.Errorf("dropRate must be between 0 and 1")
	}
	if c.DuplicateRate < 0 || c.DuplicateRate > 1 {
		return fmt.Errorf("duplicateRate must be between 0 and 1")
	}
	if c.ReorderWindow < 0 {
		return fmt.Errorf("reorderWindow must be >= 0")
	}
	return nil
}

// FaultLane wraps a Lane and injects drops, duplicates, and reordering on
// Offer, for use in tests that exercise a stage's response to an unreliable
// transport.
type FaultLane struct {
	*Lane
	cfg     FaultConfig
	rng     *rand.Rand
	pending [][]byte
}

// NewFaultLane allocates a fault-injecting lane wrapping a freshly created
// Lane of the given capacity.
func NewFaultLane(capacity int, cfg FaultConfig) (*FaultLane, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReorderWindow <= 0 {
		cfg.ReorderWindow = 1
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UTC().UnixNano()
	}
	return &FaultLane{
		Lane: NewLane(capacity),
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Offer applies the configured fault rules before delegating to the
// underlying Lane. A dropped fragment reports OfferOK to the caller, since
// from the producer's perspective the drop is indistinguishable from a
// fragment lost downstream.
func (f *FaultLane) Offer(fragment []byte) OfferResult {
	if f.shouldDrop() {
		return OfferOK
	}

	f.pending = append(f.pending, fragment)
	if len(f.pending) < f.cfg.ReorderWindow {
		return OfferOK
	}

	idx := f.rng.Intn(len(f.pending))
	out := f.pending[idx]
	f.pending = append(f.pending[:idx], f.pending[idx+1:]...)

	result := f.Lane.Offer(out)
	if result == OfferOK && f.shouldDuplicate() {
		f.Lane.Offer(out)
	}
	return result
}

// Flush offers any fragments still buffered for reordering. Call this once
// a test has finished producing, so no fragment is silently lost inside the
// reorder window.
func (f *FaultLane) Flush() {
	for len(f.pending) > 0 {
		idx := f.rng.Intn(len(f.pending))
		out := f.pending[idx]
		f.pending = append(f.pending[:idx], f.pending[idx+1:]...)
		f.Lane.Offer(out)
	}
}

func (f *FaultLane) shouldDrop() bool {
	return f.cfg.DropRate > 0 && f.rng.Float64() < f.cfg.DropRate
}

func (f *FaultLane) shouldDuplicate() bool {
	return f.cfg.DuplicateRate > 0 && f.rng.Float64() < f.cfg.DuplicateRate
}
