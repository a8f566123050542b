// Package marketdata implements the first pipeline stage: it consumes raw
// ticks off a Lane, runs each one through a per-symbol DC detector, and
// publishes confirmed directional-change events onto an output Lane.
package marketdata

import (
	"sync"

	"github.com/yanun0323/logs"

	"dcengine/internal/bus"
	"dcengine/internal/codec"
	"dcengine/internal/dcdetector"
	"dcengine/internal/schema"
	"dcengine/internal/timeutil"
)

// Statistics tracks throughput and latency for the processing loop.
type Statistics struct {
	MessagesProcessed  int64
	DCEventsDetected   int64
	AvgProcessingLatencyNs float64
	MaxProcessingLatencyNs int64
}

// Processor reads Tick records from an input Lane and writes DCSignal
// records to an output Lane.
type Processor struct {
	in  *bus.Lane
	out *bus.Lane

	theta float64

	mu        sync.Mutex
	detectors map[string]*dcdetector.Detector
	latency   timeutil.LatencyStats
	messages  int64
	dcEvents  int64
}

// New creates a Processor wired to the given input and output lanes, using
// theta as the default DC threshold for every symbol it first observes.
func New(in, out *bus.Lane, theta float64) *Processor {
	return &Processor{
		in:        in,
		out:       out,
		theta:     theta,
		detectors: make(map[string]*dcdetector.Detector),
	}
}

// SetTheta updates the DC threshold applied to detectors created from this
// point forward, and to every detector already tracked.
func (p *Processor) SetTheta(theta float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.theta = theta
	for _, d := range p.detectors {
		d.SetTheta(theta)
	}
}

// Statistics returns a snapshot of the processor's running counters.
func (p *Processor) Statistics() Statistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Statistics{
		MessagesProcessed:      p.messages,
		DCEventsDetected:       p.dcEvents,
		AvgProcessingLatencyNs: p.latency.AvgNs(),
		MaxProcessingLatencyNs: p.latency.MaxNs(),
	}
}

// PollOnce drains up to maxFragments ticks from the input lane, processing
// each through its symbol's detector and publishing any resulting DC
// signal. It returns the number of ticks processed.
func (p *Processor) PollOnce(maxFragments int) int {
	return p.in.Poll(p.handleFragment, maxFragments)
}

func (p *Processor) handleFragment(fragment []byte) {
	start := timeutil.NowNs()

	tick, ok := codec.DecodeTick(fragment)
	if !ok {
		logs.Errorf("marketdata: invalid tick fragment size %d", len(fragment))
		return
	}

	event := p.process(tick)

	p.mu.Lock()
	p.messages++
	p.latency.Observe(timeutil.NowNs() - start)
	p.mu.Unlock()

	if event.Kind == schema.EventNone {
		return
	}

	p.mu.Lock()
	p.dcEvents++
	p.mu.Unlock()

	p.publish(event, tick.Symbol)
}

func (p *Processor) process(tick schema.Tick) dcdetector.Event {
	symbol := tick.Symbol.String()

	p.mu.Lock()
	d, exists := p.detectors[symbol]
	if !exists {
		d = dcdetector.New(p.theta)
		p.detectors[symbol] = d
	}
	p.mu.Unlock()

	return d.ProcessTick(tick.Timestamp, tick.Price)
}

func (p *Processor) publish(event dcdetector.Event, symbol schema.Symbol) {
	signal := schema.DCSignal{
		Timestamp:          event.Timestamp,
		EventKind:          event.Kind,
		Price:              event.Price,
		TMVExt:             event.TMVExt,
		Duration:           event.Duration,
		TimeAdjustedReturn: event.TimeAdjustedReturn,
		Symbol:             symbol,
	}

	buf := codec.EncodeDCSignal(nil, signal)
	switch result := p.out.Offer(buf); result {
	case bus.OfferOK:
		logs.Infof("dc signal published: kind=%s price=%f", signal.EventKind, signal.Price)
	case bus.OfferNotConnected:
		logs.Errorf("marketdata: dc signal lane not connected, dropping signal")
	case bus.OfferBackPressured:
		logs.Debugf("marketdata: dc signal lane back pressured, dropping signal")
	case bus.OfferClosed:
		logs.Errorf("marketdata: dc signal lane closed, dropping signal")
	}
}
