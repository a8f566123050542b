// Package bus implements the fixed-capacity, non-blocking publish/subscribe
// lanes that connect the market-data processor, strategy engine, and
// execution engine. A Lane stands in for the Aeron IPC streams of the
// original system: single-producer, single-consumer, back-pressure on a
// full buffer, never retried by the lane itself.
package bus

import (
	"sync/atomic"
)

// OfferResult reports the outcome of a non-blocking publish attempt.
type OfferResult int32

const (
	// OfferOK means the payload was accepted onto the lane.
	OfferOK OfferResult = iota
	// OfferBackPressured means the lane's buffer is full; the caller must
	// drop the payload rather than retry or block.
	OfferBackPressured
	// OfferNotConnected means the lane has no active subscriber yet.
	OfferNotConnected
	// OfferClosed means the lane has been shut down.
	OfferClosed
)

func (r OfferResult) String() string {
	switch r {
	case OfferOK:
		return "ok"
	case OfferBackPressured:
		return "back_pressured"
	case OfferNotConnected:
		return "not_connected"
	case OfferClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Lane is a bounded, non-blocking single-producer/single-consumer channel
// of fixed-size wire records.
type Lane struct {
	ch        chan []byte
	closed    uint32
	connected uint32
}

// NewLane allocates a lane with the given fragment capacity. A lane starts
// disconnected; call Connect once a consumer has attached, mirroring the
// connect handshake of the original Aeron publications/subscriptions.
func NewLane(capacity int) *Lane {
	if capacity <= 0 {
		capacity = 1
	}
	return &Lane{ch: make(chan []byte, capacity)}
}

// Connect marks the lane as having an active subscriber.
func (l *Lane) Connect() {
	atomic.StoreUint32(&l.connected, 1)
}

// Disconnect marks the lane as having no active subscriber.
func (l *Lane) Disconnect() {
	atomic.StoreUint32(&l.connected, 0)
}

// IsConnected reports whether the lane currently has an active subscriber.
func (l *Lane) IsConnected() bool {
	return atomic.LoadUint32(&l.connected) != 0
}

// Offer attempts to publish a fragment without blocking. The caller owns
// the backing slice; Offer does not retain it beyond the call unless it is
// accepted onto the channel, so callers that reuse a buffer across calls
// must copy before offering.
func (l *Lane) Offer(fragment []byte) OfferResult {
	if atomic.LoadUint32(&l.closed) != 0 {
		return OfferClosed
	}
	if !l.IsConnected() {
		return OfferNotConnected
	}
	select {
	case l.ch <- fragment:
		return OfferOK
	default:
		return OfferBackPressured
	}
}

// Poll drains up to maxFragments from the lane, invoking handler for each
// one, and returns the number of fragments processed. Poll never blocks: it
// returns as soon as the lane has no more buffered fragments.
func (l *Lane) Poll(handler func([]byte), maxFragments int) int {
	n := 0
	for n < maxFragments {
		select {
		case fragment, ok := <-l.ch:
			if !ok {
				return n
			}
			handler(fragment)
			n++
		default:
			return n
		}
	}
	return n
}

// Close shuts the lane down. Subsequent Offer calls return OfferClosed and
// any buffered fragments remain drainable via Poll until exhausted.
func (l *Lane) Close() {
	if atomic.CompareAndSwapUint32(&l.closed, 0, 1) {
		close(l.ch)
	}
}
