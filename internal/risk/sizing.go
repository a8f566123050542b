// Package risk sizes trading orders and enforces the notional cap the
// strategy engine applies before publishing to the execution lane.
package risk

import "math"

// BaseQuantity is the unscaled order size before leverage and volatility
// adjustments are applied.
const BaseQuantity = 100.0

// MaxNotionalPerTrade bounds how much capital a single order may commit,
// regardless of the leverage and volatility adjustments in play.
const MaxNotionalPerTrade = 10000.0

// MinQuantity is the floor every sized order is clamped to.
const MinQuantity = 1.0

// SizeOrder computes an order quantity from the base size, a leverage
// factor, and a volatility adjustment multiplier, then caps the resulting
// notional (quantity * price) at MaxNotionalPerTrade.
func SizeOrder(price, leverageFactor, volatilityAdjustment float64) float64 {
	quantity := BaseQuantity * leverageFactor * volatilityAdjustment

	if price > 0.0 {
		if capped, ok := notionalCappedQuantity(quantity, price); ok {
			quantity = capped
		}
	}

	return math.Max(MinQuantity, quantity)
}

// notionalCappedQuantity returns the quantity clamped so that
// quantity*price does not exceed MaxNotionalPerTrade. A NaN or infinite
// quantity is reported with ok=false, and SizeOrder then leaves it uncapped.
func notionalCappedQuantity(quantity, price float64) (float64, bool) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return 0, false
	}
	maxQty := MaxNotionalPerTrade / price
	if quantity > maxQty {
		return maxQty, true
	}
	return quantity, true
}
