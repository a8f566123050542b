package codec

import (
	"encoding/binary"
	"math"

	"dcengine/internal/schema"
)

// OrderSize is the wire size of an encoded Order record in bytes:
// int64 timestamp + int32 signal + float64 price + float64 quantity +
// 16-byte symbol + int64 strategy_latency_ns.
const OrderSize = 52

// EncodeOrder serializes an Order into a fixed-size payload.
func EncodeOrder(dst []byte, o schema.Order) []byte {
	if cap(dst) < OrderSize {
		dst = make([]byte, OrderSize)
	} else {
		dst = dst[:OrderSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(o.Timestamp))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(o.Signal))
	binary.LittleEndian.PutUint64(dst[12:20], math.Float64bits(o.Price))
	binary.LittleEndian.PutUint64(dst[20:28], math.Float64bits(o.Quantity))
	copy(dst[28:44], o.Symbol[:])
	binary.LittleEndian.PutUint64(dst[44:52], uint64(o.StrategyLatencyNs))

	return dst
}

// DecodeOrder parses a fixed-size Order payload.
func DecodeOrder(src []byte) (schema.Order, bool) {
	if len(src) < OrderSize {
		return schema.Order{}, false
	}

	var o schema.Order
	o.Timestamp = int64(binary.LittleEndian.Uint64(src[0:8]))
	o.Signal = schema.Signal(int32(binary.LittleEndian.Uint32(src[8:12])))
	o.Price = math.Float64frombits(binary.LittleEndian.Uint64(src[12:20]))
	o.Quantity = math.Float64frombits(binary.LittleEndian.Uint64(src[20:28]))
	copy(o.Symbol[:], src[28:44])
	o.StrategyLatencyNs = int64(binary.LittleEndian.Uint64(src[44:52]))

	return o, true
}
