package codec

import (
	"encoding/binary"
	"math"

	"dcengine/internal/schema"
)

// TickSize is the wire size of an encoded Tick record in bytes:
// int64 timestamp + float64 price + float64 volume + 16-byte symbol.
const TickSize = 40

// EncodeTick serializes a Tick into a fixed-size payload.
func EncodeTick(dst []byte, t schema.Tick) []byte {
	if cap(dst) < TickSize {
		dst = make([]byte, TickSize)
	} else {
		dst = dst[:TickSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(t.Timestamp))
	binary.LittleEndian.PutUint64(dst[8:16], math.Float64bits(t.Price))
	binary.LittleEndian.PutUint64(dst[16:24], math.Float64bits(t.Volume))
	copy(dst[24:40], t.Symbol[:])

	return dst
}

// DecodeTick parses a fixed-size Tick payload.
func DecodeTick(src []byte) (schema.Tick, bool) {
	if len(src) < TickSize {
		return schema.Tick{}, false
	}

	var t schema.Tick
	t.Timestamp = int64(binary.LittleEndian.Uint64(src[0:8]))
	t.Price = math.Float64frombits(binary.LittleEndian.Uint64(src[8:16]))
	t.Volume = math.Float64frombits(binary.LittleEndian.Uint64(src[16:24]))
	copy(t.Symbol[:], src[24:40])

	return t, true
}
