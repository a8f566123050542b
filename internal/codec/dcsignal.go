package codec

import (
	"encoding/binary"
	"math"

	"dcengine/internal/schema"
)

// DCSignalSize is the wire size of an encoded DCSignal record in bytes:
// int64 timestamp + int32 event_kind + float64 price + float64 tmv_ext +
// int64 duration + float64 time_adjusted_return + 16-byte symbol.
const DCSignalSize = 60

// EncodeDCSignal serializes a DCSignal into a fixed-size payload.
func EncodeDCSignal(dst []byte, s schema.DCSignal) []byte {
	if cap(dst) < DCSignalSize {
		dst = make([]byte, DCSignalSize)
	} else {
		dst = dst[:DCSignalSize]
	}

	binary.LittleEndian.PutUint64(dst[0:8], uint64(s.Timestamp))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(s.EventKind))
	binary.LittleEndian.PutUint64(dst[12:20], math.Float64bits(s.Price))
	binary.LittleEndian.PutUint64(dst[20:28], math.Float64bits(s.TMVExt))
	binary.LittleEndian.PutUint64(dst[28:36], uint64(s.Duration))
	binary.LittleEndian.PutUint64(dst[36:44], math.Float64bits(s.TimeAdjustedReturn))
	copy(dst[44:60], s.Symbol[:])

	return dst
}

// DecodeDCSignal parses a fixed-size DCSignal payload.
func DecodeDCSignal(src []byte) (schema.DCSignal, bool) {
	if len(src) < DCSignalSize {
		return schema.DCSignal{}, false
	}

	var s schema.DCSignal
	s.Timestamp = int64(binary.LittleEndian.Uint64(src[0:8]))
	s.EventKind = schema.EventKind(int32(binary.LittleEndian.Uint32(src[8:12])))
	s.Price = math.Float64frombits(binary.LittleEndian.Uint64(src[12:20]))
	s.TMVExt = math.Float64frombits(binary.LittleEndian.Uint64(src[20:28]))
	s.Duration = int64(binary.LittleEndian.Uint64(src[28:36]))
	s.TimeAdjustedReturn = math.Float64frombits(binary.LittleEndian.Uint64(src[36:44]))
	copy(s.Symbol[:], src[44:60])

	return s, true
}
