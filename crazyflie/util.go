package crazyflie

import (
	"encoding/binary"
	"math"
)

// Decoders return interface{} so they fit into the per-type maps of the
// log and param subsystems. Everything is little endian.

func bytesToUint8(b []byte) interface{} {
	return b[0]
}

func bytesToUint16(b []byte) interface{} {
	return binary.LittleEndian.Uint16(b)
}

func bytesToUint32(b []byte) interface{} {
	return binary.LittleEndian.Uint32(b)
}

func bytesToInt8(b []byte) interface{} {
	return int8(b[0])
}

func bytesToInt16(b []byte) interface{} {
	return int16(binary.LittleEndian.Uint16(b))
}

func bytesToInt32(b []byte) interface{} {
	return int32(binary.LittleEndian.Uint32(b))
}

func bytesToFloat32(b []byte) interface{} {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func bytesToFloat16(b []byte) interface{} {
	return float16ToFloat32(binary.LittleEndian.Uint16(b))
}

func float16ToFloat32(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	frac := uint32(h & 0x3FF)

	switch {
	case exp == 0x1F: // inf or NaN
		return math.Float32frombits(sign | 0x7F800000 | frac<<13)
	case exp == 0 && frac == 0:
		return math.Float32frombits(sign)
	case exp == 0: // subnormal
		v := float32(frac) / (1 << 24)
		if sign != 0 {
			v = -v
		}
		return v
	default:
		return math.Float32frombits(sign | (exp+127-15)<<23 | frac<<13)
	}
}

func uint8ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(uint8)
	return []byte{x}, ok
}

func uint16ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(uint16)
	return binary.LittleEndian.AppendUint16(nil, x), ok
}

func uint32ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(uint32)
	return binary.LittleEndian.AppendUint32(nil, x), ok
}

func int8ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(int8)
	return []byte{byte(x)}, ok
}

func int16ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(int16)
	return binary.LittleEndian.AppendUint16(nil, uint16(x)), ok
}

func int32ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(int32)
	return binary.LittleEndian.AppendUint32(nil, uint32(x)), ok
}

func float32ToBytes(v interface{}) ([]byte, bool) {
	x, ok := v.(float32)
	return binary.LittleEndian.AppendUint32(nil, math.Float32bits(x)), ok
}

// toFloat64 widens any decoded log or param value.
func toFloat64(v interface{}) float64 {
	switch x := v.(type) {
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return math.NaN()
}

// splitName cuts "group\x00name\x00" into "group.name".
func splitName(b []byte) (string, bool) {
	parts := make([]string, 0, 2)
	start := 0
	for i, c := range b {
		if c == 0 {
			parts = append(parts, string(b[start:i]))
			start = i + 1
			if len(parts) == 2 {
				break
			}
		}
	}
	if len(parts) != 2 {
		return "", false
	}
	return parts[0] + "." + parts[1], true
}
