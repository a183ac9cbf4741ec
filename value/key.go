package value

import (
	"encoding/binary"
	"math"
	"time"
)

// AppendKey appends a canonical binary encoding of v to buf. Values that
// compare equal after widening encode identically, so the encoding can key
// hash tables: every integral width encodes as a LONG, an integral-valued
// float encodes as the matching integer, and DATE/DATETIME/TIMESTAMP encode
// as the instant they denote.
func AppendKey(buf []byte, v ExprValue) []byte {
	switch x := v.(type) {
	case nil, missingValue:
		return append(buf, 'm')
	case nullValue:
		return append(buf, 'n')
	case Byte, Short, Integer, Long:
		n, _ := AsLong(x)
		return appendInt(append(buf, 'i'), n)
	case Float, Double:
		f, _ := AsDouble(x)
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return appendInt(append(buf, 'i'), int64(f))
		}
		return binary.BigEndian.AppendUint64(append(buf, 'f'), math.Float64bits(f))
	case Boolean:
		if x {
			return append(buf, 'b', 1)
		}
		return append(buf, 'b', 0)
	case String:
		buf = appendInt(append(buf, 's'), int64(len(x)))
		return append(buf, string(x)...)
	case Time:
		return appendTime(append(buf, 't'), x.t)
	case Date:
		return appendTime(append(buf, 'd'), x.t)
	case Datetime:
		return appendTime(append(buf, 'd'), x.t)
	case Timestamp:
		return appendTime(append(buf, 'd'), x.t)
	case Collection:
		buf = appendInt(append(buf, 'a'), int64(len(x)))
		for _, item := range x {
			buf = AppendKey(buf, item)
		}
		return buf
	case Tuple:
		buf = appendInt(append(buf, 'r'), int64(len(x.values)))
		for i, item := range x.values {
			buf = appendInt(buf, int64(len(x.names[i])))
			buf = append(buf, x.names[i]...)
			buf = AppendKey(buf, item)
		}
		return buf
	}
	return append(buf, v.String()...)
}

func appendInt(buf []byte, n int64) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(n))
}

func appendTime(buf []byte, t time.Time) []byte {
	return appendInt(buf, t.UnixNano())
}
