package resp

import (
	"strconv"
)

// Encode is a total function from Frame to its wire bytes. Every frame
// produced by Decode round-trips through Encode unchanged.
func Encode(f Frame) []byte {
	var buf []byte
	return appendFrame(buf, f)
}

func appendFrame(buf []byte, f Frame) []byte {
	switch f.Type {
	case SimpleString:
		buf = append(buf, '+')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')

	case Error:
		buf = append(buf, '-')
		buf = append(buf, f.Str...)
		return append(buf, '\r', '\n')

	case Integer:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, f.Int, 10)
		return append(buf, '\r', '\n')

	case BulkString:
		if f.BulkNil {
			return append(buf, '$', '-', '1', '\r', '\n')
		}
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(f.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, f.Bulk...)
		return append(buf, '\r', '\n')

	case Array:
		if f.ArrayNil {
			return append(buf, '*', '-', '1', '\r', '\n')
		}
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(f.Elems)), 10)
		buf = append(buf, '\r', '\n')
		for _, elem := range f.Elems {
			buf = appendFrame(buf, elem)
		}
		return buf

	default:
		// Unreachable for frames produced by this package; fall back to nil
		// bulk so Encode stays total rather than panicking.
		return append(buf, '$', '-', '1', '\r', '\n')
	}
}
