// Package resp implements the wire codec for the RESP protocol: decoding a
// byte stream into typed frames and encoding frames back into bytes.
package resp

import "fmt"

// Type identifies the RESP frame kind by its leading byte on the wire.
type Type byte

const (
	SimpleString Type = '+'
	Error        Type = '-'
	Integer      Type = ':'
	BulkString   Type = '$'
	Array        Type = '*'
)

// Frame is one fully-decoded RESP value. Only the fields relevant to Type
// are meaningful; zero values elsewhere are ignored by Encode.
type Frame struct {
	Type Type

	Str string // SimpleString, Error
	Int int64  // Integer

	Bulk    []byte // BulkString payload; meaningless when BulkNil
	BulkNil bool   // true => "$-1\r\n"

	Elems    []Frame // Array elements; meaningless when ArrayNil
	ArrayNil bool    // true => "*-1\r\n"
}

func SimpleStr(s string) Frame { return Frame{Type: SimpleString, Str: s} }
func Err(msg string) Frame     { return Frame{Type: Error, Str: msg} }
func Int(n int64) Frame        { return Frame{Type: Integer, Int: n} }

func Bulk(b []byte) Frame {
	if b == nil {
		return NilBulk()
	}
	return Frame{Type: BulkString, Bulk: b}
}

func BulkStr(s string) Frame { return Frame{Type: BulkString, Bulk: []byte(s)} }

func NilBulk() Frame { return Frame{Type: BulkString, BulkNil: true} }

func Arr(elems ...Frame) Frame { return Frame{Type: Array, Elems: elems} }

func NilArray() Frame { return Frame{Type: Array, ArrayNil: true} }

// IsNil reports whether f denotes the RESP nil sentinel, either as a null
// bulk string or a null array.
func (f Frame) IsNil() bool {
	return (f.Type == BulkString && f.BulkNil) || (f.Type == Array && f.ArrayNil)
}

func (f Frame) String() string {
	switch f.Type {
	case SimpleString:
		return f.Str
	case Error:
		return "(error) " + f.Str
	case Integer:
		return fmt.Sprintf("(integer) %d", f.Int)
	case BulkString:
		if f.BulkNil {
			return "(nil)"
		}
		return string(f.Bulk)
	case Array:
		if f.ArrayNil {
			return "(nil)"
		}
		s := fmt.Sprintf("(array of %d)", len(f.Elems))
		return s
	default:
		return "(unknown)"
	}
}
