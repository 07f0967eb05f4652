package resp

import (
	"testing"

	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSimpleString(t *testing.T) {
	assert.Equal(t, []byte("+OK\r\n"), Encode(SimpleStr("OK")))
}

func TestEncodeError(t *testing.T) {
	assert.Equal(t, []byte("-ERR bad thing\r\n"), Encode(Err("ERR bad thing")))
}

func TestEncodeInteger(t *testing.T) {
	assert.Equal(t, []byte(":1000\r\n"), Encode(Int(1000)))
}

func TestEncodeBulkString(t *testing.T) {
	assert.Equal(t, []byte("$6\r\nfoobar\r\n"), Encode(BulkStr("foobar")))
}

func TestEncodeNilBulk(t *testing.T) {
	assert.Equal(t, []byte("$-1\r\n"), Encode(NilBulk()))
}

func TestEncodeNilArray(t *testing.T) {
	assert.Equal(t, []byte("*-1\r\n"), Encode(NilArray()))
}

func TestEncodeArray(t *testing.T) {
	want := []byte("*2\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	assert.Equal(t, want, Encode(Arr(BulkStr("foo"), BulkStr("bar"))))
}

// TestRoundTrip checks the universal property from spec.md §8:
// decode(encode(f)) == f for every frame shape the decoder can produce.
func TestRoundTrip(t *testing.T) {
	frames := []Frame{
		SimpleStr("OK"),
		Err("ERR wrong number of arguments for 'get' command"),
		Int(0),
		Int(-42),
		BulkStr(""),
		BulkStr("hello world"),
		NilBulk(),
		Arr(),
		NilArray(),
		Arr(BulkStr("SET"), BulkStr("k"), BulkStr("v")),
		Arr(Arr(BulkStr("a")), BulkStr("b")),
	}
	for _, f := range frames {
		wire := Encode(f)
		got, n, err := Decode(wire)
		require.NoError(t, err)
		assert.Equal(t, len(wire), n)
		assert.Equal(t, f, got)
	}
}

// TestEncodeMatchesRedigoErrorShape cross-checks this package's error
// encoding against gomodule/redigo's notion of a RESP error reply, using
// redigo purely as an external oracle for wire-format correctness (see
// SPEC_FULL.md §10 and DESIGN.md).
func TestEncodeMatchesRedigoErrorShape(t *testing.T) {
	msg := "WRONGTYPE Operation against a key holding the wrong kind of value"
	wire := Encode(Err(msg))
	require.Equal(t, byte('-'), wire[0])

	redigoErr := redis.Error(msg)
	assert.Equal(t, msg, redigoErr.Error())
	assert.Equal(t, string(wire[1:len(wire)-2]), redigoErr.Error())
}
