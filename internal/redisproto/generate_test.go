package redisproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-resp/kvserver/internal/resp"
)

func arrayOf(tokens ...string) resp.Frame {
	elems := make([]resp.Frame, len(tokens))
	for i, t := range tokens {
		elems[i] = resp.BulkStr(t)
	}
	return resp.Arr(elems...)
}

func TestGenerateRejectsNonArray(t *testing.T) {
	_, err := Generate(resp.BulkStr("get"))
	require.NotNil(t, err)
	assert.Equal(t, "ERR", err.Prefix)
}

func TestGenerateRejectsEmptyArray(t *testing.T) {
	_, err := Generate(arrayOf())
	require.NotNil(t, err)
}

func TestGenerateUnknownCommand(t *testing.T) {
	_, err := Generate(arrayOf("frobnicate", "x"))
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestGenerateIsCaseInsensitive(t *testing.T) {
	cmd, err := Generate(arrayOf("GeT", "k"))
	require.Nil(t, err)
	assert.Equal(t, Get, cmd.Kind)
	assert.Equal(t, "k", cmd.Key)
}

func TestGeneratePing(t *testing.T) {
	cmd, err := Generate(arrayOf("ping"))
	require.Nil(t, err)
	assert.Equal(t, Ping, cmd.Kind)
	assert.Equal(t, "", cmd.Message)

	cmd, err = Generate(arrayOf("ping", "hello"))
	require.Nil(t, err)
	assert.Equal(t, "hello", cmd.Message)

	_, err = Generate(arrayOf("ping", "a", "b"))
	require.NotNil(t, err)
}

func TestGenerateGetArity(t *testing.T) {
	_, err := Generate(arrayOf("get"))
	require.NotNil(t, err)
	_, err = Generate(arrayOf("get", "a", "b"))
	require.NotNil(t, err)
}

func TestGenerateSet(t *testing.T) {
	cmd, err := Generate(arrayOf("set", "k", "v"))
	require.Nil(t, err)
	assert.Equal(t, Set, cmd.Kind)
	assert.Equal(t, "k", cmd.Key)
	assert.Equal(t, "v", cmd.Value)

	_, err = Generate(arrayOf("set", "k"))
	require.NotNil(t, err)
}

func TestGenerateIncrByDecrBy(t *testing.T) {
	cmd, err := Generate(arrayOf("incrby", "k", "5"))
	require.Nil(t, err)
	assert.Equal(t, int64(5), cmd.Amount)

	_, err = Generate(arrayOf("incrby", "k", "notanumber"))
	require.NotNil(t, err)

	_, err = Generate(arrayOf("decrby", "k", "-1"))
	require.NotNil(t, err, "negative operand is rejected the way the original generator rejects it")
}

func TestGenerateMSetRequiresPairs(t *testing.T) {
	_, err := Generate(arrayOf("mset", "a", "1", "b"))
	require.NotNil(t, err)

	cmd, err := Generate(arrayOf("mset", "a", "1", "b", "2"))
	require.Nil(t, err)
	assert.Equal(t, [][2]string{{"a", "1"}, {"b", "2"}}, cmd.KVPairs)
}

func TestGenerateDel(t *testing.T) {
	cmd, err := Generate(arrayOf("del", "a", "b", "c"))
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, cmd.Keys)

	_, err = Generate(arrayOf("del"))
	require.NotNil(t, err)
}

func TestGenerateCopyAndRenameAreTwoKeyOnly(t *testing.T) {
	cmd, err := Generate(arrayOf("copy", "src", "dst"))
	require.Nil(t, err)
	assert.Equal(t, "src", cmd.Key)
	assert.Equal(t, "dst", cmd.Key2)

	_, err = Generate(arrayOf("copy", "src", "dst", "REPLACE"))
	require.NotNil(t, err, "REPLACE is never accepted")

	cmd, err = Generate(arrayOf("rename", "src", "dst"))
	require.Nil(t, err)
	assert.Equal(t, Rename, cmd.Kind)
}

func TestGenerateExpireAndExpireAt(t *testing.T) {
	cmd, err := Generate(arrayOf("expire", "k", "30"))
	require.Nil(t, err)
	assert.Equal(t, int64(30), cmd.TTLSeconds)

	cmd, err = Generate(arrayOf("expireat", "k", "1700000000"))
	require.Nil(t, err)
	assert.Equal(t, int64(1700000000), cmd.TTLUnixSeconds)

	_, err = Generate(arrayOf("expire", "k", "soon"))
	require.NotNil(t, err)
}

func TestGenerateListCommands(t *testing.T) {
	cmd, err := Generate(arrayOf("lpush", "L", "a", "b"))
	require.Nil(t, err)
	assert.Equal(t, "L", cmd.Key)
	assert.Equal(t, []string{"a", "b"}, cmd.Values)

	_, err = Generate(arrayOf("lpush", "L"))
	require.NotNil(t, err, "lpush requires at least one element")

	cmd, err = Generate(arrayOf("lpop", "L"))
	require.Nil(t, err)
	assert.Equal(t, -1, cmd.Count)

	cmd, err = Generate(arrayOf("lpop", "L", "3"))
	require.Nil(t, err)
	assert.Equal(t, 3, cmd.Count)

	cmd, err = Generate(arrayOf("lrange", "L", "0", "-1"))
	require.Nil(t, err)
	assert.Equal(t, 0, cmd.Begin)
	assert.Equal(t, -1, cmd.End)

	cmd, err = Generate(arrayOf("lrem", "L", "-2", "x"))
	require.Nil(t, err)
	assert.Equal(t, -2, cmd.Count)
	assert.Equal(t, "x", cmd.Element)

	cmd, err = Generate(arrayOf("lset", "L", "0", "x"))
	require.Nil(t, err)
	assert.Equal(t, 0, cmd.Index)
}

func TestGenerateSetCommands(t *testing.T) {
	cmd, err := Generate(arrayOf("sadd", "S", "a", "b"))
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, cmd.Values)

	_, err = Generate(arrayOf("sadd", "S"))
	require.NotNil(t, err)

	cmd, err = Generate(arrayOf("sismember", "S", "a"))
	require.Nil(t, err)
	assert.Equal(t, "a", cmd.Value)
}

func TestGenerateSubscribeUnsubscribePublish(t *testing.T) {
	cmd, err := Generate(arrayOf("subscribe", "ch1", "ch2"))
	require.Nil(t, err)
	assert.Equal(t, []string{"ch1", "ch2"}, cmd.Channels)

	_, err = Generate(arrayOf("subscribe"))
	require.NotNil(t, err)

	cmd, err = Generate(arrayOf("unsubscribe"))
	require.Nil(t, err, "bare UNSUBSCRIBE means 'all channels'")
	assert.Empty(t, cmd.Channels)

	cmd, err = Generate(arrayOf("publish", "ch1", "hello"))
	require.Nil(t, err)
	assert.Equal(t, "ch1", cmd.Channel)
	assert.Equal(t, "hello", cmd.Message)

	_, err = Generate(arrayOf("publish", "ch1"))
	require.NotNil(t, err)
}

func TestGeneratePubSubAndInfo(t *testing.T) {
	cmd, err := Generate(arrayOf("pubsub", "channels", "news.*"))
	require.Nil(t, err)
	assert.Equal(t, []string{"channels", "news.*"}, cmd.PubSubArgs)

	_, err = Generate(arrayOf("pubsub"))
	require.NotNil(t, err)

	cmd, err = Generate(arrayOf("info"))
	require.Nil(t, err)
	assert.Equal(t, Info, cmd.Kind)
}

func TestGenerateQuitTakesNoArguments(t *testing.T) {
	cmd, err := Generate(arrayOf("quit"))
	require.Nil(t, err)
	assert.Equal(t, Quit, cmd.Kind)
}
