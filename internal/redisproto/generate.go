package redisproto

import (
	"strconv"
	"strings"

	"github.com/go-resp/kvserver/internal/resp"
)

// tokensFromFrame validates that f is an array of bulk or simple strings
// and returns their string values, per spec.md §4.2: "A client request
// MUST be an array of bulk strings whose first element is the command
// name".
func tokensFromFrame(f resp.Frame) ([]string, *CommandError) {
	if f.Type != resp.Array || f.ArrayNil {
		return nil, &CommandError{Prefix: "ERR", Msg: "ERR Protocol error: expected array request"}
	}
	tokens := make([]string, 0, len(f.Elems))
	for _, elem := range f.Elems {
		switch elem.Type {
		case resp.BulkString:
			if elem.BulkNil {
				return nil, &CommandError{Prefix: "ERR", Msg: "ERR Protocol error: unexpected nil bulk string"}
			}
			tokens = append(tokens, string(elem.Bulk))
		case resp.SimpleString:
			tokens = append(tokens, elem.Str)
		default:
			return nil, &CommandError{Prefix: "ERR", Msg: "ERR Protocol error: expected bulk string"}
		}
	}
	return tokens, nil
}

// Generate decodes a request frame into a validated Command, applying the
// per-command arity and parse rules from spec.md §4.2.
func Generate(f resp.Frame) (*Command, *CommandError) {
	tokens, err := tokensFromFrame(f)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &CommandError{Prefix: "ERR", Msg: "ERR Protocol error: empty request"}
	}

	name := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch name {
	case "ping":
		return genPing(args)
	case "dbsize":
		return genDBSize(args)
	case "type":
		return genType(args)
	case "info":
		return genInfo(args)

	case "get":
		return genKeyOnly(Get, "get", args)
	case "set":
		return genSet(args)
	case "getset":
		return genKeyValue(GetSet, "getset", args)
	case "getdel":
		return genKeyOnly(GetDel, "getdel", args)
	case "append":
		return genKeyValue(Append, "append", args)
	case "incrby":
		return genIncrDecr(IncrBy, "incrby", args)
	case "decrby":
		return genIncrDecr(DecrBy, "decrby", args)
	case "mget":
		return genKeys(MGet, "mget", args)
	case "mset":
		return genMSet(args)

	case "del":
		return genKeys(Del, "del", args)
	case "exists":
		return genKeys(Exists, "exists", args)
	case "copy":
		return genTwoKeys(Copy, "copy", args)
	case "rename":
		return genTwoKeys(Rename, "rename", args)
	case "touch":
		return genKeys(Touch, "touch", args)
	case "expire":
		return genExpire(args)
	case "expireat":
		return genExpireAt(args)
	case "persist":
		return genKeyOnly(Persist, "persist", args)
	case "ttl":
		return genKeyOnly(TTL, "ttl", args)

	case "lpush":
		return genKeyValues(LPush, "lpush", args)
	case "rpush":
		return genKeyValues(RPush, "rpush", args)
	case "lpushx":
		return genKeyValues(LPushX, "lpushx", args)
	case "rpushx":
		return genKeyValues(RPushX, "rpushx", args)
	case "lpop":
		return genPop(LPop, "lpop", args)
	case "rpop":
		return genPop(RPop, "rpop", args)
	case "lindex":
		return genLIndex(args)
	case "llen":
		return genKeyOnly(LLen, "llen", args)
	case "lrange":
		return genLRange(args)
	case "lrem":
		return genLRem(args)
	case "lset":
		return genLSet(args)

	case "sadd":
		return genKeyValues(SAdd, "sadd", args)
	case "scard":
		return genKeyOnly(SCard, "scard", args)
	case "sismember":
		return genKeyValue(SIsMember, "sismember", args)
	case "smembers":
		return genKeyOnly(SMembers, "smembers", args)
	case "srem":
		return genKeyValues(SRem, "srem", args)

	case "subscribe":
		return genSubscribe(args)
	case "unsubscribe":
		return genUnsubscribe(args)
	case "publish":
		return genPublish(args)
	case "pubsub":
		return genPubSub(args)

	case "quit":
		return &Command{Kind: Quit, Name: "quit"}, nil

	default:
		return nil, errUnknownCommand(name)
	}
}

func genPing(args []string) (*Command, *CommandError) {
	if len(args) > 1 {
		return nil, errArity("ping")
	}
	msg := ""
	if len(args) == 1 {
		msg = args[0]
	}
	return &Command{Kind: Ping, Name: "ping", Message: msg}, nil
}

func genDBSize(args []string) (*Command, *CommandError) {
	if len(args) != 0 {
		return nil, errArity("dbsize")
	}
	return &Command{Kind: DBSize, Name: "dbsize"}, nil
}

func genType(args []string) (*Command, *CommandError) {
	if len(args) != 1 {
		return nil, errArity("type")
	}
	return &Command{Kind: Type, Name: "type", Key: args[0]}, nil
}

func genInfo(args []string) (*Command, *CommandError) {
	return &Command{Kind: Info, Name: "info", InfoParams: append([]string(nil), args...)}, nil
}

func genKeyOnly(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) != 1 {
		return nil, errArity(name)
	}
	return &Command{Kind: kind, Name: name, Key: args[0]}, nil
}

func genKeyValue(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errArity(name)
	}
	return &Command{Kind: kind, Name: name, Key: args[0], Value: args[1]}, nil
}

func genKeys(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) == 0 {
		return nil, errArity(name)
	}
	return &Command{Kind: kind, Name: name, Keys: append([]string(nil), args...)}, nil
}

func genKeyValues(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) < 2 {
		return nil, errArity(name)
	}
	return &Command{Kind: kind, Name: name, Key: args[0], Values: append([]string(nil), args[1:]...)}, nil
}

func genTwoKeys(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errArity(name)
	}
	return &Command{Kind: kind, Name: name, Key: args[0], Key2: args[1]}, nil
}

func genSet(args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errSyntax()
	}
	return &Command{Kind: Set, Name: "set", Key: args[0], Value: args[1]}, nil
}

func genIncrDecr(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errSyntax()
	}
	amount, perr := strconv.ParseInt(args[1], 10, 64)
	if perr != nil || amount < 0 {
		return nil, errNotInteger()
	}
	return &Command{Kind: kind, Name: name, Key: args[0], Amount: amount}, nil
}

func genMSet(args []string) (*Command, *CommandError) {
	if len(args) == 0 || len(args)%2 != 0 {
		return nil, errArity("mset")
	}
	pairs := make([][2]string, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pairs = append(pairs, [2]string{args[i], args[i+1]})
	}
	return &Command{Kind: MSet, Name: "mset", KVPairs: pairs}, nil
}

func genExpire(args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errArity("expire")
	}
	secs, perr := strconv.ParseInt(args[1], 10, 64)
	if perr != nil {
		return nil, errNotInteger()
	}
	return &Command{Kind: Expire, Name: "expire", Key: args[0], TTLSeconds: secs}, nil
}

func genExpireAt(args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errArity("expireat")
	}
	secs, perr := strconv.ParseInt(args[1], 10, 64)
	if perr != nil {
		return nil, errNotInteger()
	}
	return &Command{Kind: ExpireAt, Name: "expireat", Key: args[0], TTLUnixSeconds: secs}, nil
}

func genPop(kind Kind, name string, args []string) (*Command, *CommandError) {
	if len(args) == 0 || len(args) > 2 {
		return nil, errArity(name)
	}
	cmd := &Command{Kind: kind, Name: name, Key: args[0], Count: -1}
	if len(args) == 2 {
		count, perr := strconv.Atoi(args[1])
		if perr != nil || count < 0 {
			return nil, errNotInteger()
		}
		cmd.Count = count
	}
	return cmd, nil
}

func genLIndex(args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errArity("lindex")
	}
	idx, perr := strconv.Atoi(args[1])
	if perr != nil {
		return nil, errNotInteger()
	}
	return &Command{Kind: LIndex, Name: "lindex", Key: args[0], Index: idx}, nil
}

func genLRange(args []string) (*Command, *CommandError) {
	if len(args) != 3 {
		return nil, errArity("lrange")
	}
	begin, perr := strconv.Atoi(args[1])
	if perr != nil {
		return nil, errNotInteger()
	}
	end, perr := strconv.Atoi(args[2])
	if perr != nil {
		return nil, errNotInteger()
	}
	return &Command{Kind: LRange, Name: "lrange", Key: args[0], Begin: begin, End: end}, nil
}

func genLRem(args []string) (*Command, *CommandError) {
	if len(args) != 3 {
		return nil, errArity("lrem")
	}
	count, perr := strconv.Atoi(args[1])
	if perr != nil {
		return nil, errNotInteger()
	}
	return &Command{Kind: LRem, Name: "lrem", Key: args[0], Count: count, Element: args[2]}, nil
}

func genLSet(args []string) (*Command, *CommandError) {
	if len(args) != 3 {
		return nil, errArity("lset")
	}
	idx, perr := strconv.Atoi(args[1])
	if perr != nil {
		return nil, errNotInteger()
	}
	return &Command{Kind: LSet, Name: "lset", Key: args[0], Index: idx, Element: args[2]}, nil
}

func genSubscribe(args []string) (*Command, *CommandError) {
	if len(args) == 0 {
		return nil, errArity("subscribe")
	}
	return &Command{Kind: Subscribe, Name: "subscribe", Channels: append([]string(nil), args...)}, nil
}

func genUnsubscribe(args []string) (*Command, *CommandError) {
	return &Command{Kind: Unsubscribe, Name: "unsubscribe", Channels: append([]string(nil), args...)}, nil
}

func genPublish(args []string) (*Command, *CommandError) {
	if len(args) != 2 {
		return nil, errArity("publish")
	}
	return &Command{Kind: Publish, Name: "publish", Channel: args[0], Message: args[1]}, nil
}

func genPubSub(args []string) (*Command, *CommandError) {
	if len(args) == 0 {
		return nil, errArity("pubsub")
	}
	return &Command{Kind: PubSub, Name: "pubsub", PubSubArgs: append([]string(nil), args...)}, nil
}
