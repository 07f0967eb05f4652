// Package redisproto models the closed set of server commands (spec.md
// C2) and the generator that turns a decoded RESP array into a validated
// Command (spec.md C3).
package redisproto

// Kind is the closed tag identifying which command variant a Command
// holds. Construction only ever happens through Generate.
type Kind int

const (
	Ping Kind = iota
	DBSize
	Type
	Info

	Get
	Set
	GetSet
	GetDel
	Append
	IncrBy
	DecrBy
	MGet
	MSet

	Del
	Exists
	Copy
	Rename
	Touch
	Expire
	ExpireAt
	Persist
	TTL

	LPush
	RPush
	LPushX
	RPushX
	LPop
	RPop
	LIndex
	LLen
	LRange
	LRem
	LSet

	SAdd
	SCard
	SIsMember
	SMembers
	SRem

	Subscribe
	Unsubscribe
	Publish
	PubSub

	Quit
)

// pubSubOnly is the subset of commands a Subscribed-mode connection may
// still issue (spec.md §3's invariant); Quit and Ping are always allowed
// too.
var pubSubOnly = map[Kind]bool{
	Subscribe:   true,
	Unsubscribe: true,
	Ping:        true,
	Quit:        true,
}

// AllowedWhileSubscribed reports whether k may run on a connection in
// Subscribed mode.
func AllowedWhileSubscribed(k Kind) bool { return pubSubOnly[k] }

// Command is the validated, closed tagged union described in spec.md §4.2.
// Only the fields relevant to Kind are populated; Generate is the sole
// constructor.
type Command struct {
	Kind Kind
	Name string // lower-cased command name, for error messages

	Key  string
	Key2 string // destination key for COPY/RENAME
	Keys []string

	Value  string
	Values []string

	KVPairs [][2]string

	Amount int64 // INCRBY/DECRBY operand

	TTLSeconds     int64
	TTLUnixSeconds int64

	Index int
	Begin int
	End   int
	Count int

	Element string

	Channels []string
	Channel  string
	Message  string

	PubSubArgs []string
	InfoParams []string
}
