// Package executor implements the command executor (spec.md C5): applying
// a validated redisproto.Command to a store.Keyspace and pubsub.Registry,
// producing the reply frame(s) the session must write back.
package executor

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resp/kvserver/internal/pubsub"
	"github.com/go-resp/kvserver/internal/redisproto"
	"github.com/go-resp/kvserver/internal/resp"
	"github.com/go-resp/kvserver/internal/store"
)

// Session is the slice of per-connection state the executor needs for
// pub/sub commands. The session package owns the rest (framing, mode).
type Session struct {
	ID         uint64
	Mailbox    pubsub.Mailbox
	ConfigFile string
}

// Server bundles the shared collaborators every connection executes
// against: the keyspace, the pub/sub registry, and the bookkeeping INFO
// reports on (spec.md §6's interface to the HTTP front-end reuses this
// same entrypoint via internal/httpface).
type Server struct {
	Keyspace  *store.Keyspace
	PubSub    *pubsub.Registry
	StartedAt time.Time
	Port      int

	clientCount func() int // injected by internal/server; nil-safe
}

// New returns a Server wired to a fresh keyspace and pub/sub registry.
func New(port int) *Server {
	return &Server{
		Keyspace:  store.New(),
		PubSub:    pubsub.NewRegistry(),
		StartedAt: time.Now(),
		Port:      port,
	}
}

// SetClientCounter lets the acceptor report live connection counts through
// INFO without the executor depending on the server package (which in turn
// depends on the executor), avoiding an import cycle.
func (s *Server) SetClientCounter(fn func() int) { s.clientCount = fn }

// Execute applies cmd and returns the reply frame(s) to write back, in
// order. Every command produces exactly one frame except SUBSCRIBE and
// UNSUBSCRIBE. UNSUBSCRIBE returns one confirmation per channel; SUBSCRIBE
// returns no frames, because the registry posts its per-channel
// confirmations straight into sess.Mailbox (see execSubscribe).
func (s *Server) Execute(cmd *redisproto.Command, sess *Session) []resp.Frame {
	switch cmd.Kind {
	case redisproto.Ping:
		return one(execPing(cmd))
	case redisproto.DBSize:
		return one(resp.Int(int64(s.Keyspace.Len())))
	case redisproto.Type:
		return one(resp.SimpleStr(s.Keyspace.Type(cmd.Key)))
	case redisproto.Info:
		return one(s.execInfo(cmd))

	case redisproto.Get:
		return one(elemToBulk(s.Keyspace.Get(cmd.Key)))
	case redisproto.Set:
		s.Keyspace.Set(cmd.Key, store.StringElem(cmd.Value))
		return one(resp.SimpleStr("OK"))
	case redisproto.GetSet:
		return one(s.execGetSet(cmd))
	case redisproto.GetDel:
		return one(elemToBulk(s.Keyspace.GetDel(cmd.Key)))
	case redisproto.Append:
		return one(s.execAppend(cmd))
	case redisproto.IncrBy:
		return one(s.execIncrDecr(cmd, cmd.Amount))
	case redisproto.DecrBy:
		return one(s.execIncrDecr(cmd, -cmd.Amount))
	case redisproto.MGet:
		return one(s.execMGet(cmd))
	case redisproto.MSet:
		s.execMSet(cmd)
		return one(resp.SimpleStr("OK"))

	case redisproto.Del:
		return one(resp.Int(int64(s.execDel(cmd))))
	case redisproto.Exists:
		return one(resp.Int(int64(s.execExists(cmd))))
	case redisproto.Copy:
		return one(boolToInt(s.Keyspace.Copy(cmd.Key, cmd.Key2)))
	case redisproto.Rename:
		return one(s.execRename(cmd))
	case redisproto.Touch:
		return one(resp.Int(int64(s.execExists(cmd))))
	case redisproto.Expire:
		return one(boolToInt(s.Keyspace.SetTTL(cmd.Key, time.Duration(cmd.TTLSeconds)*time.Second)))
	case redisproto.ExpireAt:
		return one(boolToInt(s.Keyspace.SetTTLAt(cmd.Key, time.Unix(cmd.TTLUnixSeconds, 0))))
	case redisproto.Persist:
		return one(boolToInt(s.Keyspace.Persist(cmd.Key)))
	case redisproto.TTL:
		return one(resp.Int(s.Keyspace.TTL(cmd.Key)))

	case redisproto.LPush:
		return one(s.execErrInt(s.Keyspace.LPush(cmd.Key, cmd.Values)))
	case redisproto.RPush:
		return one(s.execErrInt(s.Keyspace.RPush(cmd.Key, cmd.Values)))
	case redisproto.LPushX:
		return one(s.execErrInt(s.Keyspace.LPushX(cmd.Key, cmd.Values)))
	case redisproto.RPushX:
		return one(s.execErrInt(s.Keyspace.RPushX(cmd.Key, cmd.Values)))
	case redisproto.LPop:
		return one(s.execPop(cmd, s.Keyspace.LPop))
	case redisproto.RPop:
		return one(s.execPop(cmd, s.Keyspace.RPop))
	case redisproto.LIndex:
		return one(s.execLIndex(cmd))
	case redisproto.LLen:
		return one(s.execErrInt(s.Keyspace.LLen(cmd.Key)))
	case redisproto.LRange:
		return one(s.execLRange(cmd))
	case redisproto.LRem:
		return one(s.execErrInt(s.Keyspace.LRem(cmd.Key, cmd.Count, cmd.Element)))
	case redisproto.LSet:
		return one(s.execLSet(cmd))

	case redisproto.SAdd:
		return one(s.execErrInt(s.Keyspace.SAdd(cmd.Key, cmd.Values)))
	case redisproto.SCard:
		return one(s.execErrInt(s.Keyspace.SCard(cmd.Key)))
	case redisproto.SIsMember:
		return one(s.execSIsMember(cmd))
	case redisproto.SMembers:
		return one(s.execSMembers(cmd))
	case redisproto.SRem:
		return one(s.execErrInt(s.Keyspace.SRem(cmd.Key, cmd.Values)))

	case redisproto.Subscribe:
		return s.execSubscribe(cmd, sess)
	case redisproto.Unsubscribe:
		return s.execUnsubscribe(cmd, sess)
	case redisproto.Publish:
		return one(resp.Int(int64(s.PubSub.Publish(cmd.Channel, cmd.Message))))
	case redisproto.PubSub:
		return one(s.execPubSub(cmd))

	case redisproto.Quit:
		return one(resp.SimpleStr("OK"))

	default:
		return one(errFrame(redisproto.NewWrongType()))
	}
}

// ExecuteTokens is the entrypoint spec.md §6 grants to peripheral
// collaborators such as the HTTP front-end: given already-split command
// tokens (as if decoded from a RESP array of bulk strings), it generates
// and executes the command and returns the single reply frame a
// request/response caller needs. Pub/Sub commands still run (SUBSCRIBE's
// mailbox is simply discarded after the call returns, since an HTTP
// request has no persistent connection to stream deliveries over).
func (s *Server) ExecuteTokens(tokens []string) (resp.Frame, error) {
	elems := make([]resp.Frame, len(tokens))
	for i, t := range tokens {
		elems[i] = resp.BulkStr(t)
	}
	cmd, cerr := redisproto.Generate(resp.Arr(elems...))
	if cerr != nil {
		return resp.Frame{}, cerr
	}

	// One slot per SUBSCRIBE confirmation, so Registry.Subscribe never
	// blocks on this mailbox.
	mb := make(chan resp.Frame, len(cmd.Channels)+1)
	sess := &Session{Mailbox: mb}
	frames := s.Execute(cmd, sess)
	if len(frames) == 0 {
		// SUBSCRIBE posts its confirmation straight into the mailbox rather
		// than returning it (see execSubscribe); recover it here so a
		// one-shot HTTP caller still sees a reply instead of a bare nil.
		select {
		case f := <-mb:
			return f, nil
		default:
			return resp.NilBulk(), nil
		}
	}
	return frames[0], nil
}

func one(f resp.Frame) []resp.Frame { return []resp.Frame{f} }

func errFrame(e *redisproto.CommandError) resp.Frame { return resp.Err(e.Error()) }

func elemToBulk(e store.Element) resp.Frame {
	if e.IsNil() {
		return resp.NilBulk()
	}
	return resp.BulkStr(e.Str)
}

func boolToInt(ok bool) resp.Frame {
	if ok {
		return resp.Int(1)
	}
	return resp.Int(0)
}

func execPing(cmd *redisproto.Command) resp.Frame {
	if cmd.Message == "" {
		return resp.SimpleStr("PONG")
	}
	return resp.BulkStr(cmd.Message)
}

func (s *Server) execGetSet(cmd *redisproto.Command) resp.Frame {
	prev, err := s.Keyspace.GetSet(cmd.Key, cmd.Value)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	return elemToBulk(prev)
}

func (s *Server) execAppend(cmd *redisproto.Command) resp.Frame {
	n, err := s.Keyspace.Append(cmd.Key, cmd.Value)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	return resp.Int(int64(n))
}

func (s *Server) execIncrDecr(cmd *redisproto.Command, delta int64) resp.Frame {
	var v int64
	var err error
	if delta >= 0 {
		v, err = s.Keyspace.IncrBy(cmd.Key, delta)
	} else {
		v, err = s.Keyspace.DecrBy(cmd.Key, -delta)
	}
	if err == store.ErrNotInteger {
		return resp.Err("ERR value is not an integer or out of range")
	}
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	return resp.Int(v)
}

func (s *Server) execMGet(cmd *redisproto.Command) resp.Frame {
	elems := s.Keyspace.MGet(cmd.Keys)
	out := make([]resp.Frame, len(elems))
	for i, e := range elems {
		out[i] = elemToBulk(e)
	}
	return resp.Arr(out...)
}

func (s *Server) execMSet(cmd *redisproto.Command) {
	s.Keyspace.MSet(cmd.KVPairs)
}

func (s *Server) execDel(cmd *redisproto.Command) int {
	n := 0
	for _, k := range cmd.Keys {
		if _, ok := s.Keyspace.Remove(k); ok {
			n++
		}
	}
	return n
}

func (s *Server) execExists(cmd *redisproto.Command) int {
	n := 0
	for _, k := range cmd.Keys {
		if s.Keyspace.Contains(k) {
			n++
		}
	}
	return n
}

func (s *Server) execRename(cmd *redisproto.Command) resp.Frame {
	if !s.Keyspace.Rename(cmd.Key, cmd.Key2) {
		return errFrame(redisproto.NewNoSuchKey())
	}
	return resp.SimpleStr("OK")
}

// execErrInt adapts a store (int, error) pair into a reply frame, turning
// store.ErrWrongType into the WRONGTYPE wire error.
func (s *Server) execErrInt(n int, err error) resp.Frame {
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	return resp.Int(int64(n))
}

func (s *Server) execPop(cmd *redisproto.Command, pop func(string, int) ([]string, bool, error)) resp.Frame {
	count := cmd.Count
	wantsArray := count >= 0
	if count < 0 {
		count = 1
	}
	vals, ok, err := pop(cmd.Key, count)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	if !ok {
		if wantsArray {
			return resp.Arr()
		}
		return resp.NilBulk()
	}
	if !wantsArray {
		if len(vals) == 0 {
			return resp.NilBulk()
		}
		return resp.BulkStr(vals[0])
	}
	out := make([]resp.Frame, len(vals))
	for i, v := range vals {
		out[i] = resp.BulkStr(v)
	}
	return resp.Arr(out...)
}

func (s *Server) execLIndex(cmd *redisproto.Command) resp.Frame {
	v, ok, err := s.Keyspace.LIndex(cmd.Key, cmd.Index)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	if !ok {
		return resp.NilBulk()
	}
	return resp.BulkStr(v)
}

func (s *Server) execLRange(cmd *redisproto.Command) resp.Frame {
	vals, err := s.Keyspace.LRange(cmd.Key, cmd.Begin, cmd.End)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	out := make([]resp.Frame, len(vals))
	for i, v := range vals {
		out[i] = resp.BulkStr(v)
	}
	return resp.Arr(out...)
}

func (s *Server) execLSet(cmd *redisproto.Command) resp.Frame {
	ok, err := s.Keyspace.LSet(cmd.Key, cmd.Index, cmd.Element)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	if !ok {
		return resp.Err("ERR no such key")
	}
	return resp.SimpleStr("OK")
}

func (s *Server) execSIsMember(cmd *redisproto.Command) resp.Frame {
	ok, err := s.Keyspace.SIsMember(cmd.Key, cmd.Value)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	return boolToInt(ok)
}

func (s *Server) execSMembers(cmd *redisproto.Command) resp.Frame {
	members, err := s.Keyspace.SMembers(cmd.Key)
	if err != nil {
		return errFrame(redisproto.NewWrongType())
	}
	out := make([]resp.Frame, len(members))
	for i, m := range members {
		out[i] = resp.BulkStr(m)
	}
	return resp.Arr(out...)
}

// execSubscribe registers sess with the registry. Registry.Subscribe
// enqueues each channel's confirmation frame into sess.Mailbox itself,
// atomically with registration, so a concurrent PUBLISH can never slip a
// message frame in ahead of the subscribe confirmation; this returns no
// frames of its own, since the confirmations are already queued.
func (s *Server) execSubscribe(cmd *redisproto.Command, sess *Session) []resp.Frame {
	s.PubSub.Subscribe(sess.ID, sess.Mailbox, cmd.Channels)
	return nil
}

func (s *Server) execUnsubscribe(cmd *redisproto.Command, sess *Session) []resp.Frame {
	results := s.PubSub.Unsubscribe(sess.ID, cmd.Channels)
	if len(results) == 0 {
		return []resp.Frame{resp.Arr(resp.BulkStr("unsubscribe"), resp.NilBulk(), resp.Int(0))}
	}
	frames := make([]resp.Frame, len(results))
	for i, r := range results {
		frames[i] = resp.Arr(resp.BulkStr("unsubscribe"), resp.BulkStr(r.Channel), resp.Int(int64(r.Remaining)))
	}
	return frames
}

// execPubSub implements the CHANNELS and NUMSUB subcommands supplemented in
// SPEC_FULL.md §11.
func (s *Server) execPubSub(cmd *redisproto.Command) resp.Frame {
	sub := strings.ToLower(cmd.PubSubArgs[0])
	rest := cmd.PubSubArgs[1:]
	switch sub {
	case "channels":
		pattern := ""
		if len(rest) > 0 {
			pattern = rest[0]
		}
		chans := s.PubSub.Channels(pattern)
		out := make([]resp.Frame, len(chans))
		for i, c := range chans {
			out[i] = resp.BulkStr(c)
		}
		return resp.Arr(out...)
	case "numsub":
		counts := s.PubSub.NumSub(rest)
		out := make([]resp.Frame, 0, len(rest)*2)
		for i, ch := range rest {
			out = append(out, resp.BulkStr(ch), resp.Int(int64(counts[i])))
		}
		return resp.Arr(out...)
	default:
		return resp.Err("ERR Unknown PUBSUB subcommand '" + sub + "'")
	}
}

// execInfo implements the INFO command supplemented in SPEC_FULL.md §11.
func (s *Server) execInfo(cmd *redisproto.Command) resp.Frame {
	clients := 0
	if s.clientCount != nil {
		clients = s.clientCount()
	}
	lines := []string{
		fmt.Sprintf("process_id:%d", os.Getpid()),
		fmt.Sprintf("tcp_port:%d", s.Port),
		fmt.Sprintf("uptime_in_seconds:%d", int64(time.Since(s.StartedAt).Seconds())),
		fmt.Sprintf("server_time:%d", time.Now().Unix()),
		fmt.Sprintf("connected_clients:%d", clients),
	}
	body := ""
	for _, l := range lines {
		body += l + "\r\n"
	}
	return resp.BulkStr(body)
}
