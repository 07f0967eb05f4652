// Package pubsub implements the channel subscription fabric (spec.md C6):
// subscriber bookkeeping per channel and delivery into bounded per-connection
// mailboxes. The chanSet adjacency shape is adapted from the teacher's
// client-side PubSubConn (see DESIGN.md) but here it indexes server-side
// subscriber-ids instead of in-process channels tied to one upstream
// connection.
package pubsub

import (
	"path"
	"sync"

	"github.com/go-resp/kvserver/internal/resp"
)

// OutboundMailboxCapacity bounds every subscriber's delivery queue (spec.md
// §4.5); SPEC_FULL.md §11 fixes the default publish-backpressure policy as
// drop-and-don't-count once a mailbox is at this capacity.
const OutboundMailboxCapacity = 128

// Mailbox is the push side of a subscriber's bounded delivery queue.
type Mailbox chan<- resp.Frame

type chanSet map[string]map[uint64]Mailbox

func (cs chanSet) add(channel string, id uint64, mb Mailbox) {
	m, ok := cs[channel]
	if !ok {
		m = map[uint64]Mailbox{}
		cs[channel] = m
	}
	m[id] = mb
}

// del removes id from channel's subscriber set, reporting whether the
// channel now has no subscribers left.
func (cs chanSet) del(channel string, id uint64) bool {
	m, ok := cs[channel]
	if !ok {
		return true
	}
	delete(m, id)
	if len(m) == 0 {
		delete(cs, channel)
		return true
	}
	return false
}

// Registry is the thread-safe pub/sub fabric described in spec.md §4.5.
type Registry struct {
	mu          sync.RWMutex
	channels    chanSet            // channel -> subscriber-id -> mailbox
	subscribers map[uint64]map[string]bool // subscriber-id -> subscribed channels
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		channels:    chanSet{},
		subscribers: map[uint64]map[string]bool{},
	}
}

// ChannelCount reports a subscriber's (id) current subscription count.
func (r *Registry) ChannelCount(id uint64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers[id])
}

// Subscribe adds id's mailbox to each channel, enqueuing that channel's
// `[subscribe, ch, cumulative_count]` confirmation frame into mb before
// moving on to the next channel, all under the same write lock that guards
// Publish's subscriber lookup. That ordering is load-bearing: if
// registration and confirmation were split across two locked sections (or
// the confirmation were built by the caller after Subscribe returned), a
// PUBLISH on another connection could acquire the lock in between,
// observe the newly-registered mailbox, and post a message frame ahead of
// the subscribe confirmation — contradicting the subscribe-before-message
// ordering spec.md's scenario S4 requires. It still returns the
// cumulative counts for callers (and tests) that want them without
// inspecting the mailbox.
func (r *Registry) Subscribe(id uint64, mb Mailbox, channels []string) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs, ok := r.subscribers[id]
	if !ok {
		subs = map[string]bool{}
		r.subscribers[id] = subs
	}

	counts := make([]int, len(channels))
	for i, ch := range channels {
		r.channels.add(ch, id, mb)
		subs[ch] = true
		count := len(subs)
		counts[i] = count
		mb <- resp.Arr(resp.BulkStr("subscribe"), resp.BulkStr(ch), resp.Int(int64(count)))
	}
	return counts
}

// Unsubscribe removes id from channels (or, if channels is empty, from
// every channel id currently holds) and returns the (channel, remaining
// count) pairs in the order UNSUBSCRIBE must reply with. An id with zero
// subscriptions after this call has fully left Subscribed mode.
func (r *Registry) Unsubscribe(id uint64, channels []string) []UnsubResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subscribers[id]
	if len(channels) == 0 {
		channels = make([]string, 0, len(subs))
		for ch := range subs {
			channels = append(channels, ch)
		}
	}

	results := make([]UnsubResult, len(channels))
	for i, ch := range channels {
		r.channels.del(ch, id)
		if subs != nil {
			delete(subs, ch)
		}
		results[i] = UnsubResult{Channel: ch, Remaining: len(subs)}
	}
	if subs != nil && len(subs) == 0 {
		delete(r.subscribers, id)
	}
	return results
}

// UnsubResult is one (channel, remaining-subscription-count) pair produced
// by Unsubscribe.
type UnsubResult struct {
	Channel   string
	Remaining int
}

// Publish posts msg to every subscriber of channel, skipping (and not
// counting) any whose mailbox is currently full. It returns the number of
// subscribers the message was actually delivered to.
func (r *Registry) Publish(channel, msg string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	frame := resp.Arr(resp.BulkStr("message"), resp.BulkStr(channel), resp.BulkStr(msg))
	for _, mb := range r.channels[channel] {
		select {
		case mb <- frame:
			delivered++
		default:
			// mailbox full: dropped, per SPEC_FULL.md §11's default policy.
		}
	}
	return delivered
}

// Disconnect removes id from every channel it was subscribed to, per
// spec.md §3's lifecycle rule for connection close.
func (r *Registry) Disconnect(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for ch := range r.subscribers[id] {
		r.channels.del(ch, id)
	}
	delete(r.subscribers, id)
}

// Channels lists every channel with at least one subscriber, optionally
// filtered by a glob pattern — PUBSUB CHANNELS [pattern] (SPEC_FULL.md
// §11).
func (r *Registry) Channels(pattern string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.channels))
	for ch := range r.channels {
		if pattern == "" {
			out = append(out, ch)
			continue
		}
		if ok, _ := path.Match(pattern, ch); ok {
			out = append(out, ch)
		}
	}
	return out
}

// NumSub reports the subscriber count for each of channels, in order —
// PUBSUB NUMSUB ch... (SPEC_FULL.md §11).
func (r *Registry) NumSub(channels []string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, len(channels))
	for i, ch := range channels {
		out[i] = len(r.channels[ch])
	}
	return out
}
