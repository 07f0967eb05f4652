package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-resp/kvserver/internal/resp"
)

func TestSubscribeReturnsCumulativeCounts(t *testing.T) {
	r := NewRegistry()
	mb := make(chan resp.Frame, OutboundMailboxCapacity)
	counts := r.Subscribe(1, mb, []string{"a", "b"})
	assert.Equal(t, []int{1, 2}, counts)
	assert.Equal(t, 2, r.ChannelCount(1))
}

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	r := NewRegistry()
	mb1 := make(chan resp.Frame, OutboundMailboxCapacity)
	mb2 := make(chan resp.Frame, OutboundMailboxCapacity)
	r.Subscribe(1, mb1, []string{"ch"})
	r.Subscribe(2, mb2, []string{"ch"})
	<-mb1 // subscribe confirmations are queued ahead of any delivery
	<-mb2

	n := r.Publish("ch", "hi")
	assert.Equal(t, 2, n)

	got1 := <-mb1
	require.Equal(t, resp.Array, got1.Type)
	assert.Equal(t, "hi", string(got1.Elems[2].Bulk))
	got2 := <-mb2
	assert.Equal(t, "hi", string(got2.Elems[2].Bulk))
}

func TestPublishToNoSubscribersReturnsZero(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Publish("nobody-home", "msg"))
}

func TestPublishDropsOnFullMailboxAndDoesNotCountIt(t *testing.T) {
	r := NewRegistry()
	mb := make(chan resp.Frame, 2)
	r.Subscribe(1, mb, []string{"ch"}) // the confirmation takes the first slot
	mb <- resp.SimpleStr("filler")

	n := r.Publish("ch", "dropped")
	assert.Equal(t, 0, n, "mailbox was full so the delivery is dropped and not counted")
}

func TestUnsubscribeSpecificChannels(t *testing.T) {
	r := NewRegistry()
	mb := make(chan resp.Frame, OutboundMailboxCapacity)
	r.Subscribe(1, mb, []string{"a", "b"})

	results := r.Unsubscribe(1, []string{"a"})
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Channel)
	assert.Equal(t, 1, results[0].Remaining)
	assert.Equal(t, 1, r.ChannelCount(1))
}

func TestUnsubscribeAllWhenChannelsNil(t *testing.T) {
	r := NewRegistry()
	mb := make(chan resp.Frame, OutboundMailboxCapacity)
	r.Subscribe(1, mb, []string{"a", "b", "c"})

	results := r.Unsubscribe(1, nil)
	assert.Len(t, results, 3)
	assert.Equal(t, 0, r.ChannelCount(1))
}

func TestDisconnectRemovesFromEveryChannel(t *testing.T) {
	r := NewRegistry()
	mb := make(chan resp.Frame, OutboundMailboxCapacity)
	r.Subscribe(1, mb, []string{"a", "b"})
	r.Disconnect(1)

	assert.Equal(t, 0, r.ChannelCount(1))
	assert.Equal(t, 0, r.Publish("a", "x"))
	assert.Equal(t, 0, r.Publish("b", "x"))
}

func TestChannelsListsOnlyOccupiedChannels(t *testing.T) {
	r := NewRegistry()
	mb := make(chan resp.Frame, OutboundMailboxCapacity)
	r.Subscribe(1, mb, []string{"news.tech", "news.sport", "weather"})

	assert.ElementsMatch(t, []string{"news.tech", "news.sport", "weather"}, r.Channels(""))
	assert.ElementsMatch(t, []string{"news.tech", "news.sport"}, r.Channels("news.*"))
}

func TestNumSubReportsCountsInOrder(t *testing.T) {
	r := NewRegistry()
	mb1 := make(chan resp.Frame, OutboundMailboxCapacity)
	mb2 := make(chan resp.Frame, OutboundMailboxCapacity)
	r.Subscribe(1, mb1, []string{"a"})
	r.Subscribe(2, mb2, []string{"a"})

	assert.Equal(t, []int{2, 0}, r.NumSub([]string{"a", "b"}))
}
