package natsbus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lomet/soloist/natsbus"
	soloisttest "github.com/Lomet/soloist/testing"
	"github.com/Lomet/soloist/types"
)

func TestPublishSubscribe(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)

	bus, err := natsbus.New(nc, "orders")
	require.NoError(t, err)

	received := make(chan types.Message, 1)
	unsub, err := bus.Subscribe(func(msg types.Message) {
		received <- msg
	})
	require.NoError(t, err)
	t.Cleanup(unsub)

	sent := types.Message{
		Kind:    types.KindLeadershipChanged,
		OwnerID: "owner-1",
		SentAt:  time.Now().UnixMilli(),
	}
	require.NoError(t, bus.Publish(t.Context(), sent))

	select {
	case got := <-received:
		require.Equal(t, sent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestNamespaceIsolation(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)

	orders, err := natsbus.New(nc, "orders")
	require.NoError(t, err)
	billing, err := natsbus.New(nc, "billing")
	require.NoError(t, err)

	var mu sync.Mutex
	var leaked []types.Message
	unsub, err := billing.Subscribe(func(msg types.Message) {
		mu.Lock()
		leaked = append(leaked, msg)
		mu.Unlock()
	})
	require.NoError(t, err)
	t.Cleanup(unsub)

	require.NoError(t, orders.Publish(t.Context(), types.Message{
		Kind:    types.KindClosing,
		OwnerID: "owner-1",
	}))

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, leaked, "messages must not cross namespaces")
}

func TestUndecodablePayloadDropped(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)

	bus, err := natsbus.New(nc, "orders")
	require.NoError(t, err)

	received := make(chan types.Message, 1)
	unsub, err := bus.Subscribe(func(msg types.Message) {
		received <- msg
	})
	require.NoError(t, err)
	t.Cleanup(unsub)

	// Raw garbage on the same subject.
	require.NoError(t, nc.Publish("soloist.lease.orders", []byte("not json")))

	select {
	case <-received:
		t.Fatal("garbage payload must be dropped")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)

	bus, err := natsbus.New(nc, "orders")
	require.NoError(t, err)

	received := make(chan types.Message, 4)
	unsub, err := bus.Subscribe(func(msg types.Message) {
		received <- msg
	})
	require.NoError(t, err)

	unsub()

	require.NoError(t, bus.Publish(t.Context(), types.Message{
		Kind:    types.KindLeadershipChanged,
		OwnerID: "owner-1",
	}))

	select {
	case <-received:
		t.Fatal("no delivery after unsubscribe")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestNewRequiresConnection(t *testing.T) {
	_, err := natsbus.New(nil, "orders")
	require.Error(t, err)

	_, nc := soloisttest.StartEmbeddedNATS(t)
	nc.Close()

	_, err = natsbus.New(nc, "orders")
	require.Error(t, err, "closed connection fails feature detection")
}
