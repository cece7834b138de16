package soloist_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lomet/soloist"
	"github.com/Lomet/soloist/natsbus"
	"github.com/Lomet/soloist/natskv"
	soloisttest "github.com/Lomet/soloist/testing"
)

// End-to-end election over a real NATS server: JetStream KV as the store,
// core NATS as the bus.
func TestElectionOverNATS(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	ctx := t.Context()

	cfg := soloist.TestConfig()
	cfg.Namespace = "integration"

	newParticipant := func() *soloist.Participant {
		// Each participant needs its own store instance for self-origin
		// tracking; they share the bucket.
		store, err := natskv.NewFromConn(ctx, nc, natskv.Config{Bucket: "election"})
		require.NoError(t, err)

		bus, err := natsbus.New(nc, cfg.Namespace)
		require.NoError(t, err)

		p, err := soloist.NewParticipant(&cfg, store,
			soloist.WithBus(bus),
			soloist.WithLogger(soloisttest.NewTestLogger(t)),
		)
		require.NoError(t, err)

		return p
	}

	p1 := newParticipant()
	p2 := newParticipant()

	require.NoError(t, p1.Start(ctx))
	require.True(t, p1.IsLeader())

	require.NoError(t, p2.Start(ctx))
	require.False(t, p2.IsLeader())

	// Ownership stays settled across several heartbeat intervals.
	time.Sleep(3 * cfg.Interval)
	require.True(t, p1.IsLeader())
	require.False(t, p2.IsLeader())

	// Graceful handover: the follower claims without waiting out the
	// staleness timeout.
	handoverStart := time.Now()
	require.NoError(t, p1.Close(ctx))

	require.Eventually(t, p2.IsLeader, 3*time.Second, 10*time.Millisecond)
	require.Less(t, time.Since(handoverStart), 3*cfg.Timeout)

	rec, err := p2.ReadCurrentRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, p2.ID(), rec.OwnerID)

	// Final shutdown leaves no record behind.
	require.NoError(t, p2.Close(ctx))

	store, err := natskv.NewFromConn(ctx, nc, natskv.Config{Bucket: "election"})
	require.NoError(t, err)
	rec, err = store.Get(ctx, cfg.Namespace)
	require.NoError(t, err)
	require.Nil(t, rec)
}

// A leader that stops heartbeating without cleanup is replaced after the
// staleness timeout.
func TestStaleTakeoverOverNATS(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	ctx := t.Context()

	cfg := soloist.TestConfig()
	cfg.Namespace = "stale-takeover"

	store, err := natskv.NewFromConn(ctx, nc, natskv.Config{Bucket: "stale-takeover"})
	require.NoError(t, err)

	// Simulate a crashed leader: a record that will never be renewed.
	require.NoError(t, store.Set(ctx, cfg.Namespace, soloist.LeaseRecord{
		OwnerID:    "crashed-owner",
		AcquiredAt: time.Now().UnixMilli(),
	}))

	follower, err := natskv.NewFromConn(ctx, nc, natskv.Config{Bucket: "stale-takeover"})
	require.NoError(t, err)

	p, err := soloist.NewParticipant(&cfg, follower,
		soloist.WithLogger(soloisttest.NewTestLogger(t)),
	)
	require.NoError(t, err)

	require.NoError(t, p.Start(ctx))
	require.False(t, p.IsLeader())

	require.Eventually(t, p.IsLeader, cfg.Timeout+5*cfg.Interval, 10*time.Millisecond)

	require.NoError(t, p.Close(ctx))
}
