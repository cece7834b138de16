package natskv_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lomet/soloist/natskv"
	soloisttest "github.com/Lomet/soloist/testing"
	"github.com/Lomet/soloist/types"
)

const testNamespace = "orders"

func TestStoreRoundTrip(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-roundtrip")
	store := natskv.New(kv)
	ctx := t.Context()

	rec := types.LeaseRecord{OwnerID: "owner-1", AcquiredAt: time.Now().UnixMilli()}
	require.NoError(t, store.Set(ctx, testNamespace, rec))

	got, err := store.Get(ctx, testNamespace)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, rec.OwnerID, got.OwnerID)
	require.Equal(t, rec.AcquiredAt, got.AcquiredAt)
}

func TestStoreGetAbsent(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-absent")
	store := natskv.New(kv)

	got, err := store.Get(t.Context(), testNamespace)
	require.NoError(t, err)
	require.Nil(t, got, "absent key reads as no record, not an error")
}

func TestStoreGetMalformed(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-malformed")
	store := natskv.New(kv)
	ctx := t.Context()

	// Content written outside the protocol, e.g. a partial write.
	_, err := kv.Put(ctx, testNamespace, []byte("{truncated"))
	require.NoError(t, err)

	got, err := store.Get(ctx, testNamespace)
	require.NoError(t, err)
	require.Nil(t, got, "unparsable content reads as no record")
}

func TestStoreDelete(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-delete")
	store := natskv.New(kv)
	ctx := t.Context()

	require.NoError(t, store.Set(ctx, testNamespace, types.LeaseRecord{
		OwnerID:    "owner-1",
		AcquiredAt: time.Now().UnixMilli(),
	}))
	require.NoError(t, store.Delete(ctx, testNamespace))

	got, err := store.Get(ctx, testNamespace)
	require.NoError(t, err)
	require.Nil(t, got)

	// Deleting an absent record is not an error.
	require.NoError(t, store.Delete(ctx, testNamespace))
}

func TestStoreOverwriteIsUnconditional(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-overwrite")
	ctx := t.Context()

	// Two participants, two store instances over the same bucket.
	s1 := natskv.New(kv)
	s2 := natskv.New(kv)

	require.NoError(t, s1.Set(ctx, testNamespace, types.LeaseRecord{
		OwnerID: "owner-1", AcquiredAt: 1000,
	}))
	require.NoError(t, s2.Set(ctx, testNamespace, types.LeaseRecord{
		OwnerID: "owner-2", AcquiredAt: 2000,
	}))

	// Last writer wins, no revision check rejects the second write.
	got, err := s1.Get(ctx, testNamespace)
	require.NoError(t, err)
	require.Equal(t, "owner-2", got.OwnerID)
}

func TestWatchDeliversForeignWrites(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-watch")
	ctx := t.Context()

	mine := natskv.New(kv)
	other := natskv.New(kv)

	sub, err := mine.Watch(ctx, testNamespace)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Stop() })

	require.NoError(t, other.Set(ctx, testNamespace, types.LeaseRecord{
		OwnerID:    "owner-2",
		AcquiredAt: time.Now().UnixMilli(),
	}))

	select {
	case _, ok := <-sub.Changes():
		require.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change event for a foreign write")
	}
}

func TestWatchSuppressesOwnWrites(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-watch-self")
	ctx := t.Context()

	mine := natskv.New(kv)

	sub, err := mine.Watch(ctx, testNamespace)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Stop() })

	require.NoError(t, mine.Set(ctx, testNamespace, types.LeaseRecord{
		OwnerID:    "owner-1",
		AcquiredAt: time.Now().UnixMilli(),
	}))

	select {
	case <-sub.Changes():
		t.Fatal("own write must not produce a change event")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchChannelClosesOnStop(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	kv := soloisttest.CreateJetStreamKV(t, nc, "lease-watch-stop")

	store := natskv.New(kv)
	sub, err := store.Watch(t.Context(), testNamespace)
	require.NoError(t, err)

	require.NoError(t, sub.Stop())

	select {
	case _, ok := <-sub.Changes():
		require.False(t, ok, "channel should be closed after Stop")
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after Stop")
	}
}

func TestNewFromConn(t *testing.T) {
	_, nc := soloisttest.StartEmbeddedNATS(t)
	ctx := t.Context()

	store, err := natskv.NewFromConn(ctx, nc, natskv.Config{Bucket: "lease-conn"})
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, testNamespace, types.LeaseRecord{
		OwnerID:    "owner-1",
		AcquiredAt: time.Now().UnixMilli(),
	}))

	// Creating over an existing bucket succeeds.
	again, err := natskv.NewFromConn(ctx, nc, natskv.Config{Bucket: "lease-conn"})
	require.NoError(t, err)

	got, err := again.Get(ctx, testNamespace)
	require.NoError(t, err)
	require.Equal(t, "owner-1", got.OwnerID)
}

func TestNewFromConnNilConnection(t *testing.T) {
	_, err := natskv.NewFromConn(t.Context(), nil, natskv.Config{})
	require.Error(t, err)
}
