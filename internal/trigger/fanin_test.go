package trigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, f *FanIn, window time.Duration) []Reason {
	t.Helper()

	var got []Reason

	deadline := time.After(window)
	for {
		select {
		case r := <-f.Requests():
			got = append(got, r)
		case <-deadline:
			return got
		}
	}
}

func TestFanIn_Lifecycle(t *testing.T) {
	f := New(time.Hour, time.Millisecond)

	require.ErrorIs(t, f.Stop(), ErrNotStarted)
	require.NoError(t, f.Start())
	require.ErrorIs(t, f.Start(), ErrAlreadyStarted)
	require.NoError(t, f.Stop())
	require.ErrorIs(t, f.Stop(), ErrNotStarted)
}

func TestFanIn_TicksPassThrough(t *testing.T) {
	f := New(20*time.Millisecond, time.Millisecond)
	require.NoError(t, f.Start())
	defer func() { _ = f.Stop() }()

	got := collect(t, f, 150*time.Millisecond)
	require.NotEmpty(t, got)
	for _, r := range got {
		require.Equal(t, ReasonTick, r)
	}
}

func TestFanIn_DebounceCoalescesBursts(t *testing.T) {
	f := New(time.Hour, 30*time.Millisecond)
	require.NoError(t, f.Start())
	defer func() { _ = f.Stop() }()

	// A burst of notifications within one debounce window must yield a
	// single request carrying the first reason.
	f.Notify(ReasonChange)
	f.Notify(ReasonBroadcast)
	f.Notify(ReasonChange)

	got := collect(t, f, 120*time.Millisecond)
	require.Len(t, got, 1)
	require.Equal(t, ReasonChange, got[0])
}

func TestFanIn_DebounceDelaysDelivery(t *testing.T) {
	f := New(time.Hour, 60*time.Millisecond)
	require.NoError(t, f.Start())
	defer func() { _ = f.Stop() }()

	f.Notify(ReasonBroadcast)

	// Nothing before the window elapses.
	select {
	case r := <-f.Requests():
		t.Fatalf("request %q delivered before debounce window elapsed", r)
	case <-time.After(20 * time.Millisecond):
	}

	select {
	case r := <-f.Requests():
		require.Equal(t, ReasonBroadcast, r)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("debounced request never delivered")
	}
}

func TestFanIn_StopCancelsPendingDebounce(t *testing.T) {
	f := New(time.Hour, 30*time.Millisecond)
	require.NoError(t, f.Start())

	f.Notify(ReasonChange)
	require.NoError(t, f.Stop())

	select {
	case r := <-f.Requests():
		t.Fatalf("request %q delivered after Stop", r)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFanIn_NotifyNeverBlocks(t *testing.T) {
	f := New(time.Hour, time.Hour)
	require.NoError(t, f.Start())
	defer func() { _ = f.Stop() }()

	done := make(chan struct{})
	go func() {
		for range 1000 {
			f.Notify(ReasonChange)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
}
