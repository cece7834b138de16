package lease

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lomet/soloist/types"
)

func TestDecide(t *testing.T) {
	const timeout = 5 * time.Second

	base := time.UnixMilli(0)

	rec := func(owner string, acquiredAtMs int64) *types.LeaseRecord {
		return &types.LeaseRecord{OwnerID: owner, AcquiredAt: acquiredAtMs}
	}

	tests := []struct {
		name   string
		rec    *types.LeaseRecord
		caller string
		now    time.Time
		want   Action
	}{
		{
			name:   "absent record is claimed",
			rec:    nil,
			caller: "a",
			now:    base,
			want:   ActionClaim,
		},
		{
			name:   "live foreign record is observed",
			rec:    rec("a", 0),
			caller: "b",
			now:    base.Add(3 * time.Second),
			want:   ActionObserve,
		},
		{
			name:   "record at exactly timeout age is still live",
			rec:    rec("a", 0),
			caller: "b",
			now:    base.Add(5 * time.Second),
			want:   ActionObserve,
		},
		{
			name:   "expired foreign record is claimed",
			rec:    rec("a", 0),
			caller: "b",
			now:    base.Add(6 * time.Second),
			want:   ActionClaim,
		},
		{
			name:   "own live record is renewed",
			rec:    rec("a", 0),
			caller: "a",
			now:    base.Add(3 * time.Second),
			want:   ActionRenew,
		},
		{
			name:   "own expired record is re-claimed, not renewed",
			rec:    rec("a", 0),
			caller: "a",
			now:    base.Add(6 * time.Second),
			want:   ActionClaim,
		},
		{
			name:   "future-dated foreign record is observed",
			rec:    rec("a", base.Add(time.Minute).UnixMilli()),
			caller: "b",
			now:    base,
			want:   ActionObserve,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.rec, tt.caller, tt.now, timeout)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestActionString(t *testing.T) {
	require.Equal(t, "claim", ActionClaim.String())
	require.Equal(t, "renew", ActionRenew.String())
	require.Equal(t, "follower", ActionObserve.String())
	require.Equal(t, "unknown", Action(42).String())
}
