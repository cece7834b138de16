// Package hooks provides the default no-op hook implementations.
package hooks

import (
	"context"

	"github.com/Lomet/soloist/types"
)

// NopHooks implements all leadership callbacks as no-ops.
//
// Used as the default when no custom hooks are provided, eliminating nil
// checks in the reconciliation path.
type NopHooks struct{}

// Compile-time assertions that NopHooks provides every hook callback.
var (
	_ func(context.Context) error         = (*NopHooks)(nil).OnBecomeLeader
	_ func(context.Context) error         = (*NopHooks)(nil).OnLoseLeadership
	_ func(context.Context, string) error = (*NopHooks)(nil).OnOtherDetected
)

// NewNop creates a fully populated no-op hooks set.
//
// Returns:
//   - types.Hooks: Hooks with no-op implementations for every callback
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnBecomeLeader:   h.OnBecomeLeader,
		OnLoseLeadership: h.OnLoseLeadership,
		OnOtherDetected:  h.OnOtherDetected,
	}
}

// OnBecomeLeader is a no-op implementation.
func (h *NopHooks) OnBecomeLeader(_ context.Context) error {
	return nil
}

// OnLoseLeadership is a no-op implementation.
func (h *NopHooks) OnLoseLeadership(_ context.Context) error {
	return nil
}

// OnOtherDetected is a no-op implementation.
func (h *NopHooks) OnOtherDetected(_ context.Context, _ string) error {
	return nil
}
