package sweep

import (
	"context"
	"fmt"

	"github.com/joshsymonds/inboxsweep/internal/gmail"
)

// Dispatcher applies the configured label removals to matched messages,
// one modify request per message. Re-applying to a message that was already
// archived or read is a no-op on the server, so nothing is checked first.
type Dispatcher struct {
	Client gmail.Client
	Ops    gmail.ModifyOps
	DryRun bool
}

// NewDispatcher builds a dispatcher for cfg's mutation set.
func NewDispatcher(client gmail.Client, cfg Config) *Dispatcher {
	return &Dispatcher{Client: client, Ops: cfg.Mutation(), DryRun: cfg.DryRun}
}

// Apply mutates a single message.
func (d *Dispatcher) Apply(ctx context.Context, id gmail.MessageID) error {
	if d.DryRun || d.Ops.Empty() {
		return nil
	}
	if err := d.Client.Modify(ctx, id, d.Ops); err != nil {
		return fmt.Errorf("modify message %s: %w", id, err)
	}
	return nil
}
