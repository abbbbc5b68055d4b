package sink

import (
	"context"

	"github.com/hazyhaar/domsnap/dom"
)

// SnapshotFunc is called for each captured snapshot.
type SnapshotFunc func(ctx context.Context, snap *dom.Snapshot) error

// Callback delivers snapshots via a Go function call, for embedding the
// engine in a larger agent binary with zero serialisation overhead.
type Callback struct {
	onSnapshot SnapshotFunc
}

// NewCallback creates a Callback sink. A nil handler is a no-op sink.
func NewCallback(onSnapshot SnapshotFunc) *Callback {
	return &Callback{onSnapshot: onSnapshot}
}

func (c *Callback) Send(ctx context.Context, snap *dom.Snapshot) error {
	if c.onSnapshot != nil {
		return c.onSnapshot(ctx, snap)
	}
	return nil
}

func (c *Callback) Close() error { return nil }
