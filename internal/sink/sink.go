// Package sink defines output backends for captured snapshots.
package sink

import (
	"context"

	"github.com/hazyhaar/domsnap/dom"
)

// Sink delivers snapshots to a backend (stdout, webhook, in-process
// callback).
type Sink interface {
	Send(ctx context.Context, snap *dom.Snapshot) error
	Close() error
}
