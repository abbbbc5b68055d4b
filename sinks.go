package domsnap

import (
	"context"
	"io"
	"log/slog"

	"github.com/hazyhaar/domsnap/dom"
	"github.com/hazyhaar/domsnap/internal/sink"
)

// Sink is the output interface for captured snapshots.
type Sink = sink.Sink

// NewStdoutSink creates a stdout JSON-lines sink.
func NewStdoutSink(w io.Writer) Sink {
	return sink.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, logger *slog.Logger) Sink {
	return sink.NewWebhook(url, sink.WithWebhookLogger(logger))
}

// SnapshotFunc is called for each captured snapshot.
type SnapshotFunc = sink.SnapshotFunc

// NewCallbackSink creates an in-process callback sink for embedding the
// engine in a larger agent binary.
func NewCallbackSink(onSnapshot func(ctx context.Context, snap *dom.Snapshot) error) Sink {
	return sink.NewCallback(onSnapshot)
}

// BuildSinks constructs sinks from configuration entries. Unknown types
// are skipped with a warning.
func BuildSinks(cfgs []SinkConfig, logger *slog.Logger) []Sink {
	if logger == nil {
		logger = slog.Default()
	}
	var sinks []Sink
	for _, c := range cfgs {
		switch c.Type {
		case "stdout":
			sinks = append(sinks, NewStdoutSink(nil))
		case "webhook":
			sinks = append(sinks, NewWebhookSink(c.URL, logger))
		default:
			logger.Warn("domsnap: unknown sink type", "type", c.Type)
		}
	}
	return sinks
}
