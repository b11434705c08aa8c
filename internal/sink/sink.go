// Package sink provides EventSink implementations for broadcasting
// engine events to downstream consumers. Sinks are fire-and-forget:
// publish failures are logged, never propagated back to the engine.
package sink

import (
	"github.com/rs/zerolog"

	"nyx/internal/engine"
)

// Fanout publishes every event to each wrapped sink in order.
type Fanout []engine.EventSink

func (f Fanout) Publish(event engine.Event) {
	for _, s := range f {
		s.Publish(event)
	}
}

// Log writes events through a zerolog logger, mainly for local runs
// and debugging.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Publish(event engine.Event) {
	payload, err := engine.MarshalEvent(event)
	if err != nil {
		l.log.Error().Err(err).Str("kind", event.Kind()).Msg("unable to encode event")
		return
	}
	l.log.Info().RawJSON("event", payload).Msg("book event")
}
