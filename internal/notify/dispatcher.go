// Package notify decouples the scheduling core from email/WhatsApp delivery.
// Dispatch is fire-and-forget: delivery failure is logged and never
// propagated to the caller, and an already-committed write is never rolled
// back because a notification could not be sent.
package notify

import (
	"github.com/rs/zerolog"
)

type Event struct {
	Type    string
	Payload map[string]any
}

// Dispatcher accepts scheduling events for asynchronous delivery.
type Dispatcher interface {
	Notify(eventType string, payload map[string]any)
}

// Sink delivers a single event. Implementations wrap the actual email or
// messaging providers; the core only ships a logging sink.
type Sink interface {
	Deliver(ev Event) error
}

// LogSink writes events to the structured log. Stands in for the hosted
// email/WhatsApp providers in local and test environments.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Deliver(ev Event) error {
	s.Logger.Info().Str("event", ev.Type).Interface("payload", ev.Payload).Msg("notification dispatched")
	return nil
}

// AsyncDispatcher queues events onto a buffered channel drained by a single
// background worker. A full queue drops the event with a warning; the
// scheduling core must never block on notification delivery.
type AsyncDispatcher struct {
	sink   Sink
	queue  chan Event
	logger zerolog.Logger
}

func NewAsyncDispatcher(sink Sink, buffer int, logger zerolog.Logger) *AsyncDispatcher {
	if buffer <= 0 {
		buffer = 100
	}
	d := &AsyncDispatcher{
		sink:   sink,
		queue:  make(chan Event, buffer),
		logger: logger,
	}

	go d.worker()
	return d
}

func (d *AsyncDispatcher) worker() {
	for ev := range d.queue {
		if err := d.sink.Deliver(ev); err != nil {
			d.logger.Error().Err(err).Str("event", ev.Type).Msg("notification delivery failed")
		}
	}
}

func (d *AsyncDispatcher) Notify(eventType string, payload map[string]any) {
	select {
	case d.queue <- Event{Type: eventType, Payload: payload}:
	default:
		d.logger.Warn().Str("event", eventType).Msg("notification queue full, dropping event")
	}
}

// Close stops the worker after the queue drains.
func (d *AsyncDispatcher) Close() {
	close(d.queue)
}
