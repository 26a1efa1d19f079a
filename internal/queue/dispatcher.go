package queue

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/quemtemboca/marketplace-api/internal/logutil"
)

// ErrBacklogFull is returned by Dispatcher.Publish when no buffer slot is
// free.  The event is dropped.
var ErrBacklogFull = errors.New("queue: event backlog full")

// Sender delivers one event to the broker.  *Publisher implements it.
type Sender interface {
	Publish(ctx context.Context, queueName string, payload any) error
}

type envelope struct {
	queue   string
	payload any
	log     zerolog.Logger
}

// Dispatcher moves event delivery off the request path.  Publish only
// enqueues; Run drains the buffer and hands each event to the Sender with
// its own deadline, so a slow or unreachable broker never delays a response.
type Dispatcher struct {
	next    Sender
	events  chan envelope
	timeout time.Duration
}

// NewDispatcher buffers up to size events in front of next.  Each delivery
// gets at most timeout.
func NewDispatcher(next Sender, size int, timeout time.Duration) *Dispatcher {
	if size < 1 {
		size = 1
	}
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &Dispatcher{next: next, events: make(chan envelope, size), timeout: timeout}
}

// Publish enqueues the event without blocking.
func (d *Dispatcher) Publish(ctx context.Context, queueName string, payload any) error {
	log := logutil.GetOrDefault(ctx)
	select {
	case d.events <- envelope{queue: queueName, payload: payload, log: log}:
		return nil
	default:
		log.Warn().Str("queue", queueName).Msg("event backlog full; event dropped")
		return ErrBacklogFull
	}
}

// Run delivers queued events until ctx is cancelled.  Events still buffered
// at that point are dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if n := len(d.events); n > 0 {
				l := logutil.GetOrDefault(ctx)
				l.Warn().Int("pending", n).Msg("dispatcher stopped with undelivered events")
			}
			return ctx.Err()
		case ev := <-d.events:
			d.deliver(ctx, ev)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, ev envelope) {
	ctx, cancel := context.WithTimeout(logutil.WithLogger(ctx, ev.log), d.timeout)
	defer cancel()
	if err := d.next.Publish(ctx, ev.queue, ev.payload); err != nil {
		ev.log.Warn().Err(err).Str("queue", ev.queue).Msg("event delivery failed")
	}
}
