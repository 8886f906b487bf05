package events

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/pkg/constants"
	wire "github.com/agentstation/tasksync/pkg/events"
)

// Broker serialises published events onto one goroutine and delivers each
// to every subscriber in publication order.
type Broker struct {
	queue   chan Event
	logger  *zerolog.Logger
	seq     atomic.Uint64
	dropped atomic.Uint64

	mu     sync.RWMutex
	subs   []subscription
	nextID int
}

type subscription struct {
	id  int
	sub Subscriber
}

// NewBroker creates a broker with a queue of constants.HubBufferSize events.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		queue:  make(chan Event, constants.HubBufferSize),
		logger: logger,
	}
}

// Run delivers queued events until ctx is done, then closes every
// subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			subs := b.subs
			b.subs = nil
			b.mu.Unlock()
			for _, s := range subs {
				_ = s.sub.Close()
			}
			b.logger.Info().Uint64("published", b.seq.Load()).Uint64("dropped", b.dropped.Load()).Msg("event broker stopped")
			return
		case ev := <-b.queue:
			b.dispatch(ev)
		}
	}
}

func (b *Broker) dispatch(ev Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.sub.Deliver(ev); err != nil {
			b.logger.Warn().Err(err).Uint64("seq", ev.Seq).Str("event", string(ev.Kind)).Msg("subscriber rejected event")
		}
	}
	b.logger.Debug().
		Uint64("seq", ev.Seq).
		Str("event", string(ev.Kind)).
		Strs("recipients", ev.Recipients).
		Msg("event delivered")
}

// Publish queues ev for recipients without blocking. An event with no
// recipients is discarded. When the queue is full the event is dropped and
// counted; clients converge on their next resync.
func (b *Broker) Publish(recipients []string, ev wire.Event) {
	if len(recipients) == 0 {
		return
	}
	out := Event{
		Kind:       ev.Kind(),
		Recipients: slices.Clone(recipients),
		Timestamp:  time.Now(),
		Payload:    ev,
	}
	// Seq is assigned under the lock so queue order and Seq order agree.
	b.mu.Lock()
	defer b.mu.Unlock()
	out.Seq = b.seq.Load() + 1
	select {
	case b.queue <- out:
		b.seq.Store(out.Seq)
	default:
		b.dropped.Add(1)
		b.logger.Warn().Str("event", string(out.Kind)).Msg("event queue full, dropping event")
	}
}

// Subscribe registers sub. The returned func unregisters and closes it.
func (b *Broker) Subscribe(sub Subscriber) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, sub: sub})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			i := slices.IndexFunc(b.subs, func(s subscription) bool { return s.id == id })
			if i >= 0 {
				b.subs = slices.Delete(b.subs, i, i+1)
			}
			b.mu.Unlock()
			if i >= 0 {
				_ = sub.Close()
			}
		})
	}
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Published returns the number of events accepted onto the queue.
func (b *Broker) Published() uint64 { return b.seq.Load() }

// Dropped returns the number of events lost to a full queue.
func (b *Broker) Dropped() uint64 { return b.dropped.Load() }
