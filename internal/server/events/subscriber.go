package events

// Subscriber consumes published events. Deliver runs on the broker
// goroutine, so it must hand off quickly.
type Subscriber interface {
	Deliver(Event) error
	Close() error
}

// SubscriberFunc adapts a function to Subscriber. Close is a no-op.
type SubscriberFunc func(Event) error

// Deliver implements Subscriber.
func (f SubscriberFunc) Deliver(ev Event) error { return f(ev) }

// Close implements Subscriber.
func (SubscriberFunc) Close() error { return nil }
