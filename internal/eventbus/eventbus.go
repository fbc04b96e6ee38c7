package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus implements a simple publish/subscribe event bus.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus: a TypedBus carrying untyped events, used to
// fan planning events out to the metrics collector and other listeners.
type Bus struct {
	*TypedBus[Event]
}

// New creates a new Bus.
func New() *Bus { return &Bus{TypedBus: NewTyped[Event]()} }

// NewBuffered creates a Bus whose subscriptions hold up to buffer events.
func NewBuffered(buffer int) *Bus { return &Bus{TypedBus: NewTypedBuffered[Event](buffer)} }

var _ EventBus = (*Bus)(nil)
