package dummy

import "github.com/sourceclub/doormon/pubsub"

// Publisher for testing, captures emitted events
type Publisher struct {
	Events []*pubsub.Event
}

// ID of Publisher
func (pub *Publisher) ID() string {
	return "dummy"
}

func (pub *Publisher) Emit(ev *pubsub.Event) {
	pub.Events = append(pub.Events, ev)
}

func (pub *Publisher) Close() {
}
