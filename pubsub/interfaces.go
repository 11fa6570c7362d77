package pubsub

// Publisher is the emitting end of the event bus.
type Publisher interface {
	ID() string
	Emit(ev *Event)
	Close()
}

// Subscriber delivers bus events matching the subscribed topics.
type Subscriber interface {
	ID() string
	Subscribe(topics ...Topic) <-chan *Event
	Close(<-chan *Event)
}
