package mqtt

import (
	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/sourceclub/doormon/pubsub"
)

// Publisher for mqtt
type Publisher struct {
	broker string
	client MQTT.Client
}

// ID of Publisher
func (pub *Publisher) ID() string {
	return "mqtt: " + pub.broker
}

// Emit an event. Delivery happens in the background - wait on
// ev.Published to block until the broker has taken it.
func (pub *Publisher) Emit(ev *pubsub.Event) {
	topic := Prefix + ev.Topic
	ev.Published.Add(1)
	token := pub.client.Publish(topic, 1, ev.Retained, ev.Bytes())
	go func() {
		token.Wait()
		ev.Published.Done()
	}()
}

func (pub *Publisher) Close() {
	pub.client.Disconnect(250)
}
