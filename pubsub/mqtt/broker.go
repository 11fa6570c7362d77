package mqtt

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	MQTT "github.com/eclipse/paho.mqtt.golang"

	"github.com/sourceclub/doormon/pubsub"
)

// Prefix namespaces all bus traffic on the mqtt server.
const Prefix = "doormon/"

type Broker struct {
	broker     string
	client     MQTT.Client
	subscriber *Subscriber
}

func NewBroker(broker string, name string) *Broker {
	self := &Broker{broker: broker}
	hostname, _ := os.Hostname()
	clientID := fmt.Sprintf("doormon/%s-%s-%d-%d", name, hostname, os.Getpid(), rand.Int())
	opts := MQTT.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(self.connectHandler)
	opts.SetDefaultPublishHandler(self.publishHandler)
	self.client = MQTT.NewClient(opts)
	if token := self.client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln("Couldn't connect to mqtt:", token.Error())
	}
	return self
}

func (self *Broker) ID() string {
	return "mqtt: " + self.broker
}

func (self *Broker) connectHandler(client MQTT.Client) {
	if self.subscriber != nil {
		self.subscriber.connected()
	}
}

func (self *Broker) publishHandler(client MQTT.Client, msg MQTT.Message) {
	if self.subscriber != nil {
		self.subscriber.message(msg)
	}
}

func (self *Broker) Subscriber() pubsub.Subscriber {
	if self.subscriber == nil {
		self.subscriber = NewSubscriber(self)
	}
	return self.subscriber
}

func (self *Broker) Publisher() pubsub.Publisher {
	return &Publisher{broker: self.broker, client: self.client}
}
