package pubsub

import (
	"encoding/json"
	"sync"
	"time"
)

type Fields map[string]interface{}

type Event struct {
	Topic     string
	Timestamp time.Time
	Fields    Fields
	Retained  bool
	Published sync.WaitGroup
}

func NewEvent(topic string, fields map[string]interface{}) *Event {
	timestamp := time.Now().UTC()
	if ts, ok := fields["timestamp"].(string); ok {
		delete(fields, "timestamp")
		timestamp, _ = time.Parse(TimeFormat, ts)
	}
	return &Event{Topic: topic, Timestamp: timestamp, Fields: fields}
}

const TimeFormat = "2006-01-02 15:04:05.000000"

func (event *Event) Map() map[string]interface{} {
	data := make(map[string]interface{})
	data["topic"] = event.Topic
	data["timestamp"] = event.Timestamp.Format(TimeFormat)
	for k, v := range event.Fields {
		data[k] = v
	}
	return data
}

func (event *Event) Bytes() []byte {
	v, _ := json.Marshal(event.Map())
	return v
}

func (event *Event) String() string {
	return string(event.Bytes())
}

func (event *Event) StringField(name string) string {
	ret, _ := event.Fields[name].(string)
	return ret
}

// IntField returns a numeric field. Events parsed off the wire carry
// float64s, locally constructed events may hold ints.
func (event *Event) IntField(name string) int64 {
	switch ret := event.Fields[name].(type) {
	case float64:
		return int64(ret)
	case int:
		return int64(ret)
	case int64:
		return ret
	}
	return 0
}

func (event *Event) BoolField(name string) bool {
	ret, _ := event.Fields[name].(bool)
	return ret
}

func (event *Event) SetField(name string, value interface{}) {
	event.Fields[name] = value
}

func (event *Event) SetFields(fields map[string]interface{}) {
	for key, value := range fields {
		event.Fields[key] = value
	}
}

func (event *Event) SetRetained(retained bool) {
	event.Retained = retained
}

func (event *Event) Target() string {
	return event.StringField("target")
}

func (event *Event) Device() string {
	return event.StringField("device")
}

func (event *Event) Source() string {
	return event.StringField("source")
}

func (event *Event) State() string {
	return event.StringField("state")
}

// Parse an event from the json wire format. topic is the fallback if the
// message doesn't carry a topic field itself.
func Parse(msg string, topic string) *Event {
	var fields map[string]interface{}
	err := json.Unmarshal([]byte(msg), &fields)
	if err != nil {
		return nil
	}
	if t, ok := fields["topic"].(string); ok {
		topic = t
		delete(fields, "topic")
	}
	if topic == "" {
		return nil
	}
	return NewEvent(topic, fields)
}
