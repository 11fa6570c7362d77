package graphite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sourceclub/doormon/config"
	lib "github.com/sourceclub/doormon/lib/graphite"
	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
)

func Example_interfaces() {
	var _ services.Service = (*Service)(nil)
	var _ services.Queryable = (*Service)(nil)
	// Output:
}

func Setup() *lib.MockGraphite {
	services.Config = config.ExampleConfig
	mock := &lib.MockGraphite{}
	gr = mock
	return mock
}

func TestDoorState(t *testing.T) {
	mock := Setup()
	ev := pubsub.NewEvent("door", pubsub.Fields{
		"device": "door.club",
		"isOpen": true,
	})
	ev.Timestamp = time.Date(2014, 1, 4, 16, 0, 0, 0, time.UTC)
	sendToGraphite(ev)
	assert.Equal(t, []string{"door.club.state 1 1388851200"}, mock.Points)

	ev.SetField("isOpen", false)
	sendToGraphite(ev)
	assert.Equal(t, "door.club.state 0 1388851200", mock.Points[1])
}

func TestDayOpenings(t *testing.T) {
	mock := Setup()
	ev := pubsub.NewEvent("doorday", pubsub.Fields{
		"device": "door.club",
		"date":   "2014-01-04",
		"count":  float64(3),
	})
	ev.Timestamp = time.Date(2014, 1, 4, 16, 0, 0, 0, time.UTC)
	sendToGraphite(ev)
	assert.Equal(t, []string{"door.club.openings 3 1388851200"}, mock.Points)
}

func TestUnknownDeviceIgnored(t *testing.T) {
	mock := Setup()
	ev := pubsub.NewEvent("door", pubsub.Fields{
		"device": "door.unknown",
		"isOpen": true,
	})
	sendToGraphite(ev)
	assert.Empty(t, mock.Points)
}
