package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sourceclub/doormon/config"
	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/pubsub/dummy"
	"github.com/sourceclub/doormon/services"
)

var (
	evOpen    = pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.21", "state": "open", "timestamp": "2014-01-04 10:19:00.000000"})
	evClosed  = pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.21", "state": "closed", "timestamp": "2014-01-04 10:25:00.000000"})
	evRefresh = pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.21", "state": "closed", "timestamp": "2014-01-04 10:26:00.000000"})
	evOther   = pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.13", "state": "open", "timestamp": "2014-01-04 10:30:00.000000"})

	evOpenLate  = pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.21", "state": "open", "timestamp": "2014-01-04 21:55:00.000000"})
	evCloseNext = pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.21", "state": "closed", "timestamp": "2014-01-04 22:05:00.000000"})
)

var (
	em      *dummy.Publisher
	service *Service
)

func Setup() {
	services.Config = config.ExampleConfig
	services.Stor = services.NewMockStore()
	// midday Jan 4th in Helsinki (UTC+2)
	Clock = func() time.Time { return time.Date(2014, 1, 4, 12, 0, 0, 0, time.UTC) }
	em = &dummy.Publisher{}
	service = &Service{}
	service.Initialize(em)
}

func Example_interfaces() {
	var _ services.Service = (*Service)(nil)
	var _ services.Queryable = (*Service)(nil)
	// Output:
}

func TestOpenClose(t *testing.T) {
	Setup()
	assert.False(t, service.Status.IsOpen)
	assert.Equal(t, "2014-01-04", service.Day.Date)

	service.Event(evOpen)
	assert.True(t, service.Status.IsOpen)
	assert.Equal(t, evOpen.Timestamp.Unix(), service.Status.LastOpened)
	// one retained door event
	if assert.Len(t, em.Events, 1) {
		assert.Equal(t, "door", em.Events[0].Topic)
		assert.True(t, em.Events[0].BoolField("isOpen"))
		assert.True(t, em.Events[0].Retained)
	}
	em.Events = nil

	service.Event(evClosed)
	assert.False(t, service.Status.IsOpen)
	assert.Equal(t, evClosed.Timestamp.Unix(), service.Status.LastClosed)
	if assert.Len(t, service.Day.Openings, 1) {
		assert.Equal(t, evOpen.Timestamp.Unix(), service.Day.Openings[0].Opened)
		assert.Equal(t, evClosed.Timestamp.Unix(), service.Day.Openings[0].Closed)
	}
	// a doorday aggregate and a door status event
	if assert.Len(t, em.Events, 2) {
		assert.Equal(t, "doorday", em.Events[0].Topic)
		assert.Equal(t, "2014-01-04", em.Events[0].StringField("date"))
		assert.Equal(t, int64(1), em.Events[0].IntField("count"))
		assert.False(t, em.Events[0].BoolField("final"))
		assert.Equal(t, "door", em.Events[1].Topic)
	}
}

func TestRefreshIgnored(t *testing.T) {
	Setup()
	service.Event(evOpen)
	service.Event(evClosed)
	em.Events = nil

	service.Event(evRefresh)
	assert.Empty(t, em.Events)
	assert.Len(t, service.Day.Openings, 1)
}

func TestOtherDeviceIgnored(t *testing.T) {
	Setup()
	service.Event(evOther)
	assert.Empty(t, em.Events)
	assert.False(t, service.Status.IsOpen)
}

func TestCloseWithoutOpen(t *testing.T) {
	Setup()
	// already closed, a closed event changes nothing
	service.Event(evClosed)
	assert.Empty(t, em.Events)
	assert.Empty(t, service.Day.Openings)
}

func TestDateChangeOnClose(t *testing.T) {
	Setup()
	service.Event(evOpen)
	service.Event(evClosed)
	em.Events = nil

	// opened 23:55 local, closed 00:05 the next local day
	service.Event(evOpenLate)
	em.Events = nil
	service.Event(evCloseNext)

	// old day finalized, opening recorded against the new date
	if assert.Len(t, em.Events, 3) {
		assert.Equal(t, "doorday", em.Events[0].Topic)
		assert.Equal(t, "2014-01-04", em.Events[0].StringField("date"))
		assert.True(t, em.Events[0].BoolField("final"))
		assert.Equal(t, "doorday", em.Events[1].Topic)
		assert.Equal(t, "2014-01-05", em.Events[1].StringField("date"))
		assert.Equal(t, int64(1), em.Events[1].IntField("count"))
		assert.Equal(t, "door", em.Events[2].Topic)
	}
	assert.Equal(t, "2014-01-05", service.Day.Date)
	assert.Len(t, service.Day.Openings, 1)
}

func TestRollover(t *testing.T) {
	Setup()
	service.Event(evOpen)
	service.Event(evClosed)
	em.Events = nil

	// next local day arrives
	service.Rollover(time.Date(2014, 1, 4, 22, 2, 0, 0, time.UTC))
	if assert.Len(t, em.Events, 1) {
		assert.Equal(t, "doorday", em.Events[0].Topic)
		assert.Equal(t, "2014-01-04", em.Events[0].StringField("date"))
		assert.True(t, em.Events[0].BoolField("final"))
		assert.Equal(t, int64(1), em.Events[0].IntField("count"))
	}
	assert.Equal(t, "2014-01-05", service.Day.Date)
	assert.Empty(t, service.Day.Openings)

	// repeated rollover on the same day finalizes nothing
	em.Events = nil
	service.Rollover(time.Date(2014, 1, 4, 23, 0, 0, 0, time.UTC))
	assert.Empty(t, em.Events)
}

func TestRolloverSameDayKeepsOpenings(t *testing.T) {
	Setup()
	service.Event(evOpen)
	service.Event(evClosed)
	em.Events = nil

	// a timer firing again within the same local day must not discard
	// the day's recorded openings
	service.Rollover(time.Date(2014, 1, 4, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "2014-01-04", service.Day.Date)
	assert.Len(t, service.Day.Openings, 1)
	assert.Empty(t, em.Events)
}

func TestDayJson(t *testing.T) {
	Setup()
	service.Event(evOpen)
	service.Event(evClosed)

	// the persisted day state carries the opening count
	value, err := services.Stor.Get("doormon/state/day")
	assert.NoError(t, err)
	assert.Contains(t, value, `"date":"2014-01-04"`)
	assert.Contains(t, value, `"numOfOpenings":1`)
}

func TestPersistence(t *testing.T) {
	Setup()
	service.Event(evOpen)
	service.Event(evClosed)

	// a fresh service picks up where the last one left off
	restarted := &Service{}
	restarted.Initialize(em)
	assert.Equal(t, service.Status, restarted.Status)
	assert.Equal(t, service.Day.Date, restarted.Day.Date)
	assert.Len(t, restarted.Day.Openings, 1)
}

func TestQueries(t *testing.T) {
	Setup()
	service.Event(evOpen)

	Clock = func() time.Time { return evOpen.Timestamp.Add(5 * time.Minute) }
	answer := service.queryStatus(services.Question{})
	assert.Equal(t, "Door: open for 5m, 0 openings today", answer.Text)

	service.Event(evClosed)
	answer = service.queryToday(services.Question{})
	assert.Equal(t, "2014-01-04: 1 openings", answer.Text)
}
