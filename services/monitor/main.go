// Service tracking the door state and daily opening history.
//
// Sensor events drive a current status (open/closed plus the last opened
// and closed timestamps) and a running per-day aggregate of openings.
// Both survive restarts in the store. A retained 'door' event is emitted
// on every status change and a 'doorday' event carries the running day
// aggregate; shortly after local midnight the previous day is finalized
// so the dashboard gets a document even for days with no openings.
package monitor

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
	"github.com/sourceclub/doormon/util"
)

var Clock = func() time.Time {
	return time.Now()
}

const (
	statusKey = "doormon/state/door"
	dayKey    = "doormon/state/day"

	DateFormat      = "2006-01-02"
	DefaultRollover = time.Minute
)

// Status is the current door state. Timestamps are unix seconds, zero
// until the first event.
type Status struct {
	IsOpen     bool  `json:"isOpen"`
	LastOpened int64 `json:"lastOpened"`
	LastClosed int64 `json:"lastClosed"`
}

// Opening is one completed open/close pair.
type Opening struct {
	Opened int64 `json:"opened"`
	Closed int64 `json:"closed"`
}

// Day is the running aggregate for one local date.
type Day struct {
	Date     string    `json:"date"`
	Openings []Opening `json:"openings"`
}

// MarshalJSON includes the opening count, derived so it can't drift
// from the openings list.
func (day Day) MarshalJSON() ([]byte, error) {
	type alias Day
	return json.Marshal(struct {
		alias
		Count int `json:"numOfOpenings"`
	}{alias(day), len(day.Openings)})
}

// Service monitor
type Service struct {
	Device    string
	Location  *time.Location
	Status    Status
	Day       Day
	Publisher pubsub.Publisher
}

// ID of the service
func (self *Service) ID() string {
	return "monitor"
}

func (self *Service) today(at time.Time) string {
	return at.In(self.Location).Format(DateFormat)
}

func (self *Service) load() {
	if value, err := services.Stor.Get(statusKey); err == nil {
		if err := json.Unmarshal([]byte(value), &self.Status); err != nil {
			log.Println("Couldn't load status:", err)
		}
	}
	if value, err := services.Stor.Get(dayKey); err == nil {
		if err := json.Unmarshal([]byte(value), &self.Day); err != nil {
			log.Println("Couldn't load day data:", err)
		}
	}
}

func (self *Service) save() {
	status, _ := json.Marshal(self.Status)
	if err := services.Stor.Set(statusKey, string(status)); err != nil {
		log.Println("Couldn't save status:", err)
	}
	day, _ := json.Marshal(self.Day)
	if err := services.Stor.Set(dayKey, string(day)); err != nil {
		log.Println("Couldn't save day data:", err)
	}
}

func (self *Service) emitStatus() {
	state := "open"
	if !self.Status.IsOpen {
		state = "closed"
	}
	fields := pubsub.Fields{
		"device":     self.Device,
		"source":     "monitor",
		"state":      state,
		"isOpen":     self.Status.IsOpen,
		"lastOpened": self.Status.LastOpened,
		"lastClosed": self.Status.LastClosed,
	}
	ev := pubsub.NewEvent("door", fields)
	ev.SetRetained(true)
	self.Publisher.Emit(ev)
}

func (self *Service) emitDay(day Day, final bool) {
	fields := pubsub.Fields{
		"device":   self.Device,
		"source":   "monitor",
		"date":     day.Date,
		"openings": day.Openings,
		"count":    len(day.Openings),
		"final":    final,
	}
	ev := pubsub.NewEvent("doorday", fields)
	ev.SetRetained(true)
	self.Publisher.Emit(ev)
}

func (self *Service) finalizeDay() {
	if self.Day.Date == "" {
		return
	}
	log.Println("Finalizing day:", self.Day.Date)
	self.emitDay(self.Day, true)
}

func (self *Service) resetDay(date string) {
	self.Day = Day{Date: date}
}

// Event handles a sensor event for the monitored door.
func (self *Service) Event(ev *pubsub.Event) {
	device := services.Config.LookupDeviceName(ev)
	if device != self.Device {
		return
	}
	switch ev.State() {
	case "open":
		self.updateStatus(true, ev.Timestamp)
	case "closed":
		self.updateStatus(false, ev.Timestamp)
	}
}

func (self *Service) updateStatus(open bool, at time.Time) {
	if self.Status.IsOpen == open {
		// refresh or repeat, nothing changed
		return
	}
	self.Status.IsOpen = open
	if open {
		self.Status.LastOpened = at.Unix()
		log.Println("Door opened")
	} else {
		self.Status.LastClosed = at.Unix()
		log.Println("Door closed")
	}

	if !open && self.Status.LastOpened != 0 {
		// completed an open/close pair
		today := self.today(at)
		if self.Day.Date != today {
			// the date moved on while the door sat open - close out the
			// old day before recording against the new one
			self.finalizeDay()
			self.resetDay(today)
		}
		self.Day.Openings = append(self.Day.Openings, Opening{
			Opened: self.Status.LastOpened,
			Closed: self.Status.LastClosed,
		})
		self.emitDay(self.Day, false)
	}

	self.save()
	self.emitStatus()
}

// Rollover finalizes the previous day and starts a fresh one. Days with
// no openings still get finalized, so the dashboard sees them. A
// rollover landing on the running date changes nothing.
func (self *Service) Rollover(now time.Time) {
	today := self.today(now)
	if self.Day.Date == today {
		return
	}
	self.finalizeDay()
	self.resetDay(today)
	self.save()
}

func (self *Service) ShortStatus(now time.Time) string {
	state := "closed"
	since := self.Status.LastClosed
	if self.Status.IsOpen {
		state = "open"
		since = self.Status.LastOpened
	}
	du := "unknown"
	if since != 0 {
		du = util.ShortDuration(now.Sub(time.Unix(since, 0)))
	}
	return fmt.Sprintf("Door: %s for %s, %d openings today", state, du, len(self.Day.Openings))
}

func (self *Service) Json() interface{} {
	return map[string]interface{}{
		"isOpen":     self.Status.IsOpen,
		"lastOpened": self.Status.LastOpened,
		"lastClosed": self.Status.LastClosed,
		"date":       self.Day.Date,
		"count":      len(self.Day.Openings),
	}
}

func (self *Service) queryStatus(q services.Question) services.Answer {
	return services.Answer{
		Text: self.ShortStatus(Clock()),
		Json: self.Json(),
	}
}

func (self *Service) queryToday(q services.Question) services.Answer {
	return services.Answer{
		Text: fmt.Sprintf("%s: %d openings", self.Day.Date, len(self.Day.Openings)),
		Json: self.Day,
	}
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"status": self.queryStatus,
		"today":  self.queryToday,
		"help":   services.StaticHandler("status: get the door status\ntoday: get today's openings"),
	}
}

func (self *Service) Initialize(em pubsub.Publisher) {
	self.Publisher = em
	self.Device = services.Config.Monitor.Device
	self.Location = time.Local
	if tz := services.Config.Monitor.Timezone; tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			self.Location = loc
		} else {
			log.Println("Bad timezone, using local:", tz)
		}
	}
	self.load()
	if self.Day.Date == "" {
		self.resetDay(self.today(Clock()))
	}
}

func rolloverOffset() time.Duration {
	if s := services.Config.Monitor.Rollover; s != "" {
		if d, err := util.ParseDuration(s); err == nil {
			return d
		}
		log.Println("Bad rollover offset, using default:", s)
	}
	return DefaultRollover
}

// Run the service
func (self *Service) Run() error {
	self.Initialize(services.Publisher)

	events := services.Subscriber.Subscribe(pubsub.Exact("sensor"))
	offset := rolloverOffset()
	rollover := time.NewTimer(util.NextRollover(Clock(), self.Location, offset).Sub(Clock()))
	defer rollover.Stop()

	for {
		select {
		case ev := <-events:
			self.Event(ev)
		case <-rollover.C:
			now := Clock()
			self.Rollover(now)
			rollover.Reset(util.NextRollover(now, self.Location, offset).Sub(now))
		}
	}
}
