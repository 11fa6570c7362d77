// Service to read the door magnetic switch on a GPIO pin.
//
// The switch is wired between the configured pin (BCM numbering) and GND,
// with the internal pull-up enabled: the magnet holds the switch closed
// while the door is shut, so the pin reads low for 'closed' and high for
// 'open'. Raw readings are debounced before an event is emitted.
package sensor

import (
	"fmt"
	"log"
	"time"

	"github.com/barnybug/ener314/rpio"

	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
)

// Service sensor
type Service struct {
}

// ID of the service
func (self *Service) ID() string {
	return "sensor"
}

const PollInterval = time.Millisecond * 50

const (
	DefaultBounce  = time.Second
	DefaultRefresh = time.Minute
)

// Debouncer settles a noisy two-state signal. A reading must hold steady
// for the bounce window before it becomes the settled state.
type Debouncer struct {
	state     bool
	candidate bool
	since     time.Time
	bounce    time.Duration
}

func NewDebouncer(initial bool, bounce time.Duration, now time.Time) *Debouncer {
	return &Debouncer{state: initial, candidate: initial, since: now, bounce: bounce}
}

// State returns the settled state.
func (self *Debouncer) State() bool {
	return self.state
}

// Step feeds a raw reading taken at now. Returns the settled state and
// whether it changed.
func (self *Debouncer) Step(reading bool, now time.Time) (bool, bool) {
	if reading != self.candidate {
		self.candidate = reading
		self.since = now
	}
	if self.candidate != self.state && now.Sub(self.since) >= self.bounce {
		self.state = self.candidate
		return self.state, true
	}
	return self.state, false
}

func watch(read func() bool, bounce time.Duration, changes chan<- bool) {
	debouncer := NewDebouncer(read(), bounce, time.Now())
	for {
		time.Sleep(PollInterval)
		if state, changed := debouncer.Step(read(), time.Now()); changed {
			changes <- state
		}
	}
}

func (self *Service) emitState(closed bool, retained bool) {
	state := "open"
	if closed {
		state = "closed"
	}
	fields := pubsub.Fields{
		"source": fmt.Sprintf("gpio.%d", services.Config.Sensor.Pin),
		"state":  state,
	}
	ev := pubsub.NewEvent("sensor", fields)
	services.Config.AddDeviceToEvent(ev)
	ev.SetRetained(retained)
	services.Publisher.Emit(ev)
}

func bounceInterval() time.Duration {
	if s := services.Config.Sensor.Bounce; s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		log.Println("Bad sensor bounce, using default:", s)
	}
	return DefaultBounce
}

func refreshInterval() time.Duration {
	if s := services.Config.Sensor.Refresh; s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		log.Println("Bad sensor refresh, using default:", s)
	}
	return DefaultRefresh
}

// Run the service
func (self *Service) Run() error {
	err := rpio.Open()
	if err != nil {
		log.Fatalln("Couldn't open /dev/gpiomem")
	}
	defer rpio.Close()

	pin := rpio.Pin(services.Config.Sensor.Pin)
	pin.Input()
	pin.PullUp()
	read := func() bool {
		return pin.Read() == rpio.Low // low = circuit closed = door shut
	}

	changes := make(chan bool, 10)
	go watch(read, bounceInterval(), changes)

	closed := read()
	self.emitState(closed, true)
	initial := "open"
	if closed {
		initial = "closed"
	}
	log.Printf("Watching pin %d (initially %s)", services.Config.Sensor.Pin, initial)

	ticker := time.NewTicker(refreshInterval())
	defer ticker.Stop()
	for {
		select {
		case closed = <-changes:
			self.emitState(closed, false)
		case <-ticker.C:
			// retained refresh, so late subscribers and the watchdog see a
			// current reading
			self.emitState(closed, true)
		}
	}
}
