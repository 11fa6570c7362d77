// Service for monitoring devices to ensure they're still alive and emitting
// events. Watches the device ids listed under watchdog config, and alerts if
// an event has not been seen from a device in a configurable time period.
//
// Service heartbeats can be watched too, by listing heartbeat.<service> as a
// device.
package watchdog

import (
	"fmt"
	"log"
	"net/smtp"
	"sort"
	"strings"
	"time"

	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
	"github.com/sourceclub/doormon/util"
)

// Clock is overridable for testing
var Clock = func() time.Time { return time.Now() }

type WatchdogDevice struct {
	Name        string
	Timeout     time.Duration
	Alerted     bool
	LastAlerted time.Time
	LastEvent   time.Time
}

type WatchdogDevices []*WatchdogDevice

func (self WatchdogDevices) Less(i, j int) bool {
	return self[i].LastEvent.Before(self[j].LastEvent)
}

func (self WatchdogDevices) Len() int {
	return len(self)
}

func (self WatchdogDevices) Swap(i, j int) {
	self[i], self[j] = self[j], self[i]
}

var devices map[string]*WatchdogDevice
var repeatInterval, _ = time.ParseDuration("12h")

var sendMail = smtp.SendMail

func sendAlert(name, state string, since time.Time) {
	log.Printf("Sending %s watchdog alert for: %s\n", state, name)
	duration := Clock().Sub(since)
	message := fmt.Sprintf("%s: %s since %s (%s ago)", state, name, since.Local().Format(time.Stamp), util.ShortDuration(duration))
	services.SendAlert(message, "watchdog", "", 0)

	email := services.Config.General.Email
	if email.Server == "" {
		return
	}
	to := []string{email.Admin}
	msg := fmt.Sprintf("Subject: %s: %s\n\n%s\n", state, name, message)
	err := sendMail(email.Server, nil, email.From, to, []byte(msg))
	if err != nil {
		log.Println("Error sending email:", err)
	}
}

func checkEvent(ev *pubsub.Event) {
	// check if in devices monitored
	device := services.Config.LookupDeviceName(ev)
	w := devices[device]
	if w == nil {
		return
	}

	// recovered?
	if w.Alerted {
		w.Alerted = false
		sendAlert(w.Name, "RECOVERED", w.LastEvent)
	}
	w.LastEvent = ev.Timestamp
}

func checkTimeouts() {
	timeouts := []string{}
	var lastEvent time.Time
	now := Clock()
	for _, w := range devices {
		if w.Alerted {
			// check if should repeat
			if now.Sub(w.LastAlerted) > repeatInterval {
				timeouts = append(timeouts, w.Name)
				lastEvent = w.LastEvent
				w.LastAlerted = now
			}
		} else if now.Sub(w.LastEvent) > w.Timeout {
			// first alert
			timeouts = append(timeouts, w.Name)
			lastEvent = w.LastEvent
			w.Alerted = true
			w.LastAlerted = now
		}
	}

	// send a single alert for multiple devices
	if len(timeouts) > 0 {
		sort.Strings(timeouts)
		sendAlert(strings.Join(timeouts, ", "), "PROBLEM", lastEvent)
	}
}

func setup() {
	devices = map[string]*WatchdogDevice{}
	now := Clock()
	for device, timeout := range services.Config.Watchdog.Devices {
		duration, _ := util.ParseDuration(timeout)
		name := services.Config.Devices[device].Name
		if name == "" {
			name = device
		}
		// give devices a grace period for their first event
		devices[device] = &WatchdogDevice{
			Name:      name,
			Timeout:   duration,
			LastEvent: now,
		}
	}
}

// Service watchdog
type Service struct{}

// ID of the service
func (self *Service) ID() string {
	return "watchdog"
}

// Run the service
func (self *Service) Run() error {
	setup()
	ticker := time.NewTicker(time.Minute)
	events := services.Subscriber.Subscribe(pubsub.All())
	for {
		select {
		case ev := <-events:
			checkEvent(ev)
		case <-ticker.C:
			checkTimeouts()
		}
	}
}

func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"status": services.TextHandler(self.queryStatus),
		"help":   services.StaticHandler("status: get status\n"),
	}
}

func (self *Service) queryStatus(q services.Question) string {
	var out string
	var list WatchdogDevices
	for _, device := range devices {
		list = append(list, device)
	}
	// return oldest last
	sort.Sort(sort.Reverse(list))

	now := Clock()
	for _, w := range list {
		problem := ""
		if w.Alerted {
			problem = "PROBLEM"
		}
		ago := util.ShortDuration(now.Sub(w.LastEvent))
		out += fmt.Sprintf("- %-6s %s %s\n", ago, w.Name, problem)
	}
	return out
}
