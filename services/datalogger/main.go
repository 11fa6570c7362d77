// Service for logging events to log files on disk.
//
// They are logged to a file named 'data.log' under a directory named by the event topic.
package datalogger

import (
	"log"
	"os"
	"path"
	"strings"

	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
	"github.com/sourceclub/doormon/util"
)

var (
	logDir string
)

func ensureDirectory(path string) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// create
			os.MkdirAll(path, 0755)
		} else {
			log.Fatal("Could not create directory")
		}
	}
}

func writeToLogFile(ev *pubsub.Event) {
	name := ev.Topic
	device := services.Config.LookupDeviceName(ev)
	if device != "" {
		ev.Fields["device"] = device
	}
	p := path.Join(logDir, name)
	ensureDirectory(p)
	p = path.Join(p, "data.log")
	// reopen the log file each time, so that log rotation can happen in the
	// background.
	fio, err := os.OpenFile(p, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0660)
	if err != nil {
		log.Println("Couldn't write file:", err)
		return
	}
	defer fio.Close()

	fio.Write(ev.Bytes())
	fio.WriteString("\n")
}

func event(ev *pubsub.Event) {
	if strings.HasPrefix(ev.Topic, "_") {
		return
	}
	writeToLogFile(ev)
}

// Service datalogger
type Service struct{}

// ID of the service
func (self *Service) ID() string {
	return "datalogger"
}

func (self *Service) ConfigUpdated() {
	logDir = util.ExpandUser(services.Config.Datalogger.Path)
}

// Run the service
func (self *Service) Run() error {
	self.ConfigUpdated()
	for ev := range services.Subscriber.Subscribe(pubsub.All()) {
		event(ev)
	}
	return nil
}
