package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/util"
)

type DeviceConf struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Source   string `json:"source"`
	Location string `json:"location"`
}

type EndpointsConf struct {
	Mqtt struct {
		Broker string
	}
	Redis string
	Api   string
}

type GeneralEmailConf struct {
	Admin  string
	From   string
	Server string
}

type GeneralConf struct {
	Email GeneralEmailConf
}

type SensorConf struct {
	Pin     int
	Bounce  string
	Refresh string
}

type MonitorConf struct {
	Device   string
	Timezone string
	Rollover string
}

type CloudConf struct {
	Credentials string
	Project     string
	Collection  string
}

type DataloggerConf struct {
	Path string
}

type GraphiteConf struct {
	Url string
	Tcp string
}

type WatchdogConf struct {
	Devices map[string]string
}

type Config struct {
	// yaml fields
	Devices    map[string]DeviceConf
	Protocols  map[string]map[string]string
	Endpoints  EndpointsConf
	Cloud      CloudConf
	Datalogger DataloggerConf
	General    GeneralConf
	Graphite   GraphiteConf
	Monitor    MonitorConf
	Sensor     SensorConf
	Watchdog   WatchdogConf
}

// Open configuration from disk.
func Open() (*Config, error) {
	file, err := os.Open(ConfigPath("doormon.yml"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return OpenReader(file)
}

// Open configuration from a reader.
func OpenReader(r io.Reader) (*Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return OpenRaw(data)
}

// Open configuration from []byte.
func OpenRaw(data []byte) (*Config, error) {
	self := &Config{}
	err := yaml.Unmarshal(data, self)
	if err != nil {
		return nil, err
	}

	for device, timeout := range self.Watchdog.Devices {
		if _, err := util.ParseDuration(timeout); err != nil {
			return nil, fmt.Errorf("bad watchdog timeout for %s: %s", device, timeout)
		}
	}

	return self, nil
}

// LookupDeviceName resolves the device name for an event, from the device
// field if set, otherwise by looking up the event source (protocol.id)
// under protocols.
func (self *Config) LookupDeviceName(ev *pubsub.Event) string {
	if device := ev.Device(); device != "" {
		return device
	}
	source := ev.Source()
	ps := strings.SplitN(source, ".", 2)
	if len(ps) == 2 {
		if device, ok := self.Protocols[ps[0]][ps[1]]; ok {
			return device
		}
	}
	return source
}

func (self *Config) AddDeviceToEvent(ev *pubsub.Event) {
	// split source into protocol.id
	ps := strings.SplitN(ev.Source(), ".", 2)
	protocol := ps[0]
	var id string
	if len(ps) > 1 {
		id = ps[1]
	}
	device := self.Protocols[protocol][id]
	if device != "" {
		ev.SetField("device", device)
	}
}

// helpers

// Resolve a configuration file under .config/doormon
func ConfigPath(p string) string {
	config := os.Getenv("XDG_CONFIG_HOME")
	if config == "" {
		config = path.Join(os.Getenv("HOME"), ".config")
	}
	return path.Join(config, "doormon", p)
}

// Get path to a log file
func LogPath(p string) string {
	return path.Join(util.ExpandUser("~/doormon/log"), p)
}
