package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sourceclub/doormon/pubsub"
)

var yml = `
general:
  email:
    admin:
      test@example.com
protocols:
  gpio:
    "21": door.club
`

func ExampleOpenRaw() {
	config, _ := OpenRaw([]byte(yml))
	fmt.Println(config.General.Email.Admin)
	// Output:
	// test@example.com
}

func Example_lookupDeviceName() {
	config, _ := OpenRaw([]byte(yml))
	fields := pubsub.Fields{"source": "gpio.21"}
	ev := pubsub.NewEvent("sensor", fields)
	fmt.Println(config.LookupDeviceName(ev))
	// Output:
	// door.club
}

func Example_lookupDeviceNameMissing() {
	config, _ := OpenRaw([]byte(yml))
	fields := pubsub.Fields{"source": "gpio.13"}
	ev := pubsub.NewEvent("sensor", fields)
	fmt.Println(config.LookupDeviceName(ev))
	// Output:
	// gpio.13
}

func Example_addDeviceToEvent() {
	config, _ := OpenRaw([]byte(yml))
	ev := pubsub.NewEvent("sensor", pubsub.Fields{"source": "gpio.21"})
	config.AddDeviceToEvent(ev)
	fmt.Println(ev.Device())
	// Output:
	// door.club
}

func TestExampleConfig(t *testing.T) {
	assert.NotNil(t, ExampleConfig)
	assert.Equal(t, 21, ExampleConfig.Sensor.Pin)
	assert.Equal(t, "door.club", ExampleConfig.Monitor.Device)
	assert.Equal(t, "door_data", ExampleConfig.Cloud.Collection)
}

func TestBadWatchdogTimeout(t *testing.T) {
	bad := `
watchdog:
  devices:
    door.club: xyz
`
	_, err := OpenRaw([]byte(bad))
	assert.Error(t, err)
}
