package main

import (
	"fmt"
	"io/ioutil"

	"github.com/sourceclub/doormon/config"
	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
)

const configPath = "doormon/config"

// updateConfig pushes a new configuration out to the running services, and
// stores a copy for the api to serve back.
func updateConfig(filename string) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading %s: %s\n", filename, err)
		return
	}

	// check it parses before publishing
	if _, err := config.OpenRaw(data); err != nil {
		fmt.Printf("Invalid config: %s\n", err)
		return
	}

	services.Setup("config")
	services.Stor.Set(configPath, string(data))

	fields := pubsub.Fields{
		"path":   configPath,
		"config": string(data),
	}
	ev := pubsub.NewEvent("config", fields)
	ev.SetRetained(true) // config messages are retained
	services.Publisher.Emit(ev)
	ev.Published.Wait()
	fmt.Printf("Updated %s (%d bytes)\n", configPath, len(data))
	services.Shutdown()
}
