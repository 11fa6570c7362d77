package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/sourceclub/doormon/services"
	"github.com/sourceclub/doormon/services/api"
	"github.com/sourceclub/doormon/services/cloud"
	"github.com/sourceclub/doormon/services/datalogger"
	"github.com/sourceclub/doormon/services/graphite"
	"github.com/sourceclub/doormon/services/monitor"
	"github.com/sourceclub/doormon/services/sensor"
	"github.com/sourceclub/doormon/services/watchdog"
)

func registerServices() {
	// register available services
	services.Register(&api.Service{})
	services.Register(&cloud.Service{})
	services.Register(&datalogger.Service{})
	services.Register(&graphite.Service{})
	services.Register(&monitor.Service{})
	services.Register(&sensor.Service{})
	services.Register(&watchdog.Service{})
}

func usage() {
	fmt.Println("Usage: doormon COMMAND [SERVICE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("   config  filename        Update config")
	fmt.Println("   run     [service...]    Run services")
	fmt.Println("   status  [service]       Get service status")
	fmt.Println("   query   ...             Query services")
	fmt.Println("   logs                    Tail logs")
	fmt.Println()
}

var emptyParams = url.Values{}

func main() {
	log.SetOutput(os.Stdout)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	ps := []string{}
	if flag.NArg() > 1 {
		ps = flag.Args()[1:]
	}
	// ignore anything after '--'
	for i := range ps {
		if ps[i] == "--" {
			ps = ps[0:i]
			break
		}
	}

	services.SetupLogging()

	command := flag.Args()[0]
	switch command {
	default:
		usage()
	case "config":
		if len(ps) < 1 {
			usage()
			return
		}
		updateConfig(ps[0])
	case "status":
		if len(ps) == 0 {
			// all services
			query("status", []string{}, emptyParams)
		} else {
			// single service
			query(ps[0]+"/status", []string{}, url.Values{"responses": {"1"}})
		}
	case "run":
		service(ps)
	case "query":
		if len(ps) == 0 {
			usage()
			return
		}
		query(ps[0], ps[1:], url.Values{"timeout": {"5000"}, "responses": {"1"}})
	case "logs":
		stream("logs", emptyParams)
	}
}

// Start builtin services
func service(ss []string) {
	if len(ss) == 0 {
		usage()
		return
	}
	services.Setup(ss[0])
	registerServices()
	services.Launch(ss)
}
