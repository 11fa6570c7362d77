// Service to write door series to graphite, for the historical charts.
//
// Door state changes become a 0/1 series and day aggregates a daily
// openings counter.
package graphite

import (
	"fmt"
	"log"

	"github.com/sourceclub/doormon/lib/graphite"
	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
)

var gr graphite.IGraphite

func sendToGraphite(ev *pubsub.Event) {
	device := ev.Device()
	if _, ok := services.Config.Devices[device]; !ok {
		return
	}

	timestamp := ev.Timestamp.UTC().Unix()
	switch ev.Topic {
	case "door":
		value := 0.0
		if ev.BoolField("isOpen") {
			value = 1.0
		}
		gr.Add(fmt.Sprintf("door.%s.state", device), timestamp, value)
	case "doorday":
		gr.Add(fmt.Sprintf("door.%s.openings", device), timestamp, float64(ev.IntField("count")))
	}

	if err := gr.Flush(); err != nil {
		log.Println("Flush failed:", err)
	}
}

// Service graphite
type Service struct{}

// ID of the service
func (self *Service) ID() string {
	return "graphite"
}

// Run the service
func (self *Service) Run() error {
	gr = graphite.New(services.Config.Graphite.Url, services.Config.Graphite.Tcp)
	for ev := range services.Subscriber.Subscribe(pubsub.Exact("door"), pubsub.Exact("doorday")) {
		sendToGraphite(ev)
	}
	return nil
}

// QueryHandlers support querying the recorded series
func (self *Service) QueryHandlers() services.QueryHandlers {
	return services.QueryHandlers{
		"series": self.querySeries,
		"help":   services.StaticHandler("series device: count recorded points over the last day"),
	}
}

func (self *Service) querySeries(q services.Question) services.Answer {
	if q.Args == "" {
		return services.Answer{Text: "usage: series device"}
	}
	target := fmt.Sprintf("door.%s.state", q.Args)
	series, err := gr.Query("-24h", "now", target)
	if err != nil {
		return services.Answer{Text: fmt.Sprintf("query failed: %s", err)}
	}
	points := 0
	for _, s := range series {
		points += len(s.Datapoints)
	}
	return services.Answer{
		Text: fmt.Sprintf("%d series, %d points in the last 24h", len(series), points),
		Json: series,
	}
}
