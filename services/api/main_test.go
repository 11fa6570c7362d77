package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/sourceclub/doormon/config"
	"github.com/sourceclub/doormon/services"
)

func Example_interfaces() {
	var _ services.Service = (*Service)(nil)
	// Output:
}

func ExampleIndex() {
	rec := httptest.NewRecorder()
	r := http.Request{}
	apiIndex(rec, &r)
	fmt.Println(rec.Body)
	// Output:
	// <html>doormon is listening</html>
}

func Example_status() {
	services.Stor = services.NewMockStore()
	services.Stor.Set("doormon/state/door", `{"isOpen":true,"lastOpened":1400000600,"lastClosed":1400000000}`)
	rec := httptest.NewRecorder()
	r := http.Request{}
	apiStatus(rec, &r)
	fmt.Println(rec.Body)
	// Output:
	// {"isOpen":true,"lastOpened":1400000600,"lastClosed":1400000000}
}

func Example_statusMissing() {
	services.Stor = services.NewMockStore()
	rec := httptest.NewRecorder()
	r := http.Request{}
	apiStatus(rec, &r)
	fmt.Println(rec.Code)
	// Output:
	// 500
}

func Example_today() {
	services.Stor = services.NewMockStore()
	services.Stor.Set("doormon/state/day", `{"date":"2014-01-04","openings":[{"opened":1388828340,"closed":1388828700}],"numOfOpenings":1}`)
	rec := httptest.NewRecorder()
	r := http.Request{}
	apiToday(rec, &r)
	fmt.Println(rec.Body)
	// Output:
	// {"date":"2014-01-04","openings":[{"opened":1388828340,"closed":1388828700}],"numOfOpenings":1}
}

func Example_devices() {
	services.Stor = services.NewMockStore()
	services.Config = config.ExampleConfig
	rec := httptest.NewRecorder()
	r := http.Request{}
	apiDevices(rec, &r)
	fmt.Println(rec.Body)
	// Output:
	// {"door.club":{"id":"","name":"Club Room Door","type":"door","source":"gpio.21","location":"A0-35","state":null}}
}
