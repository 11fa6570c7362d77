// Package api is a service providing an HTTP REST API for dashboards and
// debugging.
//
// The endpoints supported are:
//
// http://localhost:8723/status - current door status
//
// http://localhost:8723/today - the running day's openings
//
// http://localhost:8723/devices - list of devices with their latest event
//
// http://localhost:8723/query/{query} - query a service, e.g. http://localhost:8723/query/monitor/status
//
// http://localhost:8723/events/feed - continuous live stream of events (line delimited)
//
// http://localhost:8723/config?path=doormon/config - GET configuration or POST to update configuration
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/sourceclub/doormon/config"
	"github.com/sourceclub/doormon/pubsub"
	"github.com/sourceclub/doormon/services"
)

// Service api
type Service struct {
}

// ID of the service
func (service *Service) ID() string {
	return "api"
}

func errorResponse(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), 500)
}

func apiIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/html")
	fmt.Fprintf(w, "<html>doormon is listening</html>")
}

func jsonResponse(w http.ResponseWriter, obj interface{}) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	err := enc.Encode(obj)
	if err != nil {
		errorResponse(w, err)
	}
}

func storedJson(w http.ResponseWriter, key string) {
	value, err := services.Stor.Get(key)
	if err != nil {
		errorResponse(w, err)
		return
	}
	w.Header().Add("Content-Type", "application/json; charset=utf-8")
	fmt.Fprintln(w, value)
}

func apiStatus(w http.ResponseWriter, r *http.Request) {
	storedJson(w, "doormon/state/door")
}

func apiToday(w http.ResponseWriter, r *http.Request) {
	storedJson(w, "doormon/state/day")
}

type deviceAndState struct {
	config.DeviceConf
	State interface{} `json:"state"`
}

func getDevicesState() map[string]interface{} {
	// Get latest event per device from store
	ret := make(map[string]interface{})
	nodes, _ := services.Stor.GetRecursive("doormon/state/devices")
	for _, node := range nodes {
		ev := pubsub.Parse(node.Value, "")
		if ev == nil {
			continue
		}
		name := node.Key[strings.LastIndex(node.Key, "/")+1:]
		ret[name] = ev.Map()
	}
	return ret
}

func apiDevices(w http.ResponseWriter, r *http.Request) {
	ret := make(map[string]deviceAndState)
	state := getDevicesState()

	for name, dev := range services.Config.Devices {
		ret[name] = deviceAndState{dev, state[name]}
	}

	jsonResponse(w, ret)
}

func query(endpoint string, q string, timeout time.Duration, w http.ResponseWriter) {
	w.Header().Add("Content-Type", "application/json; charset=utf-8")

	ch := services.QueryChannel(endpoint+" "+q, timeout)

	for ev := range ch {
		fmt.Fprintf(w, ev.String()+"\r\n")
		w.(http.Flusher).Flush()
	}
}

func apiQuery(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Path[len("/query/"):]
	q := r.URL.Query().Get("q")
	timeout := 500 * time.Millisecond
	if ms, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil {
		timeout = time.Duration(ms) * time.Millisecond
	}
	query(endpoint, q, timeout, w)
}

func apiEventsFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Add("Content-Type", "application/json; boundary=NL")

	var topics []pubsub.Topic
	if value := q.Get("topics"); value != "" {
		for _, topic := range strings.Split(value, ",") {
			topics = append(topics, pubsub.Exact(topic))
		}
	} else {
		topics = append(topics, pubsub.All())
	}
	ch := services.Subscriber.Subscribe(topics...)
	defer services.Subscriber.Close(ch)

	for ev := range ch {
		data := ev.Map()
		device := services.Config.LookupDeviceName(ev)
		if device != "" {
			data["device"] = device
		}
		encoder := json.NewEncoder(w)
		err := encoder.Encode(data)
		if err != nil {
			break
		}
		w.Write([]byte("\r\n")) // separator
		w.(http.Flusher).Flush()
	}
}

func apiConfig(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		err := errors.New("path parameter required")
		errorResponse(w, err)
		return
	}

	// retrieve key from store, missing key reads as empty
	value, err := services.Stor.Get(path)

	if r.Method == "GET" {
		if err != nil {
			errorResponse(w, err)
			return
		}
		w.Header().Add("Content-Type", "application/yaml; charset=utf-8")
		w.Write([]byte(value))
	} else if r.Method == "POST" {
		data, err := ioutil.ReadAll(r.Body)
		if err != nil {
			errorResponse(w, err)
			return
		}

		sout := string(data)
		if sout != value {
			// set store
			services.Stor.Set(path, sout)
			// emit event carrying the new config
			fields := pubsub.Fields{
				"path":   path,
				"config": sout,
			}
			ev := pubsub.NewEvent("config", fields)
			ev.SetRetained(true) // config messages are retained
			services.Publisher.Emit(ev)
			log.Printf("%s changed, emitted config event", path)
		}
	}
}

func apiLogs(w http.ResponseWriter, r *http.Request) {
	logs := []string{}
	infos, err := ioutil.ReadDir(config.LogPath(""))
	if err != nil {
		errorResponse(w, err)
		return
	}

	for _, info := range infos {
		logs = append(logs, info.Name())
	}
	jsonResponse(w, logs)
}

func apiLogsLog(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	filename := config.LogPath(params["file"])
	file, err := os.Open(filename)
	if err != nil {
		errorResponse(w, err)
		return
	}
	defer file.Close()

	w.Header().Add("Content-Type", "text/plain; charset=utf-8")
	io.Copy(w, file)
}

func router() *mux.Router {
	router := mux.NewRouter()
	router.Path("/").HandlerFunc(apiIndex)
	router.Path("/status").HandlerFunc(apiStatus)
	router.Path("/today").HandlerFunc(apiToday)
	router.Path("/devices").HandlerFunc(apiDevices)
	router.PathPrefix("/query/").HandlerFunc(apiQuery)
	router.Path("/events/feed").HandlerFunc(apiEventsFeed)
	router.Path("/config").HandlerFunc(apiConfig)
	router.Path("/logs").HandlerFunc(apiLogs)
	router.Path("/logs/{file}").HandlerFunc(apiLogsLog)
	return router
}

type loggingHandler struct {
	Handler http.Handler
}

func (service loggingHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	log.Printf("%s %s\n", req.Method, req.RequestURI)
	service.Handler.ServeHTTP(w, req)
}

func httpEndpoint() {
	var handler http.Handler = router()
	handler = loggingHandler{Handler: handler}
	// Allow CORS+http auth (so the api can be placed behind http auth)
	corsHandler := CORSHandler{Handler: handler}
	corsHandler.SupportsCredentials = true
	corsHandler.AllowHeaders = func(headers []string) bool {
		for _, header := range headers {
			if header != "accept" && header != "authorization" {
				return false
			}
		}
		return true
	}
	http.Handle("/", corsHandler)
	addr := ":8723"
	log.Println("Listening on " + addr)
	err := http.ListenAndServe(addr, nil)
	if err != nil {
		log.Fatalln(err)
	}
}

func recordEvents() {
	for ev := range services.Subscriber.Subscribe(pubsub.All()) {
		// record latest event per device to store
		device := services.Config.LookupDeviceName(ev)
		if device != "" {
			key := "doormon/state/devices/" + device
			services.Stor.Set(key, ev.String())
		}
	}
}

// Run the service
func (service *Service) Run() error {
	go recordEvents()
	httpEndpoint()
	return nil
}
