package api

import (
	"net/http"
	"strings"
)

// CORSHandler wraps a handler allowing cross origin requests, so the
// dashboard can be served from elsewhere than the api.
type CORSHandler struct {
	Handler             http.Handler
	SupportsCredentials bool
	AllowHeaders        func(headers []string) bool
}

func (self CORSHandler) allowed(r *http.Request) bool {
	headers := r.Header.Get("Access-Control-Request-Headers")
	if headers == "" || self.AllowHeaders == nil {
		return true
	}
	var requested []string
	for _, header := range strings.Split(headers, ",") {
		requested = append(requested, strings.ToLower(strings.TrimSpace(header)))
	}
	return self.AllowHeaders(requested)
}

func (self CORSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		if self.SupportsCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
	}

	if r.Method == "OPTIONS" {
		if !self.allowed(r) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if headers := r.Header.Get("Access-Control-Request-Headers"); headers != "" {
			w.Header().Set("Access-Control-Allow-Headers", headers)
		}
		return
	}

	self.Handler.ServeHTTP(w, r)
}
