package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server hosting the websocket endpoint. Only the header
// read is bounded; connections stay open for the lifetime of a client, so no
// read/idle timeouts here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
