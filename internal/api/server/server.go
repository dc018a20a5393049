package server

import (
	"net/http"
)

// New creates a new HTTP server with the given address and handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: handler,
	}
}
