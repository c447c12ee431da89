package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlorentedev/correcteur/internal/handler"
	"github.com/mlorentedev/correcteur/internal/middleware"
	"github.com/mlorentedev/correcteur/internal/upstream"
)

// SetupMux wires handlers with the full middleware chain. Operational
// endpoints answer GET only; every other method and path is the relay itself.
func SetupMux(c upstream.Completer, maxTextLength int, requestTimeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Health(c))
	mux.HandleFunc("GET /api/modes", handler.Modes())
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("/", handler.Correct(c, maxTextLength))

	return middleware.Chain(mux, requestTimeout)
}
