package middleware

import (
	"net/http"
	"time"
)

const (
	maxBodyBytes = 64 * 1024

	// DefaultRequestTimeout applies when Chain is given a non-positive timeout.
	DefaultRequestTimeout = 65 * time.Second
)

// Chain wraps the handler with the full middleware stack.
// Order: CORS → RequestID → Logging → Metrics → MaxBytes → Timeout → mux
// requestTimeout must outlast the upstream client timeout, otherwise a slow
// upstream surfaces as a 503 from the TimeoutHandler instead of a relay error.
func Chain(handler http.Handler, requestTimeout time.Duration) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	h := handler
	h = http.TimeoutHandler(h, requestTimeout, `{"error":"request timeout"}`)
	h = MaxBytes(maxBodyBytes)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(h)
	return h
}
