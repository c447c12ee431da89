package middleware

import (
	"net/http"
	"strconv"

	"github.com/mlorentedev/correcteur/internal/metrics"
)

// fixedRoutes are reported under their own path when fetched with GET;
// everything else is the catch-all relay route.
var fixedRoutes = map[string]bool{
	"/healthz":   true,
	"/api/modes": true,
	"/metrics":   true,
}

// Metrics records request count by method, route, and status code.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		metrics.RequestsTotal.WithLabelValues(r.Method, routeLabel(r.Method, r.URL.Path), strconv.Itoa(sw.status)).Inc()
	})
}

func routeLabel(method, path string) string {
	if (method == http.MethodGet || method == http.MethodHead) && fixedRoutes[path] {
		return path
	}
	return "/"
}
