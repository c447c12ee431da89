package handler

import (
	"net/http"

	"github.com/mlorentedev/correcteur/internal/metrics"
	"github.com/mlorentedev/correcteur/internal/upstream"
)

type upstreamStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Upstream upstreamStatus `json:"upstream"`
}

// Health reports liveness and whether the upstream is usable. It never
// calls the upstream.
func Health(c upstream.Completer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := upstreamStatus{Name: c.Name(), Available: c.Available()}
		if s.Available {
			metrics.UpstreamAvailable.Set(1)
		} else {
			metrics.UpstreamAvailable.Set(0)
			s.Reason = unavailableReason(c)
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "ok",
			Upstream: s,
		})
	}
}

func unavailableReason(c upstream.Completer) string {
	switch c.(type) {
	case *upstream.Anthropic:
		return "no API key"
	default:
		return "unavailable"
	}
}
