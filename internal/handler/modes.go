package handler

import (
	"net/http"

	"github.com/mlorentedev/correcteur/internal/prompt"
)

// Modes lists the supported rewriting modes.
func Modes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, prompt.Modes())
	}
}
