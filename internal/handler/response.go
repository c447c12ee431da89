package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mlorentedev/correcteur/internal/relayerr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeFailure maps a relay error to its status code and caller-facing message.
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, relayerr.KindOf(err).HTTPStatus(), relayerr.Message(err))
}
