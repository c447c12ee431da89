package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/mlorentedev/correcteur/internal/metrics"
	"github.com/mlorentedev/correcteur/internal/middleware"
	"github.com/mlorentedev/correcteur/internal/prompt"
	"github.com/mlorentedev/correcteur/internal/relayerr"
	"github.com/mlorentedev/correcteur/internal/upstream"
)

// DefaultMaxTextLength, in characters, applies when Correct is given a non-positive limit.
const DefaultMaxTextLength = 10000

type correctRequest struct {
	Text    string `json:"text"`
	Mode    string `json:"mode,omitempty"`
	Tone    string `json:"tone,omitempty"`
	Context string `json:"context,omitempty"`
}

type correctResponse struct {
	CorrectedText string `json:"correctedText"`
}

// Correct relays one rewriting request to the upstream completer.
func Correct(c upstream.Completer, maxTextLength int) http.HandlerFunc {
	if maxTextLength <= 0 {
		maxTextLength = DefaultMaxTextLength
	}

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		req, err := decodeCorrectRequest(r, maxTextLength)
		if err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "Corps de requête trop volumineux")
				return
			}
			writeFailure(w, err)
			return
		}

		mode := prompt.ParseMode(req.Mode)
		message := prompt.Message(prompt.Build(req.Mode, req.Tone, req.Context), req.Text)
		metrics.InputChars.Observe(float64(utf8.RuneCountInString(req.Text)))

		start := time.Now()
		corrected, err := c.Complete(r.Context(), message)
		metrics.UpstreamDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

		if err != nil {
			kind := relayerr.KindOf(err)
			metrics.UpstreamErrors.WithLabelValues(kind.String()).Inc()
			slog.ErrorContext(r.Context(), "correct failed",
				"request_id", middleware.RequestIDFromContext(r.Context()),
				"upstream", c.Name(),
				"mode", mode,
				"kind", kind.String(),
				"error", err,
			)
			writeFailure(w, err)
			return
		}

		writeJSON(w, http.StatusOK, correctResponse{CorrectedText: corrected})
	}
}

func decodeCorrectRequest(r *http.Request, maxTextLength int) (correctRequest, error) {
	var req correctRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return req, err
		}
		return req, relayerr.New(relayerr.InvalidInput, "Corps JSON invalide", err)
	}

	if req.Text == "" {
		return req, relayerr.New(relayerr.InvalidInput, "Texte manquant", nil)
	}
	if n := utf8.RuneCountInString(req.Text); n > maxTextLength {
		return req, relayerr.New(relayerr.InvalidInput,
			fmt.Sprintf("Texte trop long : %d caractères (max %d)", n, maxTextLength), nil)
	}
	return req, nil
}
