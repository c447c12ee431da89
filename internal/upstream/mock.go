package upstream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mlorentedev/correcteur/internal/prompt"
	"github.com/mlorentedev/correcteur/internal/relayerr"
)

// Mock returns simulated corrections with a configurable delay.
// Used for development and testing without an API key.
type Mock struct {
	Delay time.Duration
}

func (m *Mock) Name() string { return "Mock" }

// Complete capitalizes the first letter of the user's text and trims it.
func (m *Mock) Complete(ctx context.Context, message string) (string, error) {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return "", relayerr.New(relayerr.UpstreamUnavailable, errorMessage, fmt.Errorf("mock: %w", ctx.Err()))
		}
	}

	out := strings.TrimSpace(prompt.InputOf(message))
	if len(out) > 0 && out[0] >= 'a' && out[0] <= 'z' {
		out = strings.ToUpper(out[:1]) + out[1:]
	}
	return out, nil
}

func (m *Mock) Available() bool { return true }
