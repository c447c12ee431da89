package upstream

import "context"

// Completer sends one instruction message to a text-generation backend and
// returns the first text segment of the reply.
type Completer interface {
	Name() string
	Complete(ctx context.Context, message string) (string, error)
	Available() bool
}

// errorMessage is what callers see for any upstream failure.
const errorMessage = "Erreur API Claude"
