package interfaces

import (
	"context"
)

// Generator turns a prompt into unstructured completion text.
type Generator interface {
	// Generate runs one completion. An empty model selects the provider default.
	Generate(ctx context.Context, model, prompt string) (string, error)

	// Name identifies the backing provider in logs.
	Name() string
}
