package ai

import (
	"context"

	"github.com/thomas-vilte/aicommits/internal/models"
)

// Completer sends one prompt to a completion service and returns the raw candidates.
// Implementations make exactly one round trip and never retry.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) ([]string, error)
}
