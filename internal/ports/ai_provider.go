package ports

import (
	"context"

	"github.com/thomas-vilte/promptcache/internal/models"
)

// Completer sends a single completion request to a hosted model.
//
// Failed requests return an *errors.AppError whose Reason tells auth, network
// and rate-limit failures apart.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error)

	// GetProviderName returns the name of the provider (e.g.: "anthropic")
	GetProviderName() string
}
