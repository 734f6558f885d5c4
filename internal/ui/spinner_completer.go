package ui

import (
	"context"
	"io"

	"github.com/thomas-vilte/promptcache/internal/models"
	"github.com/thomas-vilte/promptcache/internal/ports"
)

var _ ports.Completer = (*SpinnerCompleter)(nil)

// SpinnerCompleter shows a spinner on w while the wrapped Completer works.
type SpinnerCompleter struct {
	next    ports.Completer
	w       io.Writer
	message string
}

func NewSpinnerCompleter(next ports.Completer, w io.Writer, message string) *SpinnerCompleter {
	return &SpinnerCompleter{next: next, w: w, message: message}
}

func (s *SpinnerCompleter) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResult, error) {
	var result *models.CompletionResult
	err := WithSpinner(s.w, s.message, func() error {
		var err error
		result, err = s.next.Complete(ctx, req)
		return err
	})
	return result, err
}

func (s *SpinnerCompleter) GetProviderName() string {
	return s.next.GetProviderName()
}
