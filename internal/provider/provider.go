// Package provider holds the answer providers the chat service consults for
// each query. Every implementation satisfies AnswerProvider, so the stub can
// be swapped for a model-backed provider through configuration alone.
package provider

import (
	"context"
	"errors"
	"fmt"

	"lexi-backend/internal/model"
)

// ErrProviderFailure wraps every error an answer provider reports. Timeouts,
// malformed replies and transport errors are not told apart.
var ErrProviderFailure = errors.New("answer provider failure")

type AnswerProvider interface {
	AnswerQuery(ctx context.Context, query string) (*model.Answer, error)
}

// Func adapts a plain function to AnswerProvider.
type Func func(ctx context.Context, query string) (*model.Answer, error)

func (f Func) AnswerQuery(ctx context.Context, query string) (*model.Answer, error) {
	return f(ctx, query)
}

func failure(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrProviderFailure, fmt.Sprintf(format, args...))
}

func wrapFailure(err error) error {
	if err == nil || errors.Is(err, ErrProviderFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrProviderFailure, err)
}
