package llm

import (
	"context"
	"fmt"
)

// Generator is a pluggable language-model backend, treated as an opaque
// text-in/text-out function.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Available(ctx context.Context) bool
}

// GenerationError reports an unreachable backend or a structurally
// invalid response.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("script generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func generationErr(reason string, err error) *GenerationError {
	return &GenerationError{Reason: reason, Err: err}
}
