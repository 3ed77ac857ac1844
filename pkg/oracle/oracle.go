// Package oracle wraps the external LLM used for session compression and
// aesthetic critique.
package oracle

import (
	"context"
	"errors"
)

// Oracle errors. Timeouts are folded into ErrTimeout so pipelines can choose
// their degradation path without inspecting transport details.
var (
	ErrUnavailable = errors.New("oracle unavailable")
	ErrTimeout     = errors.New("oracle timed out")
)

// Oracle produces a completion for a prompt. Implementations must honor the
// context deadline.
type Oracle interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

// CompleteFunc adapts a function to the Oracle interface. Used by tests and
// by the development mock.
type CompleteFunc func(ctx context.Context, prompt string, temperature float32) (string, error)

// Complete implements Oracle.
func (f CompleteFunc) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return f(ctx, prompt, temperature)
}
