package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when the model produced no usable text.
var ErrEmptyCompletion = errors.New("llm: empty completion from model")

// Client generates completions. Implementations return the raw model text
// untouched; tolerant parsing is the caller's concern.
type Client interface {
	Name() string
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}
