package services

import (
	"context"
	"errors"

	"classroom/models"
)

// ErrEmptyCompletion is returned when the service answers without any choice.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Completer sends a prompt to a text-completion service. It makes a single
// attempt and reports any failure to the caller.
type Completer interface {
	Complete(ctx context.Context, turns []models.Turn) (string, error)
}
