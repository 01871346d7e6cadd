package viewmodel

import (
	"context"

	"unimeal-backend-go/internal/apperrors"
)

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

var (
	// AlwaysConfirm approves every prompt.
	AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
	// NeverConfirm declines every prompt.
	NeverConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
)

// Clipboard receives exported text.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

func confirm(ctx context.Context, c Confirmer, prompt string) error {
	if c == nil {
		return apperrors.ErrConfirmationRequired
	}
	ok, err := c.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrConfirmationRequired
	}
	return nil
}
