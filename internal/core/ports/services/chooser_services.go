package services

import "context"

// Option is one entry offered by a Chooser.
type Option struct {
	Label       string
	Description string
}

// Chooser asks the user to make decisions during reconciliation.
// Implementations block until the user answers.
type Chooser interface {
	Select(ctx context.Context, prompt string, options []Option) (int, error)
	Confirm(ctx context.Context, prompt string, defaultValue bool) (bool, error)
	TextInput(ctx context.Context, prompt string, defaultValue string) (string, error)
}
