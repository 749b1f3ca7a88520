// Package prompt implements the interactive chooser on a terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/manifoldco/promptui"
)

// pageSize is how many options a select shows before scrolling.
const pageSize = 12

// Terminal asks questions on the controlling terminal.
type Terminal struct {
	stdin  io.ReadCloser
	stdout io.WriteCloser
}

var _ portssvc.Chooser = (*Terminal)(nil)

// TerminalOption configures a Terminal
type TerminalOption func(*Terminal)

// WithIO replaces stdin and stdout.
func WithIO(stdin io.ReadCloser, stdout io.WriteCloser) TerminalOption {
	return func(t *Terminal) {
		t.stdin = stdin
		t.stdout = stdout
	}
}

// NewTerminal returns a chooser bound to the process terminal unless overridden.
func NewTerminal(options ...TerminalOption) *Terminal {
	t := &Terminal{}
	for _, option := range options {
		option(t)
	}
	return t
}

var optionTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}",
	Active:   "▸ {{ .Label | cyan }}{{ if .Description }} ({{ .Description | faint }}){{ end }}",
	Inactive: "  {{ .Label }}{{ if .Description }} ({{ .Description | faint }}){{ end }}",
	Selected: "✔ {{ .Label | green }}",
}

func (t *Terminal) Select(ctx context.Context, prompt string, options []portssvc.Option) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(options) == 0 {
		return 0, errors.New("select called without options")
	}
	sel := promptui.Select{
		Label:     prompt,
		Items:     options,
		Templates: optionTemplates,
		Size:      pageSize,
		Stdin:     t.stdin,
		Stdout:    t.stdout,
	}
	idx, _, err := sel.Run()
	if err != nil {
		return 0, fmt.Errorf("select %q: %w", prompt, err)
	}
	return idx, nil
}

// Confirm treats an explicit "no" as false and only fails on interrupt or EOF.
func (t *Terminal) Confirm(ctx context.Context, prompt string, defaultValue bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	def := "n"
	if defaultValue {
		def = "y"
	}
	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
		Default:   def,
		Stdin:     t.stdin,
		Stdout:    t.stdout,
	}
	_, err := p.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, fmt.Errorf("confirm %q: %w", prompt, err)
	}
}

func (t *Terminal) TextInput(ctx context.Context, prompt string, defaultValue string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := promptui.Prompt{
		Label:     prompt,
		Default:   defaultValue,
		AllowEdit: true,
		Stdin:     t.stdin,
		Stdout:    t.stdout,
	}
	value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("input %q: %w", prompt, err)
	}
	return value, nil
}
