package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// ErrMenuCanceled is returned when the operator aborts a prompt with Esc or Ctrl+C.
var ErrMenuCanceled = relerrors.ErrMenuCanceled

// Prompter asks yes/no questions through a huh confirm form.
type Prompter struct {
	// AutoYes answers every question with yes without prompting.
	AutoYes bool
	// Accessible renders prompts in huh's screen-reader mode.
	Accessible bool
	// isTerminal reports whether stdin is interactive.
	isTerminal func() bool
	// ask runs one prompt; replaced in tests.
	ask func(ctx context.Context, question string) (bool, error)
}

// NewPrompter creates a Prompter. The ACCESSIBLE environment variable enables accessible mode.
func NewPrompter(autoYes bool) *Prompter {
	_, accessible := os.LookupEnv("ACCESSIBLE")
	p := &Prompter{
		AutoYes:    autoYes,
		Accessible: accessible,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
	p.ask = p.runForm
	return p
}

// WithTerminal replaces the stdin terminal check.
func (p *Prompter) WithTerminal(isTerminal func() bool) *Prompter {
	p.isTerminal = isTerminal
	return p
}

// RequireInteractive fails when prompts would be needed but stdin is not a terminal.
func (p *Prompter) RequireInteractive() error {
	if p.AutoYes || p.isTerminal() {
		return nil
	}
	return fmt.Errorf("%w: stdin is not a terminal; pass --yes to pre-approve", relerrors.ErrInteractiveRequired)
}

// Confirm asks question and reports the answer. Aborting the prompt is an
// ErrOperationCanceled.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if p.AutoYes {
		return true, nil
	}
	if err := p.RequireInteractive(); err != nil {
		return false, err
	}
	ok, err := p.ask(ctx, question)
	if errors.Is(err, ErrMenuCanceled) {
		return false, fmt.Errorf("%s: %w", question, relerrors.ErrOperationCanceled)
	}
	return ok, err
}

func (p *Prompter) runForm(ctx context.Context, question string) (bool, error) {
	CheckNoColor()
	confirmed := false
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithAccessible(p.Accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, ErrMenuCanceled
		}
		return false, fmt.Errorf("confirm prompt failed: %w", err)
	}
	return confirmed, nil
}

// Theme returns the huh theme built on the relcut palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorPrimary)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)
	return t
}
