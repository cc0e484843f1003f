package tui

import (
	"errors"
	"fmt"
	"io"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// Output writes styled status lines.
type Output struct {
	w      io.Writer
	styles *OutputStyles
}

// NewOutput creates an Output writing to w.
func NewOutput(w io.Writer) *Output {
	CheckNoColor()
	return &Output{w: w, styles: NewOutputStyles()}
}

// Writer returns the underlying writer.
func (o *Output) Writer() io.Writer { return o.w }

// Success prints a success message.
func (o *Output) Success(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Success.Render("✓ "+msg))
}

// Warning prints a warning message.
func (o *Output) Warning(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Warning.Render("⚠ "+msg))
}

// Info prints an informational message.
func (o *Output) Info(msg string) {
	_, _ = fmt.Fprintln(o.w, o.styles.Info.Render(msg))
}

// Error prints err with its user-facing message and suggested action.
func (o *Output) Error(err error) {
	msg, action := relerrors.Actionable(err)
	var ae *ActionableError
	if errors.As(err, &ae) {
		msg, action = ae.Error(), ae.Suggestion
	}
	_, _ = fmt.Fprintln(o.w, o.styles.Error.Render("✗ "+msg))
	if detail := err.Error(); detail != msg {
		_, _ = fmt.Fprintln(o.w, o.styles.Dim.Render("  "+detail))
	}
	if action != "" {
		_, _ = fmt.Fprintln(o.w, o.styles.Info.Render("▸ Try: "+action))
	}
}
