package tui

// ActionableError pairs a message with a next step for the operator.
//
//	err := NewActionableError("mail command not found", "Set mail.command in ~/.relcut/config.yaml")
//	out.Error(err)
//	// ✗ mail command not found
//	// ▸ Try: Set mail.command in ~/.relcut/config.yaml
type ActionableError struct {
	Message    string
	Suggestion string
	// Context is appended to Message in parentheses when set.
	Context string
}

// NewActionableError creates an ActionableError.
func NewActionableError(msg, suggestion string) *ActionableError {
	return &ActionableError{Message: msg, Suggestion: suggestion}
}

// Error implements the error interface.
func (e *ActionableError) Error() string {
	if e.Context != "" {
		return e.Message + " (" + e.Context + ")"
	}
	return e.Message
}

// WithContext sets Context and returns e.
func (e *ActionableError) WithContext(ctx string) *ActionableError {
	e.Context = ctx
	return e
}
