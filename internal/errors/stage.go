package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the session stage that produced it.
type Kind int

const (
	// KindUnknown is used for errors that never passed through a stage boundary.
	KindUnknown Kind = iota
	// KindValidation covers bad grammar or conflicting flags. No side effects happened.
	KindValidation
	// KindPrerequisite covers missing credentials, tools or bucket access. No side effects happened.
	KindPrerequisite
	// KindResolution covers impossible version or branch computation, before any tree mutation.
	KindResolution
	// KindPrepare covers checkout, stamp, commit and tag failures. The tree may be partially modified.
	KindPrepare
	// KindBuild covers build toolchain failures. Outputs of earlier labels are kept.
	KindBuild
	// KindPublish covers push and upload failures. Some tags or artifacts may already be public.
	KindPublish
	// KindAnnounce covers mail failures after a successful publish.
	KindAnnounce
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindPrerequisite:
		return "PrerequisiteError"
	case KindResolution:
		return "ResolutionError"
	case KindPrepare:
		return "PrepareError"
	case KindBuild:
		return "BuildError"
	case KindPublish:
		return "PublishError"
	case KindAnnounce:
		return "AnnounceError"
	case KindUnknown:
		return "Error"
	}
	return "Error"
}

// StageError tags an error with its Kind and the step that was acting.
type StageError struct {
	Kind Kind
	Step string
	Err  error
}

// NewStageError wraps err with a kind and acting step. Returns nil for a nil err.
// An err that already carries a StageError is returned unchanged so the
// innermost stage wins.
func NewStageError(kind Kind, step string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StageError
	if errors.As(err, &existing) {
		return err
	}
	return &StageError{Kind: kind, Step: step, Err: err}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s during %s: %v", e.Kind, e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind recorded on err, or KindUnknown.
func KindOf(err error) Kind {
	var e *StageError
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StepOf returns the acting step recorded on err, or "".
func StepOf(err error) string {
	var e *StageError
	if errors.As(err, &e) {
		return e.Step
	}
	return ""
}

// Validation is shorthand for NewStageError(KindValidation, step, err).
func Validation(step string, err error) error { return NewStageError(KindValidation, step, err) }

// Prerequisite is shorthand for NewStageError(KindPrerequisite, step, err).
func Prerequisite(step string, err error) error { return NewStageError(KindPrerequisite, step, err) }

// Resolution is shorthand for NewStageError(KindResolution, step, err).
func Resolution(step string, err error) error { return NewStageError(KindResolution, step, err) }

// Prepare is shorthand for NewStageError(KindPrepare, step, err).
func Prepare(step string, err error) error { return NewStageError(KindPrepare, step, err) }

// Build is shorthand for NewStageError(KindBuild, step, err).
func Build(step string, err error) error { return NewStageError(KindBuild, step, err) }

// Publish is shorthand for NewStageError(KindPublish, step, err).
func Publish(step string, err error) error { return NewStageError(KindPublish, step, err) }

// Announce is shorthand for NewStageError(KindAnnounce, step, err).
func Announce(step string, err error) error { return NewStageError(KindAnnounce, step, err) }
