package git

import (
	"context"
	"errors"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// ErrGitOperation is re-exported from internal/errors for convenience.
// Use errors.Is(err, ErrGitOperation) to check for git operation failures.
var ErrGitOperation = relerrors.ErrGitOperation

// ErrNotGitRepo is re-exported from internal/errors for convenience.
// Returned when the path is not a git repository.
var ErrNotGitRepo = relerrors.ErrNotGitRepo

// contextErr returns err when it is a context cancellation or deadline.
func contextErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
