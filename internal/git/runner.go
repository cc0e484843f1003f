// Package git provides the git operations a release session performs on
// its workspace tree.
package git

import "context"

// Runner defines the mutating git operations of a release session.
// All operations run in the runner's working directory and use context for cancellation.
type Runner interface {
	// WorkDir returns the tree the runner operates on.
	WorkDir() string

	// Checkout switches to an existing local branch, creating a tracking
	// branch from origin when only the remote one exists.
	Checkout(ctx context.Context, branch string) error

	// CreateBranch creates branch from base and checks it out.
	CreateBranch(ctx context.Context, branch, base string) error

	// Add stages files for commit. If paths is empty, stages all changes.
	Add(ctx context.Context, paths []string) error

	// Commit creates a commit with the given message.
	Commit(ctx context.Context, message string) error

	// IsDirty reports whether the working tree has uncommitted changes.
	IsDirty(ctx context.Context) (bool, error)

	// HeadCommit returns the full hash of HEAD.
	HeadCommit(ctx context.Context) (string, error)

	// Tag creates an annotated tag on HEAD.
	Tag(ctx context.Context, name, message string) error

	// Push pushes refs to remote. In mock mode it runs with --dry-run.
	Push(ctx context.Context, remote string, refs ...string) error
}
