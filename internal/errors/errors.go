// Package errors provides centralized error handling for relcut.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application, and the StageError type that tags a failure with
// the session stage it happened in. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrInvalidBranch indicates a branch name outside the release naming policy.
	ErrInvalidBranch = errors.New("invalid release branch name")

	// ErrInvalidVersion indicates a string that does not parse as a release version.
	ErrInvalidVersion = errors.New("invalid release version")

	// ErrInvalidBuildID indicates a build identifier that does not match the build grammar.
	ErrInvalidBuildID = errors.New("invalid build identifier")

	// ErrConflictingFlags indicates that mutually exclusive flags were specified.
	ErrConflictingFlags = errors.New("conflicting flags specified")

	// ErrInteractiveRequired indicates that a confirmation prompt is needed
	// but stdin is not a terminal and --yes was not given.
	ErrInteractiveRequired = errors.New("interactive prompt required")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalid indicates an invalid configuration value.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrMissingRequiredTools indicates that required tools are not on PATH.
	ErrMissingRequiredTools = errors.New("required tools are missing")

	// ErrMissingCredentials indicates that a credential needed for a real run is unset.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrStorageUnreachable indicates the release bucket could not be accessed.
	ErrStorageUnreachable = errors.New("storage bucket unreachable")

	// ErrBranchNotFound indicates the specified branch does not exist locally or remotely.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrOfficialOnMaster indicates an official release was requested on master.
	ErrOfficialOnMaster = errors.New("official releases cannot be cut from master")

	// ErrOfficialOnNewBranch indicates an official release was requested while
	// creating the release branch.
	ErrOfficialOnNewBranch = errors.New("official releases cannot be cut on a new branch")

	// ErrBuildBranchMismatch indicates the build candidate was built from another branch.
	ErrBuildBranchMismatch = errors.New("build candidate does not match branch")

	// ErrNoBuildCandidate indicates the build-status source returned no usable build.
	ErrNoBuildCandidate = errors.New("no build candidate found")

	// ErrTagExists indicates the release tag is already present in the tree.
	ErrTagExists = errors.New("tag already exists")

	// ErrTagNotOnRemote indicates the release tag has not been pushed to the hosting remote.
	ErrTagNotOnRemote = errors.New("tag not found on remote")

	// ErrGitOperation indicates that a git command failed during execution.
	ErrGitOperation = errors.New("git operation failed")

	// ErrPushRejected indicates the remote rejected a push as non-fast-forward.
	ErrPushRejected = errors.New("push rejected by remote")

	// ErrPushAuth indicates the remote refused the push credentials.
	ErrPushAuth = errors.New("push authentication failed")

	// ErrRemoteUnreachable indicates the remote could not be contacted.
	ErrRemoteUnreachable = errors.New("remote unreachable")

	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrGitHubOperation indicates that a GitHub API call failed.
	ErrGitHubOperation = errors.New("github operation failed")

	// ErrDraftNotDeleted indicates a draft release entry survived deletion.
	ErrDraftNotDeleted = errors.New("draft release still present after delete")

	// ErrCommandFailed indicates that a command execution failed.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandNotConfigured indicates that a fake command was not configured in tests.
	ErrCommandNotConfigured = errors.New("command not configured")

	// ErrBuildFailed indicates the build toolchain exited unsuccessfully.
	ErrBuildFailed = errors.New("build failed")

	// ErrBuildOutputMissing indicates the build produced no output directory.
	ErrBuildOutputMissing = errors.New("build output missing")

	// ErrPublishGateClosed indicates publish was attempted before every label built.
	ErrPublishGateClosed = errors.New("publish gate closed")

	// ErrStorageOperation indicates an object storage call failed.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrRegistryOperation indicates a container registry call failed.
	ErrRegistryOperation = errors.New("registry operation failed")

	// ErrMailFailed indicates the announcement could not be submitted.
	ErrMailFailed = errors.New("mail submission failed")

	// ErrBuildStatusFailed indicates the build-status source could not be queried.
	ErrBuildStatusFailed = errors.New("build status query failed")

	// ErrOperationCanceled indicates the operator declined a confirmation prompt.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrMenuCanceled indicates that the user canceled a prompt with q or Esc.
	ErrMenuCanceled = errors.New("menu canceled by user")
)
