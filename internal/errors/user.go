package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the mapping of sentinel errors to their user-facing messages.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping
var errorInfoEntries = []errorEntry{
	// ===================
	// Input
	// ===================
	{
		err: ErrInvalidBranch,
		info: ErrorInfo{
			Message: "The branch name does not follow the release naming policy.",
			Action:  "Use 'master' or 'release-<major>.<minor>[.<patch>]'.",
		},
	},
	{
		err: ErrInvalidBuildID,
		info: ErrorInfo{
			Message: "The build identifier is not of the form v<major>.<minor>.<patch>[-<pre>]-<n>-g<hash>.",
			Action:  "Pass a build identifier copied from the build status page to --buildversion.",
		},
	},
	{
		err: ErrConflictingFlags,
		info: ErrorInfo{
			Message: "The requested flags cannot be combined.",
			Action:  "Check the flag combination with 'relcut --help'.",
		},
	},
	{
		err: ErrInteractiveRequired,
		info: ErrorInfo{
			Message: "A confirmation is required but no terminal is attached.",
			Action:  "Re-run with --yes to confirm every phase up front.",
		},
	},

	// ===================
	// Prerequisites
	// ===================
	{
		err: ErrMissingRequiredTools,
		info: ErrorInfo{
			Message: "Required tools are missing from PATH.",
			Action:  "Install the listed tools and re-run.",
		},
	},
	{
		err: ErrMissingCredentials,
		info: ErrorInfo{
			Message: "Credentials needed for a real run are not set.",
			Action:  "Export the token named in hosting.token_env, or run without --nomock.",
		},
	},
	{
		err: ErrStorageUnreachable,
		info: ErrorInfo{
			Message: "The release bucket could not be reached.",
			Action:  "Check your AWS credentials and the storage.bucket setting.",
		},
	},

	// ===================
	// Resolution
	// ===================
	{
		err: ErrOfficialOnMaster,
		info: ErrorInfo{
			Message: "Official releases are only cut from release branches.",
			Action:  "Drop --official, or pass a release-<major>.<minor> branch.",
		},
	},
	{
		err: ErrOfficialOnNewBranch,
		info: ErrorInfo{
			Message: "The branch does not exist yet, so there is nothing to freeze.",
			Action:  "Create the branch with a beta run first, then cut the official release.",
		},
	},
	{
		err: ErrBuildBranchMismatch,
		info: ErrorInfo{
			Message: "The build candidate was produced from a different branch.",
			Action:  "Pick a build from the branch being released.",
		},
	},
	{
		err: ErrNoBuildCandidate,
		info: ErrorInfo{
			Message: "No green build was found for the branch.",
			Action:  "Wait for a passing build or pass one explicitly with --buildversion.",
		},
	},
	{
		err: ErrBranchNotFound,
		info: ErrorInfo{
			Message: "The parent branch for the new release branch does not exist.",
			Action:  "Create the release-<major>.<minor> branch before cutting a patch branch.",
		},
	},

	// ===================
	// Prepare / Build
	// ===================
	{
		err: ErrTagExists,
		info: ErrorInfo{
			Message: "The release tag already exists in the tree.",
			Action:  "Inspect the tree; if this is a resumed mock run, re-run with --noclean.",
		},
	},
	{
		err: ErrBuildFailed,
		info: ErrorInfo{
			Message: "The build toolchain failed.",
			Action:  "Review the build output in the transcript; earlier outputs were kept, use --noclean to reuse them.",
		},
	},

	// ===================
	// Push
	// ===================
	{
		err: ErrPushRejected,
		info: ErrorInfo{
			Message: "The remote rejected the push because it has commits the tree lacks.",
			Action:  "Someone pushed to the branch during the session; re-run to start from the new head.",
		},
	},
	{
		err: ErrPushAuth,
		info: ErrorInfo{
			Message: "The remote refused the push credentials.",
			Action:  "Check your git credentials for repo.remote.",
		},
	},
	{
		err: ErrRemoteUnreachable,
		info: ErrorInfo{
			Message: "The remote could not be reached.",
			Action:  "Check the network and the repo.remote setting, then re-run with --noclean.",
		},
	},

	// ===================
	// Publish
	// ===================
	{
		err: ErrTagNotOnRemote,
		info: ErrorInfo{
			Message: "The release tag is not on the hosting remote yet.",
			Action:  "Push the tags first, then re-run the hosting publish step.",
		},
	},
	{
		err: ErrDraftNotDeleted,
		info: ErrorInfo{
			Message: "The draft release entry could not be removed.",
			Action:  "Delete the draft on the hosting site manually and re-run.",
		},
	},
	{
		err: ErrStorageOperation,
		info: ErrorInfo{
			Message: "Uploading artifacts to storage failed; some labels may already be published.",
			Action:  "Check the transcript for the labels that completed before re-running.",
		},
	},
	{
		err: ErrRegistryOperation,
		info: ErrorInfo{
			Message: "Publishing images to the registry failed; some labels may already be published.",
			Action:  "Check registry credentials and the transcript before re-running.",
		},
	},
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "The operation was canceled at a confirmation prompt.",
			Action:  "",
		},
	},
	{
		err: ErrMailFailed,
		info: ErrorInfo{
			Message: "The release was published but the announcement could not be sent.",
			Action:  "Send the announcement manually from the transcript.",
		},
	},
}

// getErrorInfo looks up the ErrorInfo for a given error.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}
	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
