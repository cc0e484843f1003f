package git

import (
	"strings"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// PushFailure classifies why a push was refused.
type PushFailure int

const (
	// PushFailureUnknown is any failure the patterns do not recognize.
	PushFailureUnknown PushFailure = iota
	// PushFailureAuth is a credential rejection.
	PushFailureAuth
	// PushFailureNetwork is an unreachable remote.
	PushFailureNetwork
	// PushFailureNonFastForward is a rejection because the remote moved.
	PushFailureNonFastForward
)

// String returns the name used in log fields.
func (f PushFailure) String() string {
	switch f {
	case PushFailureAuth:
		return "authentication"
	case PushFailureNetwork:
		return "network"
	case PushFailureNonFastForward:
		return "non_fast_forward"
	case PushFailureUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// Sentinel returns the error a push failure of this class wraps, or nil.
func (f PushFailure) Sentinel() error {
	switch f {
	case PushFailureAuth:
		return relerrors.ErrPushAuth
	case PushFailureNetwork:
		return relerrors.ErrRemoteUnreachable
	case PushFailureNonFastForward:
		return relerrors.ErrPushRejected
	case PushFailureUnknown:
		return nil
	default:
		return nil
	}
}

// patternMatcher reports whether lowercased text contains any pattern.
type patternMatcher []string

func (m patternMatcher) matches(lower string) bool {
	for _, p := range m {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

//nolint:gochecknoglobals // immutable pattern tables
var (
	authPatterns = patternMatcher{
		"authentication failed",
		"could not read username",
		"permission denied",
		"invalid username or password",
		"access denied",
		"authentication required",
		"bad credentials",
		"invalid token",
		"token expired",
	}

	networkPatterns = patternMatcher{
		"could not resolve host",
		"connection refused",
		"network is unreachable",
		"connection timed out",
		"operation timed out",
		"unable to access",
		"no route to host",
		"failed to connect",
	}

	// Checked after auth and network: git prints "failed to push some refs"
	// for every refused push.
	nonFastForwardPatterns = patternMatcher{
		"non-fast-forward",
		"updates were rejected",
		"fetch first",
		"tip of your current branch is behind",
		"rejected because the remote contains work",
	}
)

// ClassifyPushFailure inspects the stderr of a failed push.
func ClassifyPushFailure(stderr string) PushFailure {
	lower := strings.ToLower(stderr)
	switch {
	case authPatterns.matches(lower):
		return PushFailureAuth
	case networkPatterns.matches(lower):
		return PushFailureNetwork
	case nonFastForwardPatterns.matches(lower):
		return PushFailureNonFastForward
	default:
		return PushFailureUnknown
	}
}
