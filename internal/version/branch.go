package version

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mrz1836/relcut/internal/constants"
	relerrors "github.com/mrz1836/relcut/internal/errors"
)

//nolint:gochecknoglobals // compiled once
var releaseBranchRe = regexp.MustCompile(`^release-(0|[1-9]\d*)\.(0|[1-9]\d*)(?:\.(0|[1-9]\d*))?$`)

// Branch is a validated release branch name: master or
// release-<major>.<minor>(.<patch>)?.
type Branch struct {
	name     string
	major    uint64
	minor    uint64
	patch    uint64
	hasPatch bool
}

// Master is the development branch.
//
//nolint:gochecknoglobals // immutable value
var Master = Branch{name: constants.MasterBranch}

// ParseBranch validates name against the release naming policy.
func ParseBranch(name string) (Branch, error) {
	if name == constants.MasterBranch {
		return Master, nil
	}

	m := releaseBranchRe.FindStringSubmatch(name)
	if m == nil {
		return Branch{}, fmt.Errorf("%q: %w", name, relerrors.ErrInvalidBranch)
	}

	b := Branch{name: name}
	b.major, _ = strconv.ParseUint(m[1], 10, 64)
	b.minor, _ = strconv.ParseUint(m[2], 10, 64)
	if m[3] != "" {
		b.patch, _ = strconv.ParseUint(m[3], 10, 64)
		b.hasPatch = true
	}
	return b, nil
}

// MustParseBranch is like ParseBranch but panics on error. Intended for tests and constants.
func MustParseBranch(name string) Branch {
	b, err := ParseBranch(name)
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the branch name.
func (b Branch) String() string { return b.name }

// IsZero reports whether b is the zero value (no branch).
func (b Branch) IsZero() bool { return b.name == "" }

// IsMaster reports whether b is the development branch.
func (b Branch) IsMaster() bool { return b.name == constants.MasterBranch }

// IsRelease reports whether b is a release-* branch.
func (b Branch) IsRelease() bool { return !b.IsZero() && !b.IsMaster() }

// HasPatch reports whether b has three version components.
func (b Branch) HasPatch() bool { return b.hasPatch }

// Major returns the major component of a release branch.
func (b Branch) Major() uint64 { return b.major }

// Minor returns the minor component of a release branch.
func (b Branch) Minor() uint64 { return b.minor }

// Patch returns the patch component of a three-component release branch.
func (b Branch) Patch() uint64 { return b.patch }

// Ancestor returns the branch a new b is cut from: master for
// release-X.Y, release-X.Y for release-X.Y.Z. master has no ancestor.
func (b Branch) Ancestor() (Branch, bool) {
	switch {
	case b.IsZero(), b.IsMaster():
		return Branch{}, false
	case b.hasPatch:
		return Branch{
			name:  fmt.Sprintf("%s%d.%d", constants.ReleaseBranchPrefix, b.major, b.minor),
			major: b.major,
			minor: b.minor,
		}, true
	default:
		return Master, true
	}
}

// Matches reports whether v was produced on branch b: a two-component
// branch compares major.minor, a three-component branch also compares patch.
// Every version matches master.
func (b Branch) Matches(v SemVer) bool {
	if !b.IsRelease() {
		return true
	}
	if v.Major() != b.major || v.Minor() != b.minor {
		return false
	}
	return !b.hasPatch || v.Patch() == b.patch
}
