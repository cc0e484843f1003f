package version

import (
	"fmt"
	"regexp"
	"strconv"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

//nolint:gochecknoglobals // compiled once
var buildIDRe = regexp.MustCompile(`^(v\d+\.\d+\.\d+(?:-[0-9A-Za-z]+(?:\.[0-9A-Za-z]+)*)?)-(\d+)-g([0-9a-f]{7,40})$`)

// BuildID is a build candidate identifier in git describe form:
// v<major>.<minor>.<patch>[-<pre>]-<n>-g<hash>, meaning n commits past the
// tag v<major>.<minor>.<patch>[-<pre>] at commit hash.
type BuildID struct {
	raw     string
	base    SemVer
	commits int
	hash    string
}

// ParseBuildID validates s against the build identifier grammar.
func ParseBuildID(s string) (BuildID, error) {
	m := buildIDRe.FindStringSubmatch(s)
	if m == nil {
		return BuildID{}, fmt.Errorf("%q: %w", s, relerrors.ErrInvalidBuildID)
	}

	base, err := ParseSemVer(m[1])
	if err != nil {
		return BuildID{}, fmt.Errorf("%q: %w: %w", s, relerrors.ErrInvalidBuildID, err)
	}
	commits, err := strconv.Atoi(m[2])
	if err != nil {
		return BuildID{}, fmt.Errorf("%q: %w: %w", s, relerrors.ErrInvalidBuildID, err)
	}

	return BuildID{raw: s, base: base, commits: commits, hash: m[3]}, nil
}

// MustParseBuildID is like ParseBuildID but panics on error.
func MustParseBuildID(s string) BuildID {
	b, err := ParseBuildID(s)
	if err != nil {
		panic(err)
	}
	return b
}

// String returns the identifier exactly as received.
func (b BuildID) String() string { return b.raw }

// IsZero reports whether b is the zero value.
func (b BuildID) IsZero() bool { return b.raw == "" }

// Base returns the last tag the build descends from.
func (b BuildID) Base() SemVer { return b.base }

// Commits returns how many commits the build is past Base.
func (b BuildID) Commits() int { return b.commits }

// Hash returns the abbreviated commit hash of the build.
func (b BuildID) Hash() string { return b.hash }
