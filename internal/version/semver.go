package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// Pre-release series names.
const (
	SeriesAlpha = "alpha"
	SeriesBeta  = "beta"
)

//nolint:gochecknoglobals // compiled once
var tagRe = regexp.MustCompile(`^v(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-([0-9A-Za-z]+(?:\.[0-9A-Za-z]+)*))?$`)

// SemVer is a release tag version such as v1.4.0-beta.2.
type SemVer struct {
	v *semver.Version
}

// ParseSemVer parses a v-prefixed three-component version.
// Build metadata is not accepted; tags never carry it.
func ParseSemVer(s string) (SemVer, error) {
	if !tagRe.MatchString(s) {
		return SemVer{}, fmt.Errorf("%q: %w", s, relerrors.ErrInvalidVersion)
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return SemVer{}, fmt.Errorf("%q: %w: %w", s, relerrors.ErrInvalidVersion, err)
	}
	return SemVer{v: v}, nil
}

// MustParseSemVer is like ParseSemVer but panics on error.
func MustParseSemVer(s string) SemVer {
	v, err := ParseSemVer(s)
	if err != nil {
		panic(err)
	}
	return v
}

// newSemVer builds a version from its parts.
func newSemVer(major, minor, patch uint64, pre string) SemVer {
	return SemVer{v: semver.New(major, minor, patch, pre, "")}
}

// Series returns vMAJOR.MINOR.PATCH-<series>.<n>.
func Series(major, minor, patch uint64, series string, n int) SemVer {
	return newSemVer(major, minor, patch, series+"."+strconv.Itoa(n))
}

// IsZero reports whether v is the zero value.
func (v SemVer) IsZero() bool { return v.v == nil }

// String returns the tag form, always v-prefixed.
func (v SemVer) String() string {
	if v.v == nil {
		return ""
	}
	return "v" + v.v.String()
}

// Major returns the major component.
func (v SemVer) Major() uint64 { return v.v.Major() }

// Minor returns the minor component.
func (v SemVer) Minor() uint64 { return v.v.Minor() }

// Patch returns the patch component.
func (v SemVer) Patch() uint64 { return v.v.Patch() }

// Prerelease returns the pre-release part without the leading dash.
func (v SemVer) Prerelease() string { return v.v.Prerelease() }

// Core returns v without its pre-release part.
func (v SemVer) Core() SemVer {
	return newSemVer(v.Major(), v.Minor(), v.Patch(), "")
}

// SeriesNumber reports N when the pre-release is exactly <series>.N.
func (v SemVer) SeriesNumber(series string) (int, bool) {
	rest, ok := strings.CutPrefix(v.Prerelease(), series+".")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextInSeries bumps N of a <series>.N pre-release. ok is false when v is
// not in that series.
func (v SemVer) NextInSeries(series string) (SemVer, bool) {
	n, ok := v.SeriesNumber(series)
	if !ok {
		return SemVer{}, false
	}
	return Series(v.Major(), v.Minor(), v.Patch(), series, n+1), true
}

// Equal reports whether both versions name the same tag.
func (v SemVer) Equal(o SemVer) bool {
	if v.v == nil || o.v == nil {
		return v.v == o.v
	}
	return v.v.Equal(o.v)
}

// GitMajor returns the major component as stamped into source.
func (v SemVer) GitMajor() string { return strconv.FormatUint(v.Major(), 10) }

// GitMinor returns the minor component as stamped into source.
func (v SemVer) GitMinor() string { return strconv.FormatUint(v.Minor(), 10) }
