package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

func TestParseBranch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		release  bool
		hasPatch bool
		major    uint64
		minor    uint64
		patch    uint64
	}{
		{name: "master", input: "master"},
		{name: "two components", input: "release-1.4", release: true, major: 1, minor: 4},
		{name: "three components", input: "release-1.4.3", release: true, hasPatch: true, major: 1, minor: 4, patch: 3},
		{name: "zero minor", input: "release-2.0", release: true, major: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBranch(tt.input)
			require.NoError(t, err)

			assert.Equal(t, tt.input, b.String())
			assert.Equal(t, tt.release, b.IsRelease())
			assert.Equal(t, !tt.release, b.IsMaster())
			assert.Equal(t, tt.hasPatch, b.HasPatch())
			assert.Equal(t, tt.major, b.Major())
			assert.Equal(t, tt.minor, b.Minor())
			assert.Equal(t, tt.patch, b.Patch())
		})
	}
}

func TestParseBranch_Invalid(t *testing.T) {
	for _, input := range []string{
		"", "main", "release-1", "release-1.4.3.2", "release-01.4", "release-1.x",
		"release_1.4", "feature/release-1.4", "release-1.4-beta", " master",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseBranch(input)
			require.ErrorIs(t, err, relerrors.ErrInvalidBranch)
		})
	}
}

func TestBranch_Ancestor(t *testing.T) {
	t.Run("two components come from master", func(t *testing.T) {
		parent, ok := MustParseBranch("release-1.6").Ancestor()
		require.True(t, ok)
		assert.True(t, parent.IsMaster())
	})

	t.Run("three components come from the two component line", func(t *testing.T) {
		parent, ok := MustParseBranch("release-1.4.3").Ancestor()
		require.True(t, ok)
		assert.Equal(t, "release-1.4", parent.String())
		assert.Equal(t, uint64(1), parent.Major())
		assert.Equal(t, uint64(4), parent.Minor())
		assert.False(t, parent.HasPatch())
	})

	t.Run("master has none", func(t *testing.T) {
		_, ok := Master.Ancestor()
		assert.False(t, ok)
	})
}

func TestBranch_Matches(t *testing.T) {
	tests := []struct {
		branch  string
		version string
		want    bool
	}{
		{"master", "v9.9.9", true},
		{"release-1.4", "v1.4.0-beta.1", true},
		{"release-1.4", "v1.4.7", true},
		{"release-1.4", "v1.5.0-beta.0", false},
		{"release-1.4", "v2.4.0", false},
		{"release-1.4.3", "v1.4.3-beta.0", true},
		{"release-1.4.3", "v1.4.2", false},
	}

	for _, tt := range tests {
		t.Run(tt.branch+"/"+tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParseBranch(tt.branch).Matches(MustParseSemVer(tt.version)))
		})
	}
}
