package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/mrz1836/relcut/internal/errors"
)

func TestParseSemVer(t *testing.T) {
	v, err := ParseSemVer("v1.4.0-beta.2")
	require.NoError(t, err)

	assert.Equal(t, "v1.4.0-beta.2", v.String())
	assert.Equal(t, uint64(1), v.Major())
	assert.Equal(t, uint64(4), v.Minor())
	assert.Equal(t, uint64(0), v.Patch())
	assert.Equal(t, "beta.2", v.Prerelease())
	assert.Equal(t, "v1.4.0", v.Core().String())
	assert.Equal(t, "1", v.GitMajor())
	assert.Equal(t, "4", v.GitMinor())
}

func TestParseSemVer_Invalid(t *testing.T) {
	for _, input := range []string{"1.4.0", "v1.4", "v1.4.0+meta", "v01.4.0", "v1.4.0-", "vx.y.z", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSemVer(input)
			require.ErrorIs(t, err, relerrors.ErrInvalidVersion)
		})
	}
}

func TestSemVer_Series(t *testing.T) {
	t.Run("series number", func(t *testing.T) {
		n, ok := MustParseSemVer("v1.5.0-alpha.2").SeriesNumber(SeriesAlpha)
		require.True(t, ok)
		assert.Equal(t, 2, n)

		_, ok = MustParseSemVer("v1.5.0-alpha.2").SeriesNumber(SeriesBeta)
		assert.False(t, ok)

		_, ok = MustParseSemVer("v1.5.0").SeriesNumber(SeriesAlpha)
		assert.False(t, ok)

		_, ok = MustParseSemVer("v1.5.0-alpha.x").SeriesNumber(SeriesAlpha)
		assert.False(t, ok)
	})

	t.Run("next in series", func(t *testing.T) {
		next, ok := MustParseSemVer("v1.4.0-beta.1").NextInSeries(SeriesBeta)
		require.True(t, ok)
		assert.Equal(t, "v1.4.0-beta.2", next.String())
	})

	t.Run("constructor", func(t *testing.T) {
		assert.Equal(t, "v1.6.0-alpha.0", Series(1, 6, 0, SeriesAlpha, 0).String())
	})
}

func TestSemVer_Equal(t *testing.T) {
	assert.True(t, MustParseSemVer("v1.4.2").Equal(MustParseSemVer("v1.4.2")))
	assert.False(t, MustParseSemVer("v1.4.2").Equal(MustParseSemVer("v1.4.2-beta.1")))
	assert.True(t, SemVer{}.Equal(SemVer{}))
	assert.False(t, SemVer{}.Equal(MustParseSemVer("v1.4.2")))
	assert.Empty(t, SemVer{}.String())
}
