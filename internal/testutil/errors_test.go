package testutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockErrors_AreDistinct(t *testing.T) {
	all := []error{ErrMockNetwork, ErrMockUploadFailed, ErrMockRepository}
	for i, a := range all {
		for j, b := range all {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}

func TestMockErrors_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("upload product/v1.4.2/app.tar.gz: %w", ErrMockUploadFailed)
	assert.ErrorIs(t, err, ErrMockUploadFailed)
	assert.NotErrorIs(t, err, ErrMockNetwork)
}
