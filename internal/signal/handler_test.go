package signal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_InterruptSetsCause(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.interrupt()
	h.interrupt()

	require.ErrorIs(t, h.Context().Err(), context.Canceled)
	require.ErrorIs(t, context.Cause(h.Context()), ErrInterrupted)
	assert.True(t, h.WasInterrupted())

	h.Stop()
	assert.True(t, h.WasInterrupted(), "stop keeps the first cause")
}

func TestHandler_StopIsNotAnInterrupt(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()
	h.Stop()

	require.Error(t, h.Context().Err())
	assert.False(t, h.WasInterrupted())
}

func TestHandler_ParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()
	<-h.Context().Done()
	assert.False(t, h.WasInterrupted())
}
