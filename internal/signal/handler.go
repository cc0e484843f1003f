// Package signal cancels a release session on SIGINT or SIGTERM.
//
// The session stops at the next step boundary. Side effects already in
// place stay and the progress journal shows how far it got.
//
// This package imports only the standard library.
package signal

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted is the cancellation cause after a signal.
var ErrInterrupted = errors.New("interrupted by signal")

// Handler owns a context canceled with ErrInterrupted on the first signal.
//
//	h := signal.NewHandler(ctx)
//	defer h.Stop()
//	report, err := driver.Run(h.Context(), req)
type Handler struct {
	ctx    context.Context //nolint:containedctx // handler owns the context lifecycle
	cancel context.CancelCauseFunc
	sigs   chan os.Signal
	stop   chan struct{}
	once   sync.Once
}

// NewHandler starts listening for interrupts.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:    ctx,
		cancel: cancel,
		// signal.Notify drops signals on an unbuffered channel.
		sigs: make(chan os.Signal, 1),
		stop: make(chan struct{}),
	}
	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context returns the session context.
func (h *Handler) Context() context.Context { return h.ctx }

// WasInterrupted reports whether a signal canceled the context.
func (h *Handler) WasInterrupted() bool {
	return errors.Is(context.Cause(h.ctx), ErrInterrupted)
}

// Stop stops listening and releases the context. Safe to call twice.
func (h *Handler) Stop() {
	h.once.Do(func() {
		signal.Stop(h.sigs)
		close(h.stop)
		h.cancel(context.Canceled)
	})
}

// interrupt cancels with ErrInterrupted. The first cause sticks, so later
// signals and Stop do not overwrite it.
func (h *Handler) interrupt() { h.cancel(ErrInterrupted) }

func (h *Handler) listen() {
	select {
	case <-h.sigs:
		h.interrupt()
	case <-h.ctx.Done():
	case <-h.stop:
	}
}
