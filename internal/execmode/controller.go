package execmode

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/ctxutil"
)

// Controller threads one Mode through every externally-effecting call.
type Controller struct {
	mode   Mode
	runner Runner
	logger zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithRunner sets the command runner (for testing).
func WithRunner(r Runner) Option {
	return func(c *Controller) {
		c.runner = r
	}
}

// WithLogger sets the logger used to record every command and skipped effect.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller for mode.
func NewController(mode Mode, opts ...Option) *Controller {
	c := &Controller{
		mode:   mode,
		runner: ExecRunner{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the execution mode.
func (c *Controller) Mode() Mode { return c.mode }

// Run executes cmd according to the mode:
//   - non-effecting commands always run
//   - effecting commands run as-is in real mode
//   - in mock mode, effecting commands with a DryRunFlag run with the flag,
//     the rest are logged and reported as skipped successes
func (c *Controller) Run(ctx context.Context, cmd Command) Result {
	if err := ctxutil.Canceled(ctx); err != nil {
		return Result{Command: cmd.String(), Err: err, ExitCode: -1}
	}

	if cmd.Effect && c.mode.IsMock() {
		if cmd.DryRunFlag == "" {
			c.logger.Info().
				Str("command", cmd.String()).
				Str("dir", cmd.Dir).
				Msg("mock: skipping external command")
			return Result{Command: cmd.String(), OK: true, Skipped: true}
		}
		cmd = cmd.withDryRun()
	}

	c.logger.Debug().Str("command", cmd.String()).Str("dir", cmd.Dir).Msg("running command")
	res := c.runner.Run(ctx, cmd)
	if !res.OK {
		c.logger.Debug().
			Str("command", res.Command).
			Int("exit_code", res.ExitCode).
			Str("stderr", res.Stderr).
			Msg("command failed")
	}
	return res
}

// Effect runs fn in real mode. In mock mode it logs desc and returns nil.
// SDK calls (storage, registry, hosting API) that change external state go here.
func (c *Controller) Effect(ctx context.Context, desc string, fn func(context.Context) error) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if c.mode.IsMock() {
		c.logger.Info().Str("effect", desc).Msg("mock: skipping external effect")
		return nil
	}
	c.logger.Debug().Str("effect", desc).Msg("performing external effect")
	return fn(ctx)
}
