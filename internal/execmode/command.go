package execmode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mrz1836/relcut/internal/ctxutil"
	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// Command describes one external program invocation.
type Command struct {
	// Name is the program to run (e.g. "git").
	Name string
	// Args are the program arguments. Args[0] is treated as the subcommand
	// when a DryRunFlag is inserted.
	Args []string
	// Dir is the working directory.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the process environment.
	Env []string
	// Stdin is fed to the process when non-empty.
	Stdin string
	// LiveOutput, when set, receives stdout and stderr as they are produced.
	LiveOutput io.Writer
	// Effect marks a command whose result is visible outside the working tree.
	Effect bool
	// DryRunFlag is inserted after Args[0] in mock mode instead of skipping
	// the command (e.g. "--dry-run" for git push).
	DryRunFlag string
}

// String renders the command line for logs.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// withDryRun returns a copy of c with DryRunFlag inserted after the subcommand.
func (c Command) withDryRun() Command {
	args := make([]string, 0, len(c.Args)+1)
	if len(c.Args) > 0 {
		args = append(args, c.Args[0], c.DryRunFlag)
		args = append(args, c.Args[1:]...)
	} else {
		args = append(args, c.DryRunFlag)
	}
	c.Args = args
	return c
}

// Result captures the outcome of one command.
type Result struct {
	// Command is the rendered command line that ran (including any dry-run flag).
	Command string
	// OK is true when the command exited zero, or was skipped in mock mode.
	OK bool
	// Output is the trimmed stdout.
	Output string
	// Stderr is the trimmed stderr.
	Stderr string
	// ExitCode is the process exit code; 0 when skipped.
	ExitCode int
	// Skipped is true when mock mode turned the command into a no-op.
	Skipped bool
	// Duration is the wall time spent.
	Duration time.Duration
	// Err is nil when OK; otherwise it wraps ErrCommandFailed or the context error.
	Err error
}

// Runner executes a Command. It is the seam tests replace.
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// Run executes cmd and captures its output.
func (ExecRunner) Run(ctx context.Context, cmd Command) Result {
	start := time.Now()
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //#nosec G204 -- args are constructed internally
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	if cmd.LiveOutput != nil {
		c.Stdout = io.MultiWriter(&stdout, cmd.LiveOutput)
		c.Stderr = io.MultiWriter(&stderr, cmd.LiveOutput)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{
		Command:  cmd.String(),
		Output:   strings.TrimSpace(stdout.String()),
		Stderr:   strings.TrimSpace(stderr.String()),
		Duration: time.Since(start),
	}
	if err == nil {
		res.OK = true
		return res
	}

	if ctxErr := ctxutil.Canceled(ctx); ctxErr != nil {
		res.ExitCode = -1
		res.Err = ctxErr
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	} else {
		res.ExitCode = -1
	}
	if res.Stderr != "" {
		res.Err = fmt.Errorf("%s: %s: %w", res.Command, res.Stderr, relerrors.ErrCommandFailed)
	} else {
		res.Err = fmt.Errorf("%s: %w: %w", res.Command, relerrors.ErrCommandFailed, err)
	}
	return res
}

var _ Runner = ExecRunner{}

// Shell returns a command that runs script through sh -c in dir.
func Shell(dir, script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}, Dir: dir}
}
