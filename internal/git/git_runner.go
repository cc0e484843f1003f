package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrz1836/relcut/internal/constants"
	"github.com/mrz1836/relcut/internal/ctxutil"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
)

// CLIRunner implements Runner using the git CLI.
// Every command goes through the execution mode controller; only push is
// marked as externally effecting.
type CLIRunner struct {
	workDir string
	ctrl    *execmode.Controller
}

// NewRunner creates a new CLIRunner for the given working directory.
// Returns an error if the directory is not a git repository.
func NewRunner(ctx context.Context, workDir string, ctrl *execmode.Controller) (*CLIRunner, error) {
	if workDir == "" {
		return nil, fmt.Errorf("work directory cannot be empty: %w", relerrors.ErrEmptyValue)
	}
	if ctrl == nil {
		ctrl = execmode.NewController(execmode.Mock)
	}

	r := &CLIRunner{workDir: workDir, ctrl: ctrl}

	if _, err := r.runGitCommand(ctx, "rev-parse", "--git-dir"); err != nil {
		return nil, fmt.Errorf("%w: %w", relerrors.ErrNotGitRepo, err)
	}

	return r, nil
}

// Clone clones remote into dir and returns a runner for the new tree.
// A clone only writes locally, so it runs in both modes.
func Clone(ctx context.Context, ctrl *execmode.Controller, remote, dir string) (*CLIRunner, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if remote == "" {
		return nil, fmt.Errorf("clone remote cannot be empty: %w", relerrors.ErrEmptyValue)
	}
	if ctrl == nil {
		ctrl = execmode.NewController(execmode.Mock)
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	args := []string{"clone", "--origin", constants.DefaultRemote, remote, dir}
	res := ctrl.Run(ctx, execmode.Command{Name: "git", Args: args, Dir: filepath.Dir(dir)})
	if err := resultError(args, res); err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", remote, err)
	}

	return NewRunner(ctx, dir, ctrl)
}

// WorkDir returns the tree the runner operates on.
func (r *CLIRunner) WorkDir() string { return r.workDir }

// Checkout switches to branch.
func (r *CLIRunner) Checkout(ctx context.Context, branch string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	if _, err := r.runGitCommand(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch); err == nil {
		if _, err := r.runGitCommand(ctx, "checkout", branch); err != nil {
			return fmt.Errorf("failed to checkout %s: %w", branch, err)
		}
		return nil
	}

	remoteRef := constants.DefaultRemote + "/" + branch
	if _, err := r.runGitCommand(ctx, "checkout", "-b", branch, "--track", remoteRef); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// CreateBranch creates branch from base and checks it out.
func (r *CLIRunner) CreateBranch(ctx context.Context, branch, base string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if branch == "" || base == "" {
		return fmt.Errorf("branch and base cannot be empty: %w", relerrors.ErrEmptyValue)
	}

	// The base may only exist on the remote; give it a local tracking branch
	// so the branch and its base can both be pushed by name.
	if _, err := r.runGitCommand(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+base); err != nil {
		if _, err := r.runGitCommand(ctx, "branch", "--track", base, constants.DefaultRemote+"/"+base); err != nil {
			return fmt.Errorf("failed to track base %s: %w", base, err)
		}
	}

	if _, err := r.runGitCommand(ctx, "checkout", "-b", branch, base); err != nil {
		return fmt.Errorf("failed to create branch %s from %s: %w", branch, base, err)
	}
	return nil
}

// Add stages files for commit.
func (r *CLIRunner) Add(ctx context.Context, paths []string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	args := []string{"add"}
	if len(paths) == 0 {
		args = append(args, "-A")
	} else {
		args = append(args, "--")
		args = append(args, paths...)
	}

	if _, err := r.runGitCommand(ctx, args...); err != nil {
		return fmt.Errorf("failed to add files: %w", err)
	}
	return nil
}

// Commit creates a commit with the given message.
func (r *CLIRunner) Commit(ctx context.Context, message string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if message == "" {
		return fmt.Errorf("commit message cannot be empty: %w", relerrors.ErrEmptyValue)
	}

	if _, err := r.runGitCommand(ctx, "commit", "-m", message, "--cleanup=strip"); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// IsDirty reports whether the working tree has uncommitted changes.
func (r *CLIRunner) IsDirty(ctx context.Context) (bool, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return false, err
	}

	output, err := r.runGitCommand(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	return output != "", nil
}

// HeadCommit returns the full hash of HEAD.
func (r *CLIRunner) HeadCommit(ctx context.Context) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}

	output, err := r.runGitCommand(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return output, nil
}

// Tag creates an annotated tag on HEAD.
func (r *CLIRunner) Tag(ctx context.Context, name, message string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if name == "" || message == "" {
		return fmt.Errorf("tag name and message cannot be empty: %w", relerrors.ErrEmptyValue)
	}

	if _, err := r.runGitCommand(ctx, "tag", "-a", name, "-m", message); err != nil {
		return fmt.Errorf("failed to tag %s: %w", name, err)
	}
	return nil
}

// Push pushes refs to remote.
func (r *CLIRunner) Push(ctx context.Context, remote string, refs ...string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if remote == "" || len(refs) == 0 {
		return fmt.Errorf("push remote and refs cannot be empty: %w", relerrors.ErrEmptyValue)
	}

	args := append([]string{"push", remote}, refs...)
	res := r.ctrl.Run(ctx, execmode.Command{
		Name:       "git",
		Args:       args,
		Dir:        r.workDir,
		Effect:     true,
		DryRunFlag: "--dry-run",
	})
	if err := resultError(args, res); err != nil {
		if sentinel := ClassifyPushFailure(res.Stderr).Sentinel(); sentinel != nil && contextErr(err) == nil {
			return fmt.Errorf("failed to push %s: %w: %w", strings.Join(refs, " "), sentinel, err)
		}
		return fmt.Errorf("failed to push %s: %w", strings.Join(refs, " "), err)
	}
	return nil
}

// runGitCommand runs a non-effecting git command in the tree.
func (r *CLIRunner) runGitCommand(ctx context.Context, args ...string) (string, error) {
	res := r.ctrl.Run(ctx, execmode.Command{Name: "git", Args: args, Dir: r.workDir})
	if err := resultError(args, res); err != nil {
		return "", err
	}
	return res.Output, nil
}

var _ Runner = (*CLIRunner)(nil)

// resultError converts a failed execmode.Result into an ErrGitOperation error.
func resultError(args []string, res execmode.Result) error {
	if res.OK {
		return nil
	}
	if ctxErr := contextErr(res.Err); ctxErr != nil {
		return ctxErr
	}
	if res.Stderr != "" {
		return fmt.Errorf("git %s failed: %s: %w", args[0], res.Stderr, relerrors.ErrGitOperation)
	}
	return fmt.Errorf("git %s failed: %w", args[0], relerrors.ErrGitOperation)
}
