// Package prepare puts the workspace tree into the state a label's tag
// must capture: on the right branch, stamped, doc-versioned and tagged.
package prepare

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/constants"
	"github.com/mrz1836/relcut/internal/ctxutil"
	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/git"
)

// DefaultVersionFile is the version source file relative to the tree root.
const DefaultVersionFile = "pkg/version/base.go"

// Refs answers ref questions about the tree.
type Refs interface {
	TagExists(name string) (bool, error)
	TagTarget(name string) (string, error)
	LocalBranchExists(name string) (bool, error)
}

// Options configures a Preparator.
type Options struct {
	// VersionFile is relative to the tree root.
	VersionFile string
	// DocsCommand versions the docs when the release branch is created. Empty skips it.
	DocsCommand string
}

// Result describes a prepared step.
type Result struct {
	// Commit is the commit the tag points at.
	Commit string
	// Skipped is true when a mock resume found the tag already in place.
	Skipped bool
	// Stamped is true when the version file was rewritten and committed.
	Stamped bool
}

// Preparator prepares steps of one session in plan order.
type Preparator struct {
	session  domain.Session
	git      git.Runner
	refs     Refs
	ctrl     *execmode.Controller
	opts     Options
	logger   zerolog.Logger
	docsDone bool
}

// New creates a Preparator for session.
func New(session domain.Session, runner git.Runner, refs Refs, ctrl *execmode.Controller, opts Options, logger zerolog.Logger) *Preparator {
	if opts.VersionFile == "" {
		opts.VersionFile = DefaultVersionFile
	}
	return &Preparator{
		session: session,
		git:     runner,
		refs:    refs,
		ctrl:    ctrl,
		opts:    opts,
		logger:  logger,
	}
}

// Prepare checks out, stamps, doc-versions and tags step. Every failure
// carries the prepare kind.
func (p *Preparator) Prepare(ctx context.Context, step domain.Step) (Result, error) {
	res, err := p.prepare(ctx, step)
	if err != nil {
		return Result{}, relerrors.Prepare("prepare "+step.Version().String(), err)
	}
	return res, nil
}

func (p *Preparator) prepare(ctx context.Context, step domain.Step) (Result, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return Result{}, err
	}
	tag := step.Version().String()
	log := p.logger.With().Str("label", step.Label().String()).Str("version", tag).Logger()

	exists, err := p.refs.TagExists(tag)
	if err != nil {
		return Result{}, err
	}
	if exists {
		if !p.session.IsMock() {
			return Result{}, fmt.Errorf("%s: %w", tag, relerrors.ErrTagExists)
		}
		commit, err := p.refs.TagTarget(tag)
		if err != nil {
			return Result{}, err
		}
		log.Info().Str("commit", commit).Msg("tag already present, reusing prior mock preparation")
		return Result{Commit: commit, Skipped: true}, nil
	}

	if err := p.checkout(ctx, step); err != nil {
		return Result{}, err
	}

	var res Result
	if step.Label().IsStamped() {
		stamped, err := p.stamp(ctx, step)
		if err != nil {
			return Result{}, err
		}
		res.Stamped = stamped
	}

	if step.Checkout == domain.CreateBranch && !p.docsDone {
		if err := p.versionDocs(ctx, step); err != nil {
			return Result{}, err
		}
		p.docsDone = true
	}

	if err := p.git.Tag(ctx, tag, step.TagMessage()); err != nil {
		return Result{}, err
	}
	res.Commit, err = p.git.HeadCommit(ctx)
	if err != nil {
		return Result{}, err
	}

	log.Info().Str("branch", step.Branch.String()).Str("commit", res.Commit).Bool("stamped", res.Stamped).Msg("tagged")
	return res, nil
}

func (p *Preparator) checkout(ctx context.Context, step domain.Step) error {
	branch := step.Branch.String()
	switch step.Checkout {
	case domain.CreateBranch:
		// A mock rerun under --noclean may find the branch from the previous run.
		if p.session.IsMock() {
			ok, err := p.refs.LocalBranchExists(branch)
			if err != nil {
				return err
			}
			if ok {
				return p.git.Checkout(ctx, branch)
			}
		}
		return p.git.CreateBranch(ctx, branch, step.Parent.String())
	case domain.OnParent, domain.OnBranch:
		return p.git.Checkout(ctx, branch)
	}
	return fmt.Errorf("unknown checkout mode %d: %w", step.Checkout, relerrors.ErrGitOperation)
}

func (p *Preparator) stamp(ctx context.Context, step domain.Step) (bool, error) {
	path := filepath.Join(p.git.WorkDir(), p.opts.VersionFile)
	changed, err := Stamp(path, step.Entry)
	if err != nil {
		return false, err
	}
	if !changed {
		p.logger.Debug().Str("file", p.opts.VersionFile).Msg("version file already current")
		return false, nil
	}

	if err := p.git.Add(ctx, []string{p.opts.VersionFile}); err != nil {
		return false, err
	}
	if err := p.git.Commit(ctx, "Bump version to "+step.Version().String()); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Preparator) versionDocs(ctx context.Context, step domain.Step) error {
	if p.opts.DocsCommand == "" {
		p.logger.Debug().Msg("no docs versioning command configured")
		return nil
	}

	cmd := execmode.Shell(p.git.WorkDir(), p.opts.DocsCommand)
	cmd.Env = []string{
		"RELCUT_BRANCH=" + step.Branch.String(),
		constants.VersionEnvVar + "=" + step.Version().String(),
	}
	if res := p.ctrl.Run(ctx, cmd); !res.OK {
		return fmt.Errorf("docs versioning: %w", res.Err)
	}

	dirty, err := p.git.IsDirty(ctx)
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if err := p.git.Add(ctx, nil); err != nil {
		return err
	}
	return p.git.Commit(ctx, "Versioning docs for "+step.Branch.String())
}
