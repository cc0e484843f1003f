// Package resolver computes which versions a release session produces from
// the target branch, the build candidate, and the official flag.
package resolver

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/buildstatus"
	"github.com/mrz1836/relcut/internal/ctxutil"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/version"
)

const step = "resolve"

// RefChecker reports whether origin has a branch. Local branches left in a
// reused tree do not count.
type RefChecker interface {
	RemoteBranchExists(name string) (bool, error)
}

// Request is the operator's input.
type Request struct {
	Branch   version.Branch
	Official bool
	// Override replaces the build-status query when non-zero.
	Override version.BuildID
}

// Resolution is the complete, validated outcome. It is never partially filled.
type Resolution struct {
	Set version.Set
	// Parent is non-zero iff Branch is created by this session.
	Parent    version.Branch
	Candidate version.BuildID
}

// UnderTest returns the branch whose build was vetted: the parent for a new
// branch, the target otherwise.
func (r Resolution) UnderTest(target version.Branch) version.Branch {
	if !r.Parent.IsZero() {
		return r.Parent
	}
	return target
}

// Resolver computes Resolutions.
type Resolver struct {
	refs   RefChecker
	status buildstatus.Source
	logger zerolog.Logger
}

// New creates a Resolver. status may be nil when every request carries an override.
func New(refs RefChecker, status buildstatus.Source, logger zerolog.Logger) *Resolver {
	return &Resolver{refs: refs, status: status, logger: logger}
}

// Resolve validates req against the repository and computes the version set.
// Every failure carries the resolution kind.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Resolution, error) {
	res, err := r.resolve(ctx, req)
	if err != nil {
		return Resolution{}, relerrors.Resolution(step, err)
	}
	r.logger.Info().
		Str("branch", req.Branch.String()).
		Str("parent", res.Parent.String()).
		Str("candidate", res.Candidate.String()).
		Str("primary", res.Set.Primary().Version.String()).
		Msg("versions resolved")
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, req Request) (Resolution, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return Resolution{}, err
	}
	if req.Branch.IsZero() {
		return Resolution{}, fmt.Errorf("branch: %w", relerrors.ErrInvalidBranch)
	}
	if req.Official && req.Branch.IsMaster() {
		return Resolution{}, relerrors.ErrOfficialOnMaster
	}

	parent, err := r.parentFor(req.Branch)
	if err != nil {
		return Resolution{}, err
	}
	if req.Official && !parent.IsZero() {
		return Resolution{}, fmt.Errorf("%s: %w", req.Branch, relerrors.ErrOfficialOnNewBranch)
	}

	underTest := req.Branch
	if !parent.IsZero() {
		underTest = parent
	}

	candidate, err := r.candidate(ctx, req.Override, underTest)
	if err != nil {
		return Resolution{}, err
	}
	if !underTest.Matches(candidate.Base()) {
		return Resolution{}, fmt.Errorf("%s built %s: %w", underTest, candidate, relerrors.ErrBuildBranchMismatch)
	}

	set, err := versionSet(req.Branch, parent, candidate, req.Official)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{Set: set, Parent: parent, Candidate: candidate}, nil
}

// parentFor returns the zero Branch when origin already has branch, or the
// branch it will be cut from.
func (r *Resolver) parentFor(branch version.Branch) (version.Branch, error) {
	exists, err := r.refs.RemoteBranchExists(branch.String())
	if err != nil {
		return version.Branch{}, err
	}
	if exists {
		return version.Branch{}, nil
	}
	if branch.IsMaster() {
		return version.Branch{}, fmt.Errorf("%s: %w", branch, relerrors.ErrBranchNotFound)
	}

	parent, _ := branch.Ancestor()
	ok, err := r.refs.RemoteBranchExists(parent.String())
	if err != nil {
		return version.Branch{}, err
	}
	if !ok {
		return version.Branch{}, fmt.Errorf("parent %s of new branch %s: %w", parent, branch, relerrors.ErrBranchNotFound)
	}
	return parent, nil
}

func (r *Resolver) candidate(ctx context.Context, override version.BuildID, underTest version.Branch) (version.BuildID, error) {
	if !override.IsZero() {
		r.logger.Debug().Str("candidate", override.String()).Msg("using build override")
		return override, nil
	}
	if r.status == nil {
		return version.BuildID{}, fmt.Errorf("no build-status source configured: %w", relerrors.ErrNoBuildCandidate)
	}
	id, err := r.status.LatestBuild(ctx, underTest)
	if err != nil {
		return version.BuildID{}, err
	}
	if id.IsZero() {
		return version.BuildID{}, fmt.Errorf("%s: %w", underTest, relerrors.ErrNoBuildCandidate)
	}
	return id, nil
}
