package domain

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/version"
)

// Session is the immutable description of one release run. It is created
// once after validation and resolution, then only read.
type Session struct {
	id        string
	branch    version.Branch
	parent    version.Branch
	candidate version.BuildID
	set       version.Set
	workspace string
	tree      string
	mode      execmode.Mode
	official  bool
}

// SessionParams carries the inputs of NewSession.
type SessionParams struct {
	// ID is generated when empty.
	ID        string
	Branch    version.Branch
	Parent    version.Branch
	Candidate version.BuildID
	Set       version.Set
	Workspace string
	// Tree is the repository checkout inside Workspace.
	Tree     string
	Mode     execmode.Mode
	Official bool
}

// NewSession validates p and freezes it.
func NewSession(p SessionParams) (Session, error) {
	if p.Branch.IsZero() {
		return Session{}, fmt.Errorf("session branch: %w", relerrors.ErrEmptyValue)
	}
	if p.Set.Len() == 0 {
		return Session{}, fmt.Errorf("session version set: %w", relerrors.ErrEmptyValue)
	}
	if p.Tree == "" {
		return Session{}, fmt.Errorf("session tree: %w", relerrors.ErrEmptyValue)
	}
	if p.Workspace == "" {
		p.Workspace = filepath.Dir(p.Tree)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return Session{
		id:        p.ID,
		branch:    p.Branch,
		parent:    p.Parent,
		candidate: p.Candidate,
		set:       p.Set,
		workspace: p.Workspace,
		tree:      p.Tree,
		mode:      p.Mode,
		official:  p.Official,
	}, nil
}

// ID returns the session identifier.
func (s Session) ID() string { return s.id }

// Branch returns the release branch.
func (s Session) Branch() version.Branch { return s.branch }

// Parent returns the branch the release branch is cut from; zero unless
// this session creates the branch.
func (s Session) Parent() version.Branch { return s.parent }

// CreatesBranch reports whether this session creates the release branch.
func (s Session) CreatesBranch() bool { return !s.parent.IsZero() }

// UnderTest returns the branch whose build was vetted.
func (s Session) UnderTest() version.Branch {
	if s.CreatesBranch() {
		return s.parent
	}
	return s.branch
}

// Candidate returns the build the release is based on.
func (s Session) Candidate() version.BuildID { return s.candidate }

// Versions returns the release version set.
func (s Session) Versions() version.Set { return s.set }

// Primary returns the primary version entry.
func (s Session) Primary() version.Entry { return s.set.Primary() }

// Workspace returns the workspace directory.
func (s Session) Workspace() string { return s.workspace }

// Tree returns the repository checkout.
func (s Session) Tree() string { return s.tree }

// Mode returns the execution mode.
func (s Session) Mode() execmode.Mode { return s.mode }

// IsMock reports whether the session is a dry run.
func (s Session) IsMock() bool { return s.mode.IsMock() }

// Official reports whether an official release was requested.
func (s Session) Official() bool { return s.official }
