package domain

import "github.com/mrz1836/relcut/internal/version"

// CheckoutMode says how the tree is put on a step's branch before preparing it.
type CheckoutMode int

const (
	// OnBranch checks out the existing release branch.
	OnBranch CheckoutMode = iota
	// OnParent checks out the parent branch; the tag lands there.
	OnParent
	// CreateBranch cuts the release branch from the parent.
	CreateBranch
)

// String returns a short name for plan output.
func (m CheckoutMode) String() string {
	switch m {
	case OnParent:
		return "on-parent"
	case CreateBranch:
		return "create-branch"
	case OnBranch:
		return "on-branch"
	}
	return "unknown"
}

// Step is one planned label: what to tag, where, and how to get there.
type Step struct {
	Entry version.Entry
	// Branch is the branch the tag is created on.
	Branch version.Branch
	// Parent is set for CreateBranch steps.
	Parent   version.Branch
	Checkout CheckoutMode
	Primary  bool
}

// Label returns the step's label.
func (s Step) Label() version.Label { return s.Entry.Label }

// Version returns the step's tag version.
func (s Step) Version() version.SemVer { return s.Entry.Version }

// TagMessage returns the annotated tag message.
func (s Step) TagMessage() string {
	return "Release " + s.Version().String() + " (" + s.Label().String() + ") on " + s.Branch.String()
}
