package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mrz1836/relcut/internal/constants"
	relerrors "github.com/mrz1836/relcut/internal/errors"
)

// Inspector answers read-only ref questions about a tree without shelling
// out. It reads the repository as it is on disk, so it sees refs created by
// the CLI runner once they are written.
type Inspector struct {
	path string
}

// NewInspector validates that path holds a git repository.
func NewInspector(path string) (*Inspector, error) {
	if _, err := open(path); err != nil {
		return nil, err
	}
	return &Inspector{path: path}, nil
}

// LocalBranchExists reports whether refs/heads/<name> exists.
func (i *Inspector) LocalBranchExists(name string) (bool, error) {
	return i.refExists(plumbing.NewBranchReferenceName(name))
}

// RemoteBranchExists reports whether refs/remotes/origin/<name> exists.
func (i *Inspector) RemoteBranchExists(name string) (bool, error) {
	return i.refExists(plumbing.NewRemoteReferenceName(constants.DefaultRemote, name))
}

// TagExists reports whether refs/tags/<name> exists.
func (i *Inspector) TagExists(name string) (bool, error) {
	return i.refExists(plumbing.NewTagReferenceName(name))
}

// TagTarget returns the commit hash a tag resolves to, peeling annotated tags.
func (i *Inspector) TagTarget(name string) (string, error) {
	repo, err := open(i.path)
	if err != nil {
		return "", err
	}

	ref, err := repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		return "", fmt.Errorf("failed to resolve tag %s: %w: %w", name, relerrors.ErrGitOperation, err)
	}

	tag, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		commit, cErr := tag.Commit()
		if cErr != nil {
			return "", fmt.Errorf("failed to peel tag %s: %w: %w", name, relerrors.ErrGitOperation, cErr)
		}
		return commit.Hash.String(), nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// lightweight tag
		return ref.Hash().String(), nil
	default:
		return "", fmt.Errorf("failed to read tag %s: %w: %w", name, relerrors.ErrGitOperation, err)
	}
}

func (i *Inspector) refExists(name plumbing.ReferenceName) (bool, error) {
	repo, err := open(i.path)
	if err != nil {
		return false, err
	}

	_, err = repo.Reference(name, false)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to read %s: %w: %w", name, relerrors.ErrGitOperation, err)
	}
}

// open re-reads the repository on every query so refs written by the CLI
// (including packed refs) are always visible.
func open(path string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", relerrors.ErrNotGitRepo, path, err)
	}
	return repo, nil
}
