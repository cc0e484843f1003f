package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/go-github/v74/github"
	"github.com/rs/zerolog"

	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/version"
)

// DefaultTarballGlob matches the release tarball inside a build output.
const DefaultTarballGlob = "*.tar.gz"

// MockReleaseNotes stands in for generated notes in a dry run.
const MockReleaseNotes = "Release notes are generated by the hosting service on a real run."

// HostingConfig locates the hosted repository.
type HostingConfig struct {
	Owner string
	Repo  string
	Token string
	// APIURL targets a GitHub Enterprise instance when set.
	APIURL      string
	TarballGlob string
}

// Hosting publishes release entries through the GitHub REST API.
type Hosting struct {
	client *github.Client
	cfg    HostingConfig
	ctrl   *execmode.Controller
	logger zerolog.Logger
}

// NewGitHubClient builds an authenticated client for cfg.
func NewGitHubClient(cfg HostingConfig) (*github.Client, error) {
	client := github.NewClient(nil)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.APIURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(cfg.APIURL, cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("%w: api url %q: %w", relerrors.ErrGitHubOperation, cfg.APIURL, err)
		}
	}
	return client, nil
}

// NewHosting creates a hosting publisher.
func NewHosting(client *github.Client, cfg HostingConfig, ctrl *execmode.Controller, logger zerolog.Logger) *Hosting {
	if cfg.TarballGlob == "" {
		cfg.TarballGlob = DefaultTarballGlob
	}
	return &Hosting{client: client, cfg: cfg, ctrl: ctrl, logger: logger}
}

// ReleaseNotes asks the hosting service to generate notes for tag. A dry
// run returns MockReleaseNotes.
func (h *Hosting) ReleaseNotes(ctx context.Context, tag string) (string, error) {
	if h.ctrl.Mode().IsMock() {
		return MockReleaseNotes, nil
	}
	notes, _, err := h.client.Repositories.GenerateReleaseNotes(ctx, h.cfg.Owner, h.cfg.Repo, &github.GenerateNotesOptions{TagName: tag})
	if err != nil {
		return "", fmt.Errorf("%w: generate notes for %s: %w", relerrors.ErrGitHubOperation, tag, err)
	}
	return notes.Body, nil
}

// ReleaseRequest describes the entry to publish.
type ReleaseRequest struct {
	Version     version.SemVer
	ArtifactDir string
	Notes       string
	// ConfirmUpdate is asked before an existing entry is edited.
	ConfirmUpdate func() (bool, error)
	// ConfirmDelete is asked before an existing draft entry is deleted.
	ConfirmDelete func() (bool, error)
}

// Publish creates or updates the release entry for req.Version and uploads
// the tarball. A dry run only locates the tarball; the remote tag check and
// every API write are skipped.
func (h *Hosting) Publish(ctx context.Context, req ReleaseRequest) (string, error) {
	tarball, err := h.findTarball(req.ArtifactDir)
	if err != nil {
		return "", err
	}

	var url string
	desc := fmt.Sprintf("create or update release %s on %s/%s with %s", req.Version, h.cfg.Owner, h.cfg.Repo, filepath.Base(tarball))
	err = h.ctrl.Effect(ctx, desc, func(ctx context.Context) error {
		var pubErr error
		url, pubErr = h.publish(ctx, req, tarball)
		return pubErr
	})
	return url, err
}

func (h *Hosting) publish(ctx context.Context, req ReleaseRequest, tarball string) (string, error) {
	tag := req.Version.String()
	if err := h.requireRemoteTag(ctx, tag); err != nil {
		return "", err
	}

	existing, err := h.findRelease(ctx, tag)
	if err != nil {
		return "", err
	}

	if existing != nil && existing.GetDraft() {
		if err := h.deleteDraft(ctx, existing, req.ConfirmDelete); err != nil {
			return "", err
		}
		existing = nil
	}

	entry := &github.RepositoryRelease{
		TagName:    github.Ptr(tag),
		Name:       github.Ptr(tag),
		Body:       github.Ptr(req.Notes),
		Prerelease: github.Ptr(req.Version.Prerelease() != ""),
	}

	var rel *github.RepositoryRelease
	if existing == nil {
		rel, _, err = h.client.Repositories.CreateRelease(ctx, h.cfg.Owner, h.cfg.Repo, entry)
		if err != nil {
			return "", fmt.Errorf("%w: create release %s: %w", relerrors.ErrGitHubOperation, tag, err)
		}
		h.logger.Info().Str("tag", tag).Int64("id", rel.GetID()).Msg("release created")
	} else {
		if err := confirmed(req.ConfirmUpdate); err != nil {
			return "", err
		}
		rel, _, err = h.client.Repositories.EditRelease(ctx, h.cfg.Owner, h.cfg.Repo, existing.GetID(), entry)
		if err != nil {
			return "", fmt.Errorf("%w: update release %s: %w", relerrors.ErrGitHubOperation, tag, err)
		}
		h.logger.Info().Str("tag", tag).Int64("id", rel.GetID()).Msg("release updated")
	}

	if err := h.uploadTarball(ctx, rel, tarball); err != nil {
		return "", err
	}
	return rel.GetHTMLURL(), nil
}

func (h *Hosting) requireRemoteTag(ctx context.Context, tag string) error {
	_, _, err := h.client.Git.GetRef(ctx, h.cfg.Owner, h.cfg.Repo, "tags/"+tag)
	if isNotFound(err) {
		return fmt.Errorf("%s: %w", tag, relerrors.ErrTagNotOnRemote)
	}
	if err != nil {
		return fmt.Errorf("%w: get ref tags/%s: %w", relerrors.ErrGitHubOperation, tag, err)
	}
	return nil
}

// findRelease looks the entry up by tag, drafts included.
func (h *Hosting) findRelease(ctx context.Context, tag string) (*github.RepositoryRelease, error) {
	opts := &github.ListOptions{PerPage: 100}
	for {
		releases, resp, err := h.client.Repositories.ListReleases(ctx, h.cfg.Owner, h.cfg.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: list releases: %w", relerrors.ErrGitHubOperation, err)
		}
		for _, r := range releases {
			if r.GetTagName() == tag {
				return r, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

func (h *Hosting) deleteDraft(ctx context.Context, draft *github.RepositoryRelease, confirm func() (bool, error)) error {
	if err := confirmed(confirm); err != nil {
		return err
	}

	id := draft.GetID()
	if _, err := h.client.Repositories.DeleteRelease(ctx, h.cfg.Owner, h.cfg.Repo, id); err != nil {
		return fmt.Errorf("%w: delete draft %d: %w", relerrors.ErrGitHubOperation, id, err)
	}

	_, _, err := h.client.Repositories.GetRelease(ctx, h.cfg.Owner, h.cfg.Repo, id)
	if err == nil {
		return fmt.Errorf("draft %d: %w", id, relerrors.ErrDraftNotDeleted)
	}
	if !isNotFound(err) {
		return fmt.Errorf("%w: verify draft %d deleted: %w", relerrors.ErrGitHubOperation, id, err)
	}
	h.logger.Info().Int64("id", id).Msg("draft release deleted")
	return nil
}

func (h *Hosting) uploadTarball(ctx context.Context, rel *github.RepositoryRelease, tarball string) error {
	name := filepath.Base(tarball)
	for _, a := range rel.Assets {
		if a.GetName() != name {
			continue
		}
		if _, err := h.client.Repositories.DeleteReleaseAsset(ctx, h.cfg.Owner, h.cfg.Repo, a.GetID()); err != nil {
			return fmt.Errorf("%w: replace asset %s: %w", relerrors.ErrGitHubOperation, name, err)
		}
	}

	f, err := os.Open(tarball) //#nosec G304 -- tarball is inside the build output
	if err != nil {
		return fmt.Errorf("%w: %w", relerrors.ErrGitHubOperation, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	opts := &github.UploadOptions{Name: name}
	if mt, err := mimetype.DetectFile(tarball); err == nil {
		opts.MediaType = mt.String()
	}
	if _, _, err := h.client.Repositories.UploadReleaseAsset(ctx, h.cfg.Owner, h.cfg.Repo, rel.GetID(), opts, f); err != nil {
		return fmt.Errorf("%w: upload %s: %w", relerrors.ErrGitHubOperation, name, err)
	}
	h.logger.Info().Str("asset", name).Msg("release asset uploaded")
	return nil
}

func (h *Hosting) findTarball(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, h.cfg.TarballGlob))
	if err != nil {
		return "", fmt.Errorf("%w: tarball glob %q: %w", relerrors.ErrGitHubOperation, h.cfg.TarballGlob, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s in %s: %w", h.cfg.TarballGlob, dir, relerrors.ErrBuildOutputMissing)
	}
	return matches[0], nil
}

func confirmed(confirm func() (bool, error)) error {
	if confirm == nil {
		return nil
	}
	ok, err := confirm()
	if err != nil {
		return err
	}
	if !ok {
		return relerrors.ErrOperationCanceled
	}
	return nil
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
