// Package publish makes a built release visible: it pushes git objects,
// uploads artifacts to storage and the registry, and creates the hosted
// release entry. Each phase is confirmed by the operator unless pre-approved.
package publish

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/constants"
	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/git"
	"github.com/mrz1836/relcut/internal/version"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Recorder receives one entry per completed unit of publish work.
type Recorder func(stage domain.Stage, detail string)

// Publisher runs the publish phases for one session.
type Publisher struct {
	session  domain.Session
	git      git.Runner
	ctrl     *execmode.Controller
	confirm  Confirmer
	storage  *Storage
	registry *Registry
	hosting  *Hosting
	// docsRefresh runs on master after the release branches are pushed. Empty skips it.
	docsRefresh string
	record      Recorder
	logger      zerolog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithStorage enables artifact upload to object storage.
func WithStorage(s *Storage) Option { return func(p *Publisher) { p.storage = s } }

// WithRegistry enables image publishing.
func WithRegistry(r *Registry) Option { return func(p *Publisher) { p.registry = r } }

// WithHosting enables the hosted release entry.
func WithHosting(h *Hosting) Option { return func(p *Publisher) { p.hosting = h } }

// WithDocsRefresh sets the command run on master before it is pushed.
func WithDocsRefresh(cmd string) Option { return func(p *Publisher) { p.docsRefresh = cmd } }

// WithRecorder sets the progress recorder.
func WithRecorder(r Recorder) Option { return func(p *Publisher) { p.record = r } }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option { return func(p *Publisher) { p.logger = l } }

// New creates a Publisher.
func New(session domain.Session, runner git.Runner, ctrl *execmode.Controller, confirm Confirmer, opts ...Option) *Publisher {
	p := &Publisher{
		session: session,
		git:     runner,
		ctrl:    ctrl,
		confirm: confirm,
		record:  func(domain.Stage, string) {},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Built pairs a planned step with its artifact directory.
type Built struct {
	Step        domain.Step
	ArtifactDir string
}

// Outcome summarizes what was published.
type Outcome struct {
	Tags       []string
	Branches   []string
	Uploaded   int
	Images     []string
	ReleaseURL string
	Notes      string
}

// Publish runs every phase in order. Failures carry the publish kind and
// leave earlier phases in place.
func (p *Publisher) Publish(ctx context.Context, built []Built) (Outcome, error) {
	var out Outcome

	if err := p.pushGit(ctx, built, &out); err != nil {
		return out, relerrors.Publish("push", err)
	}
	if err := p.publishArtifacts(ctx, built, &out); err != nil {
		return out, relerrors.Publish("artifacts", err)
	}
	if err := p.publishHosting(ctx, built, &out); err != nil {
		return out, relerrors.Publish("hosting", err)
	}
	return out, nil
}

func (p *Publisher) ask(ctx context.Context, question string) error {
	ok, err := p.confirm.Confirm(ctx, question)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", question, relerrors.ErrOperationCanceled)
	}
	return nil
}

func (p *Publisher) pushGit(ctx context.Context, built []Built, out *Outcome) error {
	branches := []string{p.session.Branch().String()}
	if p.session.CreatesBranch() {
		branches = append(branches, p.session.Parent().String())
	}

	if err := p.ask(ctx, fmt.Sprintf("Push %d tag(s) and %v to %s (%s)?", len(built), branches, constants.DefaultRemote, p.session.Mode())); err != nil {
		return err
	}

	for _, b := range built {
		tag := b.Step.Version().String()
		if err := p.git.Push(ctx, constants.DefaultRemote, "refs/tags/"+tag); err != nil {
			return err
		}
		out.Tags = append(out.Tags, tag)
		p.record(domain.StagePush, "pushed tag "+tag)
	}

	for _, br := range branches {
		if err := p.git.Push(ctx, constants.DefaultRemote, "refs/heads/"+br); err != nil {
			return err
		}
		out.Branches = append(out.Branches, br)
		p.record(domain.StagePush, "pushed branch "+br)
	}

	return p.refreshDocs(ctx, out)
}

// refreshDocs updates the published docs on master and pushes master.
func (p *Publisher) refreshDocs(ctx context.Context, out *Outcome) error {
	if p.docsRefresh == "" {
		return nil
	}
	master := version.Master.String()
	if err := p.git.Checkout(ctx, master); err != nil {
		return err
	}

	cmd := execmode.Shell(p.git.WorkDir(), p.docsRefresh)
	cmd.Env = []string{
		"RELCUT_BRANCH=" + p.session.Branch().String(),
		constants.VersionEnvVar + "=" + p.session.Primary().Version.String(),
	}
	if res := p.ctrl.Run(ctx, cmd); !res.OK {
		return fmt.Errorf("docs refresh: %w", res.Err)
	}

	dirty, err := p.git.IsDirty(ctx)
	if err != nil {
		return err
	}
	if dirty {
		if err := p.git.Add(ctx, nil); err != nil {
			return err
		}
		if err := p.git.Commit(ctx, "Update docs for "+p.session.Primary().Version.String()); err != nil {
			return err
		}
	}

	if err := p.git.Push(ctx, constants.DefaultRemote, "refs/heads/"+master); err != nil {
		return err
	}
	out.Branches = append(out.Branches, master)
	p.record(domain.StagePush, "refreshed docs on "+master)
	return nil
}

func (p *Publisher) publishArtifacts(ctx context.Context, built []Built, out *Outcome) error {
	if p.storage == nil && p.registry == nil {
		p.logger.Info().Msg("no storage or registry configured, skipping artifact publish")
		return nil
	}
	if err := p.ask(ctx, fmt.Sprintf("Publish artifacts for %d version(s) (%s)?", len(built), p.session.Mode())); err != nil {
		return err
	}

	for _, b := range built {
		v := b.Step.Version()
		if p.storage != nil {
			n, err := p.storage.Upload(ctx, v, b.ArtifactDir)
			if err != nil {
				return err
			}
			out.Uploaded += n
			p.record(domain.StageArtifacts, fmt.Sprintf("uploaded %s to %s", v, p.storage.VersionPrefix(v)))
		}
		if p.registry != nil {
			refs, err := p.registry.Push(ctx, v, b.ArtifactDir)
			out.Images = append(out.Images, refs...)
			if err != nil {
				return err
			}
			if len(refs) > 0 {
				p.record(domain.StageArtifacts, fmt.Sprintf("pushed %d image(s) for %s", len(refs), v))
			}
		}
		if b.Step.Label().IsOfficial() && p.storage != nil {
			if err := p.storage.WriteStable(ctx, v); err != nil {
				return err
			}
			p.record(domain.StageArtifacts, "marked "+v.String()+" stable")
		}
	}
	return nil
}

func (p *Publisher) publishHosting(ctx context.Context, built []Built, out *Outcome) error {
	if p.hosting == nil {
		p.logger.Info().Msg("no hosting configured, skipping release entry")
		return nil
	}

	primary, ok := primaryBuilt(built)
	if !ok {
		return fmt.Errorf("no primary step built: %w", relerrors.ErrPublishGateClosed)
	}
	v := primary.Step.Version()
	if err := p.ask(ctx, fmt.Sprintf("Publish release entry %s (%s)?", v, p.session.Mode())); err != nil {
		return err
	}

	notes, err := p.hosting.ReleaseNotes(ctx, v.String())
	if err != nil {
		return err
	}
	out.Notes = notes

	url, err := p.hosting.Publish(ctx, ReleaseRequest{
		Version:     v,
		ArtifactDir: primary.ArtifactDir,
		Notes:       notes,
		ConfirmUpdate: func() (bool, error) {
			return p.confirm.Confirm(ctx, "Release "+v.String()+" already exists. Update it?")
		},
		ConfirmDelete: func() (bool, error) {
			return p.confirm.Confirm(ctx, "A draft release "+v.String()+" exists. Delete and recreate it?")
		},
	})
	if err != nil {
		return err
	}
	out.ReleaseURL = url
	p.record(domain.StageHosting, "release entry "+v.String())
	return nil
}

func primaryBuilt(built []Built) (Built, bool) {
	for _, b := range built {
		if b.Step.Primary {
			return b, true
		}
	}
	return Built{}, false
}
