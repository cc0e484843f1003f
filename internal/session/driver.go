package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/announce"
	"github.com/mrz1836/relcut/internal/build"
	"github.com/mrz1836/relcut/internal/buildstatus"
	"github.com/mrz1836/relcut/internal/clock"
	"github.com/mrz1836/relcut/internal/ctxutil"
	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/git"
	"github.com/mrz1836/relcut/internal/prepare"
	"github.com/mrz1836/relcut/internal/publish"
	"github.com/mrz1836/relcut/internal/resolver"
)

// Config holds the driver settings.
type Config struct {
	// Remote is cloned into the workspace at the start of the session.
	Remote string
	// Workspace is the directory holding the release tree.
	Workspace string
	// RepoName is the tree's directory name inside Workspace.
	RepoName string
	// NoClean reuses a leftover tree and build outputs.
	NoClean bool
	Prepare prepare.Options
	Build   build.Options
	// DocsRefresh runs on master after the release branches are pushed.
	DocsRefresh string
}

// Deps are the collaborators of a Driver.
type Deps struct {
	Ctrl    *execmode.Controller
	Status  buildstatus.Source
	Confirm publish.Confirmer
	// Publish carries storage, registry and hosting options.
	Publish []publish.Option
	// Announcer is optional; nil skips the announcement.
	Announcer *announce.Announcer
	// Preview is shown the plan before any tree mutation.
	Preview func(domain.Session, []domain.Step)
	Clock   clock.Clock
	Logger  zerolog.Logger
}

// Report is what a session did. It is returned on failure too, with the
// progress journal filled up to the failing step.
type Report struct {
	Session  domain.Session
	Steps    []domain.Step
	Built    []publish.Built
	Outcome  publish.Outcome
	Message  announce.Message
	Progress *domain.Progress
}

// Driver runs release sessions end to end.
type Driver struct {
	cfg  Config
	deps Deps
}

// NewDriver creates a Driver.
func NewDriver(cfg Config, deps Deps) *Driver {
	if deps.Ctrl == nil {
		deps.Ctrl = execmode.NewController(execmode.Mock)
	}
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if cfg.RepoName == "" && cfg.Remote != "" {
		cfg.RepoName = repoName(cfg.Remote)
	}
	return &Driver{cfg: cfg, deps: deps}
}

// Run drives one session for req: workspace, resolve, plan, prepare and
// build per step, publish, announce.
func (d *Driver) Run(ctx context.Context, req resolver.Request) (*Report, error) {
	report := &Report{Progress: &domain.Progress{}}
	record := func(stage domain.Stage, detail string) {
		report.Progress.Record(stage, detail, d.deps.Clock.Now())
	}
	logger := d.deps.Logger.With().Str("branch", req.Branch.String()).Bool("mock", d.deps.Ctrl.Mode().IsMock()).Logger()

	if err := ctxutil.Canceled(ctx); err != nil {
		return report, err
	}

	tree, runner, err := d.workspace(ctx, record)
	if err != nil {
		return report, relerrors.Prerequisite("workspace", err)
	}

	refs, err := git.NewInspector(tree)
	if err != nil {
		return report, relerrors.Prerequisite("workspace", err)
	}
	res, err := resolver.New(refs, d.deps.Status, logger).Resolve(ctx, req)
	if err != nil {
		return report, err
	}
	record(domain.StageResolve, fmt.Sprintf("candidate %s, primary %s", res.Candidate, res.Set.Primary().Version))

	sess, err := domain.NewSession(domain.SessionParams{
		Branch:    req.Branch,
		Parent:    res.Parent,
		Candidate: res.Candidate,
		Set:       res.Set,
		Workspace: d.cfg.Workspace,
		Tree:      tree,
		Mode:      d.deps.Ctrl.Mode(),
		Official:  req.Official,
	})
	if err != nil {
		return report, relerrors.Resolution("session", err)
	}
	report.Session = sess
	logger = logger.With().Str("session_id", sess.ID()).Logger()

	steps := Plan(sess)
	report.Steps = steps
	record(domain.StagePlan, fmt.Sprintf("%d step(s)", len(steps)))
	if d.deps.Preview != nil {
		d.deps.Preview(sess, steps)
	}

	built, err := d.prepareAndBuild(ctx, sess, runner, refs, steps, record, logger)
	report.Built = built
	if err != nil {
		return report, err
	}

	opts := append([]publish.Option{
		publish.WithDocsRefresh(d.cfg.DocsRefresh),
		publish.WithRecorder(record),
		publish.WithLogger(logger),
	}, d.deps.Publish...)
	out, err := publish.New(sess, runner, d.deps.Ctrl, d.deps.Confirm, opts...).Publish(ctx, built)
	report.Outcome = out
	if err != nil {
		return report, err
	}

	if d.deps.Announcer != nil {
		notes := out.Notes
		if notes == "" && sess.IsMock() {
			notes = publish.MockReleaseNotes
		}
		msg, err := d.deps.Announcer.Send(ctx, announce.DataFor(sess, notes, out.ReleaseURL))
		if err != nil {
			return report, err
		}
		report.Message = msg
		if len(msg.To) > 0 {
			record(domain.StageAnnounce, "mailed "+msg.Subject)
		}
	}

	logger.Info().Int("steps", len(steps)).Msg("session complete")
	return report, nil
}

// prepareAndBuild runs prepare then build for every step in plan order and
// checks the publish gate.
func (d *Driver) prepareAndBuild(ctx context.Context, sess domain.Session, runner git.Runner, refs prepare.Refs,
	steps []domain.Step, record publish.Recorder, logger zerolog.Logger,
) ([]publish.Built, error) {
	prep := prepare.New(sess, runner, refs, d.deps.Ctrl, d.cfg.Prepare, logger)
	bopts := d.cfg.Build
	bopts.NoClean = d.cfg.NoClean
	drv := build.New(sess.Tree(), d.deps.Ctrl, bopts, logger)
	gate := NewGate(steps)

	built := make([]publish.Built, 0, len(steps))
	for _, st := range steps {
		res, err := prep.Prepare(ctx, st)
		if err != nil {
			return built, err
		}
		if res.Skipped {
			record(domain.StagePrepare, fmt.Sprintf("reused tag %s at %s", st.Version(), shortHash(res.Commit)))
		} else {
			record(domain.StagePrepare, fmt.Sprintf("tagged %s on %s at %s", st.Version(), st.Branch, shortHash(res.Commit)))
		}

		dir, err := drv.Build(ctx, st.Version())
		if err != nil {
			return built, err
		}
		gate.MarkBuilt(st.Label())
		built = append(built, publish.Built{Step: st, ArtifactDir: dir})
		record(domain.StageBuild, fmt.Sprintf("built %s into %s", st.Version(), dir))
	}

	if err := gate.Open(); err != nil {
		return built, relerrors.Publish("gate", err)
	}
	return built, nil
}

// workspace clones the remote into a fresh tree, or reuses a leftover one
// under NoClean.
func (d *Driver) workspace(ctx context.Context, record publish.Recorder) (string, *git.CLIRunner, error) {
	if d.cfg.Workspace == "" || d.cfg.RepoName == "" {
		return "", nil, fmt.Errorf("workspace and repository name: %w", relerrors.ErrEmptyValue)
	}
	tree := filepath.Join(d.cfg.Workspace, d.cfg.RepoName)

	_, err := os.Stat(tree)
	switch {
	case err == nil && d.cfg.NoClean:
		runner, err := git.NewRunner(ctx, tree, d.deps.Ctrl)
		if err != nil {
			return "", nil, err
		}
		record(domain.StageWorkspace, "reused "+tree)
		return tree, runner, nil
	case err == nil:
		if err := os.RemoveAll(tree); err != nil {
			return "", nil, fmt.Errorf("failed to remove leftover tree %s: %w", tree, err)
		}
		d.deps.Logger.Info().Str("tree", tree).Msg("removed leftover tree")
	case !errors.Is(err, os.ErrNotExist):
		return "", nil, err
	}

	runner, err := git.Clone(ctx, d.deps.Ctrl, d.cfg.Remote, tree)
	if err != nil {
		return "", nil, err
	}
	record(domain.StageWorkspace, fmt.Sprintf("cloned %s into %s", d.cfg.Remote, tree))
	return tree, runner, nil
}

// repoName derives a directory name from a clone URL or path.
func repoName(remote string) string {
	base := strings.TrimSuffix(path.Base(strings.TrimRight(remote, "/")), ".git")
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[i+1:]
	}
	if base == "" || base == "." || base == "/" {
		return "repo"
	}
	return base
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
