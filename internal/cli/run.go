package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/relcut/internal/announce"
	"github.com/mrz1836/relcut/internal/build"
	"github.com/mrz1836/relcut/internal/buildstatus"
	"github.com/mrz1836/relcut/internal/clock"
	"github.com/mrz1836/relcut/internal/config"
	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/logging"
	"github.com/mrz1836/relcut/internal/prepare"
	"github.com/mrz1836/relcut/internal/publish"
	"github.com/mrz1836/relcut/internal/resolver"
	"github.com/mrz1836/relcut/internal/session"
	"github.com/mrz1836/relcut/internal/signal"
	"github.com/mrz1836/relcut/internal/tui"
	"github.com/mrz1836/relcut/internal/version"
)

// Env is the process environment a session reads.
type Env struct {
	Getenv func(string) string
	Finder config.ToolFinder
	Clock  clock.Clock
	// Interactive overrides the stdin terminal check when set.
	Interactive func() bool
}

// DefaultEnv returns the real process environment.
func DefaultEnv() Env {
	return Env{Getenv: os.Getenv, Finder: config.PathFinder{}, Clock: clock.RealClock{}}
}

// reportedError marks an error already rendered to the operator.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func isReported(err error) bool {
	var r reportedError
	return stderrors.As(err, &r)
}

// runRelease runs one session and renders its outcome. On failure it logs
// the failing step, prints the user-facing message and the progress journal.
func runRelease(cmd *cobra.Command, flags *GlobalFlags, rf *RunFlags, branchArg string, env Env) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	logger := InitLogger(flags.Verbose, flags.Quiet, stderr)
	defer CloseLogFile()

	h := signal.NewHandler(logger.WithContext(cmd.Context()))
	defer h.Stop()

	report, err := release(h.Context(), flags, rf, branchArg, env, stdout, stderr, logger)
	if err != nil {
		event := logger.Error().Err(err).
			Str("kind", relerrors.KindOf(err).String()).
			Str("step", relerrors.StepOf(err))
		if h.WasInterrupted() {
			event = event.Bool("interrupted", true)
		}
		event.Msg("session failed")

		tui.NewOutput(stderr).Error(err)
		if report != nil {
			tui.RenderJournal(stderr, report.Progress)
		}
		return reportedError{err: err}
	}

	tui.RenderSummary(stdout, report)
	return nil
}

// release validates the invocation, wires the collaborators from config
// and drives the session.
func release(ctx context.Context, flags *GlobalFlags, rf *RunFlags, branchArg string, env Env,
	stdout, stderr io.Writer, logger zerolog.Logger,
) (*session.Report, error) {
	req, err := parseRequest(branchArg, rf)
	if err != nil {
		return nil, relerrors.Validation("args", err)
	}

	cfg, err := config.Load(ctx, flags.ConfigFile)
	if err != nil {
		return nil, relerrors.Validation("config", err)
	}

	prompter := tui.NewPrompter(rf.Yes)
	if env.Interactive != nil {
		prompter = prompter.WithTerminal(env.Interactive)
	}
	if err := prompter.RequireInteractive(); err != nil {
		return nil, relerrors.Validation("prompt", err)
	}

	mode := execmode.FromNoMock(rf.NoMock)
	ctrl := execmode.NewController(mode, execmode.WithLogger(logger))

	opts, storage, err := publishOptions(ctx, cfg, ctrl, env, logger)
	if err != nil {
		return nil, err
	}

	prereq := config.Prerequisites{Finder: env.Finder, Getenv: env.Getenv}
	if storage != nil {
		prereq.Storage = storage
	}
	if err := config.CheckPrerequisites(ctx, cfg, mode == execmode.Real, prereq); err != nil {
		return nil, err
	}

	workspace, err := cfg.WorkspaceDir()
	if err != nil {
		return nil, relerrors.Prerequisite("workspace", err)
	}

	deps := session.Deps{
		Ctrl:    ctrl,
		Confirm: prompter,
		Publish: opts,
		Preview: func(s domain.Session, steps []domain.Step) { tui.RenderPlan(stdout, s, steps) },
		Clock:   env.Clock,
		Logger:  logger,
	}
	if cfg.BuildStatus.URL != "" {
		src, err := buildstatus.NewHTTPSource(cfg.BuildStatus.URL, cfg.BuildStatus.Timeout)
		if err != nil {
			return nil, relerrors.Prerequisite("buildstatus", err)
		}
		deps.Status = src
	}
	if cfg.Mail.HasMail() {
		deps.Announcer = announce.New(announce.Config{
			Command:  cfg.Mail.Command,
			From:     cfg.Mail.From,
			Operator: cfg.Mail.Operator,
			To:       cfg.Mail.To,
			Cc:       cfg.Mail.Cc,
		}, ctrl, env.Clock, logger)
	}

	var buildOutput io.Writer
	if !flags.Quiet {
		buildOutput = stderr
	}

	logger.Info().
		Str("remote", logging.SafeValue("remote", cfg.Repo.Remote)).
		Str("branch", req.Branch.String()).
		Str("mode", mode.String()).
		Str("workspace", workspace).
		Msg("starting release session")

	driver := session.NewDriver(session.Config{
		Remote:    cfg.Repo.Remote,
		Workspace: workspace,
		RepoName:  cfg.Repo.Name,
		NoClean:   rf.NoClean,
		Prepare: prepare.Options{
			VersionFile: cfg.Repo.VersionFile,
			DocsCommand: cfg.Docs.VersionCommand,
		},
		Build: build.Options{
			Command:   cfg.Build.Command,
			OutputDir: cfg.Build.OutputDir,
			NoClean:   rf.NoClean,
			Output:    buildOutput,
		},
		DocsRefresh: cfg.Docs.RefreshCommand,
	}, deps)

	return driver.Run(ctx, req)
}

// parseRequest validates the branch argument and the candidate override.
func parseRequest(branchArg string, rf *RunFlags) (resolver.Request, error) {
	branch, err := version.ParseBranch(branchArg)
	if err != nil {
		return resolver.Request{}, err
	}
	req := resolver.Request{Branch: branch, Official: rf.Official}
	if rf.BuildVersion != "" {
		if req.Override, err = version.ParseBuildID(rf.BuildVersion); err != nil {
			return resolver.Request{}, err
		}
	}
	return req, nil
}

// publishOptions builds the storage, registry and hosting publishers for
// the sections that are configured. The storage publisher is also returned
// for the pre-flight bucket check.
func publishOptions(ctx context.Context, cfg *config.Config, ctrl *execmode.Controller, env Env,
	logger zerolog.Logger,
) ([]publish.Option, *publish.Storage, error) {
	var (
		opts    []publish.Option
		storage *publish.Storage
	)

	if cfg.Storage.Bucket != "" {
		sc := publish.StorageConfig{
			Bucket:   cfg.Storage.Bucket,
			Prefix:   cfg.Storage.Prefix,
			Region:   cfg.Storage.Region,
			Endpoint: cfg.Storage.Endpoint,
		}
		client, err := publish.NewS3Client(ctx, sc)
		if err != nil {
			return nil, nil, relerrors.Prerequisite("storage", err)
		}
		storage = publish.NewStorage(client, sc, ctrl, logger)
		opts = append(opts, publish.WithStorage(storage))
	}

	if cfg.Registry.Repository != "" {
		opts = append(opts, publish.WithRegistry(publish.NewRegistry(publish.RegistryConfig{
			Repository: cfg.Registry.Repository,
			SourceTag:  cfg.Registry.SourceTag,
			Username:   cfg.Registry.Username,
			Password:   cfg.RegistryPassword(env.Getenv),
			PlainHTTP:  cfg.Registry.PlainHTTP,
		}, nil, ctrl, logger)))
	}

	if cfg.Hosting.Owner != "" {
		hc := publish.HostingConfig{
			Owner:       cfg.Hosting.Owner,
			Repo:        cfg.Hosting.Repo,
			Token:       cfg.HostingToken(env.Getenv),
			APIURL:      cfg.Hosting.APIURL,
			TarballGlob: cfg.Hosting.TarballGlob,
		}
		client, err := publish.NewGitHubClient(hc)
		if err != nil {
			return nil, nil, relerrors.Prerequisite("hosting", err)
		}
		opts = append(opts, publish.WithHosting(publish.NewHosting(client, hc, ctrl, logger)))
	}

	return opts, storage, nil
}
