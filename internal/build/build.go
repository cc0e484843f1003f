// Package build runs the artifact toolchain for one prepared label and keeps
// its output under a version-suffixed directory.
package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/constants"
	"github.com/mrz1836/relcut/internal/ctxutil"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/version"
)

// DefaultOutputDir is the directory the build command writes, relative to the tree.
const DefaultOutputDir = "_output"

// Options configures a Driver.
type Options struct {
	// Command is run through sh -c in the tree.
	Command string
	// OutputDir is relative to the tree.
	OutputDir string
	// NoClean reuses a leftover output directory instead of rebuilding.
	NoClean bool
	// Output receives the build's live output. Nil discards it.
	Output io.Writer
}

// Driver builds labels in one tree.
type Driver struct {
	tree   string
	ctrl   *execmode.Controller
	opts   Options
	logger zerolog.Logger
}

// New creates a Driver for tree.
func New(tree string, ctrl *execmode.Controller, opts Options, logger zerolog.Logger) *Driver {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	return &Driver{tree: tree, ctrl: ctrl, opts: opts, logger: logger}
}

// ArtifactDir returns where the output of v is kept.
func (d *Driver) ArtifactDir(v version.SemVer) string {
	return filepath.Join(d.tree, d.opts.OutputDir+"-"+v.String())
}

// Build builds the tree at its current checkout as v and returns the
// artifact directory. Failures carry the build kind; outputs of earlier
// versions are left in place.
func (d *Driver) Build(ctx context.Context, v version.SemVer) (string, error) {
	dir, err := d.build(ctx, v)
	if err != nil {
		return "", relerrors.Build("build "+v.String(), err)
	}
	return dir, nil
}

func (d *Driver) build(ctx context.Context, v version.SemVer) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}
	if d.opts.Command == "" {
		return "", fmt.Errorf("build.command: %w", relerrors.ErrCommandNotConfigured)
	}
	log := d.logger.With().Str("version", v.String()).Logger()

	dest := d.ArtifactDir(v)
	if _, err := os.Stat(dest); err == nil {
		if d.opts.NoClean {
			log.Info().Str("dir", dest).Msg("reusing output from a previous session")
			return dest, nil
		}
		log.Info().Str("dir", dest).Msg("removing output from a previous session")
		if err := os.RemoveAll(dest); err != nil {
			return "", fmt.Errorf("failed to remove leftover output: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to inspect %s: %w", dest, err)
	}

	out := filepath.Join(d.tree, d.opts.OutputDir)
	if err := os.RemoveAll(out); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", out, err)
	}
	if err := excludeFromGit(d.tree, "/"+constants.VersionMarkerFile, "/"+d.opts.OutputDir+"*"); err != nil {
		return "", err
	}

	marker := filepath.Join(d.tree, constants.VersionMarkerFile)
	if err := os.WriteFile(marker, []byte(v.String()+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("failed to write version marker: %w", err)
	}

	cmd := execmode.Shell(d.tree, d.opts.Command)
	cmd.Env = []string{constants.VersionEnvVar + "=" + v.String()}
	cmd.LiveOutput = d.opts.Output

	log.Info().Str("command", d.opts.Command).Msg("building")
	res := d.ctrl.Run(ctx, cmd)
	if !res.OK {
		return "", fmt.Errorf("%w: exit %d: %w", relerrors.ErrBuildFailed, res.ExitCode, res.Err)
	}

	if info, err := os.Stat(out); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%s: %w", out, relerrors.ErrBuildOutputMissing)
	}
	if err := os.Rename(out, dest); err != nil {
		return "", fmt.Errorf("failed to move output to %s: %w", dest, err)
	}

	log.Info().Str("dir", dest).Dur("duration", res.Duration).Msg("built")
	return dest, nil
}

// excludeFromGit adds patterns to the tree's .git/info/exclude so build
// byproducts never end up in a release commit.
func excludeFromGit(tree string, patterns ...string) error {
	path := filepath.Join(tree, ".git", "info", "exclude")

	present := map[string]bool{}
	if f, err := os.Open(path); err == nil { //#nosec G304 -- path is inside the workspace tree
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			present[strings.TrimSpace(sc.Text())] = true
		}
		_ = f.Close()
	}

	var missing []string
	for _, p := range patterns {
		if !present[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //#nosec G304 -- path is inside the workspace tree
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // best-effort close after write error check
	if _, err := f.WriteString("\n" + strings.Join(missing, "\n") + "\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
