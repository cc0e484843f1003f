// Package cli provides the command-line interface for relcut.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/relcut/internal/tui"
)

// BuildInfo contains version information set at build time via ldflags.
type BuildInfo struct {
	// Version is the semantic version (e.g., "1.0.0").
	Version string
	// Commit is the git commit hash.
	Commit string
	// Date is the build date.
	Date string
}

// newRootCmd creates the root command. The root command itself runs a
// release session for its single branch argument.
func newRootCmd(flags *GlobalFlags, runFlags *RunFlags, info BuildInfo, env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relcut <branch>",
		Short: "relcut - cut, tag, build and publish releases",
		Long: `relcut cuts a release of a git repository.

Given master or a release-X.Y branch, it computes the next versions, tags
them, builds each one, and publishes the results to git, object storage,
the container registry and the release host, then announces the release.

Sessions are mock runs unless --nomock is given: local tagging and builds
happen, but pushes are dry runs and nothing leaves the machine.

Examples:
  relcut master --buildversion v1.6.0-alpha.4-2-gdeadbee
  relcut release-1.4 --yes
  relcut release-1.4 --official --nomock`,
		Version: formatVersion(info),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelease(cmd, flags, runFlags, args[0], env)
		},
		// Session errors are rendered by runRelease.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)
	AddRunFlags(cmd, runFlags)
	AddConfigCommand(cmd, flags)

	return cmd
}

// formatVersion creates the version string from build info.
func formatVersion(info BuildInfo) string {
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = "none"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, info BuildInfo) int {
	tui.CheckNoColor()

	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(&GlobalFlags{}, &RunFlags{}, info, DefaultEnv())
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !isReported(err) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		return ExitError
	}
	return ExitSuccess
}
