package cli

import (
	"github.com/spf13/cobra"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates a completed session.
	ExitSuccess = 0
	// ExitError indicates any fatal condition.
	ExitError = 1
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// ConfigFile is merged over the global and project config files.
	ConfigFile string
}

// RunFlags holds the flags of a release session.
type RunFlags struct {
	// Yes pre-approves every confirmation prompt.
	Yes bool
	// NoMock makes the session real; the default is a mock run.
	NoMock bool
	// NoClean reuses a leftover tree and build outputs.
	NoClean bool
	// Official cuts an official release instead of a beta.
	Official bool
	// BuildVersion is the candidate build identifier, replacing the build-status query.
	BuildVersion string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "config file merged over ~/.relcut and .relcut")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// AddRunFlags adds the session flags to the root command.
func AddRunFlags(cmd *cobra.Command, flags *RunFlags) {
	cmd.Flags().BoolVarP(&flags.Yes, "yes", "y", false, "pre-approve every confirmation prompt")
	cmd.Flags().BoolVar(&flags.NoMock, "nomock", false, "perform real pushes and publishes")
	cmd.Flags().BoolVar(&flags.NoClean, "noclean", false, "reuse a leftover tree and build outputs")
	cmd.Flags().BoolVar(&flags.Official, "official", false, "cut an official release")
	cmd.Flags().StringVar(&flags.BuildVersion, "buildversion", "", "candidate build identifier (skips the build-status query)")
}
