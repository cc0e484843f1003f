package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/relcut/internal/config"
	"github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/tui"
)

// ConfigShowFlags holds flags specific to the config show command.
type ConfigShowFlags struct {
	// OutputFormat specifies the output format (yaml or json).
	OutputFormat string
}

// AddConfigCommand adds the config command group to root.
func AddConfigCommand(root *cobra.Command, global *GlobalFlags) {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect relcut configuration",
		Args:  cobra.NoArgs,
	}
	configCmd.AddCommand(newConfigShowCmd(global, &ConfigShowFlags{}, os.Getenv))
	root.AddCommand(configCmd)
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd(global *GlobalFlags, flags *ConfigShowFlags, getenv func(string) string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective relcut configuration after merging defaults,
~/.relcut/config.yaml, .relcut/config.yaml, --config and RELCUT_* variables.

Credentials are never stored in config; only whether their environment
variables are set is shown.

Examples:
  relcut config show
  relcut config show --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), global.ConfigFile, flags, getenv)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "yaml", "output format (yaml or json)")
	return cmd
}

// credentialStatus reports whether each credential variable is set.
type credentialStatus struct {
	Variable string `json:"variable" yaml:"variable"`
	Set      bool   `json:"set" yaml:"set"`
}

type shownConfig struct {
	Config      *config.Config     `json:"config" yaml:"config"`
	Credentials []credentialStatus `json:"credentials" yaml:"credentials"`
}

func runConfigShow(ctx context.Context, w io.Writer, configFile string, flags *ConfigShowFlags, getenv func(string) string) error {
	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	shown := shownConfig{Config: cfg}
	for _, name := range []string{cfg.Hosting.TokenEnv, cfg.Registry.PasswordEnv} {
		if name != "" {
			shown.Credentials = append(shown.Credentials, credentialStatus{Variable: name, Set: getenv(name) != ""})
		}
	}

	switch flags.OutputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(shown)
	case "yaml":
		styles := tui.NewOutputStyles()
		_, _ = fmt.Fprintln(w, styles.Header.Render("relcut configuration"))
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(shown); err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		return enc.Close()
	default:
		return errors.Wrapf(errors.ErrConfigInvalid, "unknown output format %q (yaml or json)", flags.OutputFormat)
	}
}
