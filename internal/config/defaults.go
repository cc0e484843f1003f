package config

import (
	"github.com/spf13/viper"

	"github.com/mrz1836/relcut/internal/constants"
)

// Default values for every section. Components apply the same defaults when
// handed a zero value; these make them visible in `relcut config show`.
const (
	defaultVersionFile   = "pkg/version/base.go"
	defaultBuildCommand  = "make release"
	defaultOutputDir     = "_output"
	defaultSourceTag     = "latest"
	defaultTokenEnv      = "GITHUB_TOKEN"
	defaultPasswordEnv   = "RELCUT_REGISTRY_PASSWORD"
	defaultTarballGlob   = "*.tar.gz"
	defaultMailCommand   = "sendmail -t"
	defaultStorageRegion = "us-east-1"
)

// DefaultConfig returns a new Config with the built-in default values.
// These defaults are the base layer that config files, environment
// variables and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Repo: RepoConfig{
			VersionFile: defaultVersionFile,
		},
		Build: BuildConfig{
			Command:   defaultBuildCommand,
			OutputDir: defaultOutputDir,
		},
		Storage: StorageConfig{
			Region: defaultStorageRegion,
		},
		Registry: RegistryConfig{
			SourceTag:   defaultSourceTag,
			PasswordEnv: defaultPasswordEnv,
		},
		Hosting: HostingConfig{
			TokenEnv:    defaultTokenEnv,
			TarballGlob: defaultTarballGlob,
		},
		Mail: MailConfig{
			Command: defaultMailCommand,
		},
		BuildStatus: BuildStatusConfig{
			Timeout: constants.DefaultBuildStatusTimeout,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Every key is registered, even empty ones, so AutomaticEnv can bind it.
// It must run after the env prefix is set.
// IMPORTANT: Keys must match the mapstructure tag names exactly.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("repo.remote", d.Repo.Remote)
	v.SetDefault("repo.name", d.Repo.Name)
	v.SetDefault("repo.version_file", d.Repo.VersionFile)

	v.SetDefault("build.command", d.Build.Command)
	v.SetDefault("build.output_dir", d.Build.OutputDir)

	v.SetDefault("docs.version_command", d.Docs.VersionCommand)
	v.SetDefault("docs.refresh_command", d.Docs.RefreshCommand)

	v.SetDefault("storage.bucket", d.Storage.Bucket)
	v.SetDefault("storage.prefix", d.Storage.Prefix)
	v.SetDefault("storage.region", d.Storage.Region)
	v.SetDefault("storage.endpoint", d.Storage.Endpoint)

	v.SetDefault("registry.repository", d.Registry.Repository)
	v.SetDefault("registry.source_tag", d.Registry.SourceTag)
	v.SetDefault("registry.username", d.Registry.Username)
	v.SetDefault("registry.password_env", d.Registry.PasswordEnv)
	v.SetDefault("registry.plain_http", d.Registry.PlainHTTP)

	v.SetDefault("hosting.owner", d.Hosting.Owner)
	v.SetDefault("hosting.repo", d.Hosting.Repo)
	v.SetDefault("hosting.token_env", d.Hosting.TokenEnv)
	v.SetDefault("hosting.api_url", d.Hosting.APIURL)
	v.SetDefault("hosting.tarball_glob", d.Hosting.TarballGlob)

	v.SetDefault("mail.command", d.Mail.Command)
	v.SetDefault("mail.from", d.Mail.From)
	v.SetDefault("mail.operator", d.Mail.Operator)
	// Lists stay nil unless set; binding keeps them reachable from the env.
	_ = v.BindEnv("mail.to")
	_ = v.BindEnv("mail.cc")

	v.SetDefault("buildstatus.url", d.BuildStatus.URL)
	v.SetDefault("buildstatus.timeout", d.BuildStatus.Timeout.String())

	v.SetDefault("workspace.dir", d.Workspace.Dir)
}
