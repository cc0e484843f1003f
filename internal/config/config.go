// Package config provides configuration management for relcut with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (applied by the caller)
//  2. Environment variables (RELCUT_* prefix)
//  3. Explicit config file (--config)
//  4. Project config (.relcut/config.yaml)
//  5. Global config (~/.relcut/config.yaml)
//  6. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for relcut.
type Config struct {
	// Repo identifies the repository being released.
	Repo RepoConfig `yaml:"repo" json:"repo" mapstructure:"repo"`

	// Build holds the build toolchain invocation.
	Build BuildConfig `yaml:"build" json:"build" mapstructure:"build"`

	// Docs holds the documentation versioning commands.
	Docs DocsConfig `yaml:"docs" json:"docs" mapstructure:"docs"`

	// Storage is the object storage target for build outputs.
	Storage StorageConfig `yaml:"storage" json:"storage" mapstructure:"storage"`

	// Registry is the container registry target for images.
	Registry RegistryConfig `yaml:"registry" json:"registry" mapstructure:"registry"`

	// Hosting is the release hosting (GitHub) target.
	Hosting HostingConfig `yaml:"hosting" json:"hosting" mapstructure:"hosting"`

	// Mail holds the announcement settings.
	Mail MailConfig `yaml:"mail" json:"mail" mapstructure:"mail"`

	// BuildStatus is the build-status source queried for candidates.
	BuildStatus BuildStatusConfig `yaml:"buildstatus" json:"buildstatus" mapstructure:"buildstatus"`

	// Workspace holds the local release tree settings.
	Workspace WorkspaceConfig `yaml:"workspace" json:"workspace" mapstructure:"workspace"`
}

// RepoConfig identifies the repository.
type RepoConfig struct {
	// Remote is the clone URL of the repository. Pushes go to it as origin.
	Remote string `yaml:"remote" json:"remote" mapstructure:"remote"`

	// Name is the tree's directory name in the workspace.
	// Empty derives it from Remote.
	Name string `yaml:"name" json:"name" mapstructure:"name"`

	// VersionFile is the file stamped with each prepared version, relative to
	// the tree root.
	VersionFile string `yaml:"version_file" json:"version_file" mapstructure:"version_file"`
}

// BuildConfig holds the build toolchain invocation.
type BuildConfig struct {
	// Command is run through sh -c in the tree with RELCUT_GIT_VERSION set.
	Command string `yaml:"command" json:"command" mapstructure:"command"`

	// OutputDir is the build output directory relative to the tree.
	OutputDir string `yaml:"output_dir" json:"output_dir" mapstructure:"output_dir"`
}

// DocsConfig holds the documentation commands. Empty commands are skipped.
type DocsConfig struct {
	// VersionCommand versions the docs when a release branch is created.
	VersionCommand string `yaml:"version_command" json:"version_command" mapstructure:"version_command"`

	// RefreshCommand regenerates master's docs after the push.
	RefreshCommand string `yaml:"refresh_command" json:"refresh_command" mapstructure:"refresh_command"`
}

// StorageConfig is the object storage target. An empty bucket skips the phase.
type StorageConfig struct {
	Bucket string `yaml:"bucket" json:"bucket" mapstructure:"bucket"`
	Prefix string `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
	Region string `yaml:"region" json:"region" mapstructure:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
}

// RegistryConfig is the container registry target. An empty repository skips the phase.
type RegistryConfig struct {
	// Repository is host[:port]/namespace.
	Repository string `yaml:"repository" json:"repository" mapstructure:"repository"`

	// SourceTag is the tag inside each OCI image layout.
	SourceTag string `yaml:"source_tag" json:"source_tag" mapstructure:"source_tag"`

	Username string `yaml:"username" json:"username" mapstructure:"username"`

	// PasswordEnv names the environment variable holding the registry password.
	PasswordEnv string `yaml:"password_env" json:"password_env" mapstructure:"password_env"`

	PlainHTTP bool `yaml:"plain_http" json:"plain_http" mapstructure:"plain_http"`
}

// HostingConfig is the release hosting target. An empty owner skips the phase.
type HostingConfig struct {
	Owner string `yaml:"owner" json:"owner" mapstructure:"owner"`
	Repo  string `yaml:"repo" json:"repo" mapstructure:"repo"`

	// TokenEnv names the environment variable holding the API token.
	// The token itself is never stored in config files.
	TokenEnv string `yaml:"token_env" json:"token_env" mapstructure:"token_env"`

	// APIURL targets a GitHub Enterprise instance when set.
	APIURL string `yaml:"api_url" json:"api_url" mapstructure:"api_url"`

	// TarballGlob matches the release tarball inside the primary build output.
	TarballGlob string `yaml:"tarball_glob" json:"tarball_glob" mapstructure:"tarball_glob"`
}

// MailConfig holds the announcement settings. No recipients skips the phase.
type MailConfig struct {
	// Command is the submission command reading the message on stdin.
	Command string `yaml:"command" json:"command" mapstructure:"command"`

	From string `yaml:"from" json:"from" mapstructure:"from"`

	// Operator receives the announcement on mock runs.
	Operator string `yaml:"operator" json:"operator" mapstructure:"operator"`

	To []string `yaml:"to" json:"to" mapstructure:"to"`
	Cc []string `yaml:"cc" json:"cc" mapstructure:"cc"`
}

// BuildStatusConfig is the build-status source.
type BuildStatusConfig struct {
	// URL is queried with ?branch=<branch>. Empty requires --buildversion.
	URL string `yaml:"url" json:"url" mapstructure:"url"`

	// Timeout bounds each query.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// WorkspaceConfig holds the local release tree settings.
type WorkspaceConfig struct {
	// Dir holds the release tree. Empty means ~/.relcut/workspace.
	Dir string `yaml:"dir" json:"dir" mapstructure:"dir"`
}

// HasMail reports whether an announcement can be addressed in either mode.
func (c MailConfig) HasMail() bool {
	return c.Operator != "" || len(c.To) > 0 || len(c.Cc) > 0
}
