// Package constants provides centralized constant values used throughout relcut.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by relcut for organizing data.
const (
	// RelcutHome is the hidden directory name where relcut stores all its data.
	// This directory is created in the user's home directory.
	RelcutHome = ".relcut"

	// HomeEnvVar overrides the location of RelcutHome when set.
	HomeEnvVar = "RELCUT_HOME"

	// LogsDir is the directory name where transcript logs are stored.
	LogsDir = "logs"

	// WorkspaceDir is the default directory name for release working trees.
	WorkspaceDir = "workspace"
)

// Transcript rotation settings.
const (
	// LogMaxSizeMB is the maximum size of a transcript file before rotation.
	LogMaxSizeMB = 50

	// LogMaxBackups is the number of rotated transcripts kept on disk.
	LogMaxBackups = 20

	// LogMaxAgeDays is how long rotated transcripts are kept.
	LogMaxAgeDays = 90

	// LogCompress enables gzip compression for rotated transcripts.
	LogCompress = true
)

// Branch and remote names fixed by the release policy.
const (
	// MasterBranch is the development branch every release line is cut from.
	MasterBranch = "master"

	// ReleaseBranchPrefix prefixes every release branch name.
	ReleaseBranchPrefix = "release-"

	// DefaultRemote is the remote every push targets.
	DefaultRemote = "origin"
)

// Build toolchain conventions.
const (
	// VersionEnvVar carries the version being built into the build command.
	VersionEnvVar = "RELCUT_GIT_VERSION"

	// VersionMarkerFile is written to the tree root before each build.
	VersionMarkerFile = ".release-version"

	// ImagesDir is the directory under a build output holding OCI image layouts.
	ImagesDir = "images"

	// StableManifestName is the storage object naming the current official release.
	StableManifestName = "stable.txt"
)

// Timeouts for external queries.
const (
	// DefaultBuildStatusTimeout bounds each build-status query.
	DefaultBuildStatusTimeout = 30 * time.Second
)
