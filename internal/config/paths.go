package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrz1836/relcut/internal/constants"
	"github.com/mrz1836/relcut/internal/errors"
)

// GlobalConfigDir returns the relcut home directory.
// RELCUT_HOME overrides the default of ~/.relcut.
//
// Returns an error if the home directory cannot be determined.
func GlobalConfigDir() (string, error) {
	if dir := os.Getenv(constants.HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.RelcutHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
// This is typically ~/.relcut/config.yaml on Unix systems.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the relative path to the project configuration file.
// This is always .relcut/config.yaml relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.GlobalConfigName)
}

// LogsDir returns the directory holding session transcripts.
func LogsDir() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.LogsDir), nil
}

// WorkspaceDir returns the configured workspace, defaulting to ~/.relcut/workspace.
func (c *Config) WorkspaceDir() (string, error) {
	if c.Workspace.Dir != "" {
		return c.Workspace.Dir, nil
	}
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.WorkspaceDir), nil
}
