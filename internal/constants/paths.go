package constants

// Log file names.
const (
	// CLILogFileName is the name of the rotated transcript log.
	// This file is located in ~/.relcut/logs/relcut.log
	CLILogFileName = "relcut.log"
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global relcut configuration file.
	// This file is located in the relcut home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the project-level configuration directory.
	ProjectConfigDir = ".relcut"
)
