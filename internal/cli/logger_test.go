package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/relcut/internal/constants"
)

func TestSelectLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.DebugLevel, selectLevel(true, false))
	assert.Equal(t, zerolog.WarnLevel, selectLevel(false, true))
	assert.Equal(t, zerolog.InfoLevel, selectLevel(false, false))
}

func TestInitLoggerWithWriter_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Info().Str("branch", "release-1.4").Msg("resolved")

	out := buf.String()
	assert.Contains(t, out, `"ts":`)
	assert.Contains(t, out, `"event":"resolved"`)
	assert.Contains(t, out, `"branch":"release-1.4"`)
}

func TestSelectOutput_NonTerminalIsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Same(t, &buf, selectOutput(&buf))
}

func TestLogFilePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(constants.HomeEnvVar, home)

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "relcut.log"), path)
}

func TestTranscriptRedactsSecrets(t *testing.T) {
	home := t.TempDir()
	t.Setenv(constants.HomeEnvVar, home)

	w, err := createLogFileWriter()
	require.NoError(t, err)

	token := "ghp_" + "xxxxxxxxxxTESTONLYxxxxxxxxxx"
	logger := zerolog.New(w)
	logger.Info().Msg("hosting token " + token)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(home, "logs", "relcut.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), token)
	assert.Contains(t, string(data), "[REDACTED]")
}
