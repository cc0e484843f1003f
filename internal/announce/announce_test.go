package announce

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/relcut/internal/clock"
	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/version"
)

var testCfg = Config{
	From:     "Release Bot <release@example.com>",
	Operator: "operator@example.com",
	To:       []string{"dev@example.com"},
	Cc:       []string{"qa@example.com", "ops@example.com"},
}

func newSession(t *testing.T, mode execmode.Mode, parent string) domain.Session {
	t.Helper()
	alpha := version.Entry{Label: version.LabelAlpha, Version: version.MustParseSemVer("v1.7.0-alpha.0")}
	beta := version.Entry{Label: version.LabelBeta, Version: version.MustParseSemVer("v1.6.0-beta.0"), Unfrozen: true}
	set, err := version.NewSet(version.LabelBeta, alpha, beta)
	require.NoError(t, err)

	p := domain.SessionParams{
		ID:        "sess-1",
		Branch:    version.MustParseBranch("release-1.6"),
		Candidate: version.MustParseBuildID("v1.6.0-alpha.3-12-gabcdef0"),
		Set:       set,
		Tree:      "/tmp/ws/repo",
		Mode:      mode,
	}
	if parent != "" {
		p.Parent = version.MustParseBranch(parent)
	}
	s, err := domain.NewSession(p)
	require.NoError(t, err)
	return s
}

func fixedClock() clock.Clock {
	return clock.Fixed(time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC))
}

func TestDataFor(t *testing.T) {
	d := DataFor(newSession(t, execmode.Mock, "master"), "notes", "https://example.com/r")
	assert.Equal(t, BranchCreated, d.Kind())
	assert.Equal(t, "sess-1", d.SessionID)
	assert.Equal(t, "master", d.Parent)
	assert.Equal(t, "v1.6.0-beta.0", d.Primary)
	assert.Equal(t, "v1.6.0-alpha.3-12-gabcdef0", d.Candidate)
	assert.True(t, d.Mock)
	assert.Equal(t, []VersionLine{
		{Label: "alpha", Version: "v1.7.0-alpha.0"},
		{Label: "beta", Version: "v1.6.0-beta.0", Primary: true},
	}, d.Versions)

	d = DataFor(newSession(t, execmode.Real, ""), "", "")
	assert.Equal(t, ReleasePublished, d.Kind())
	assert.Empty(t, d.Parent)
}

func TestCompose_Recipients(t *testing.T) {
	a := New(testCfg, execmode.NewController(execmode.Mock), fixedClock(), zerolog.Nop())

	t.Run("mock goes to the operator only", func(t *testing.T) {
		m, err := a.Compose(DataFor(newSession(t, execmode.Mock, ""), "n", ""))
		require.NoError(t, err)
		assert.Equal(t, []string{"operator@example.com"}, m.To)
		assert.Empty(t, m.Cc)
		assert.Equal(t, "[MOCK] Released v1.6.0-beta.0 on release-1.6", m.Subject)
	})

	t.Run("real goes to the distribution list", func(t *testing.T) {
		m, err := a.Compose(DataFor(newSession(t, execmode.Real, "master"), "n", ""))
		require.NoError(t, err)
		assert.Equal(t, []string{"dev@example.com"}, m.To)
		assert.Equal(t, []string{"qa@example.com", "ops@example.com"}, m.Cc)
		assert.Equal(t, "Release branch release-1.6 created (v1.6.0-beta.0)", m.Subject)
	})

	t.Run("missing recipients", func(t *testing.T) {
		empty := New(Config{}, execmode.NewController(execmode.Mock), fixedClock(), zerolog.Nop())
		_, err := empty.Compose(DataFor(newSession(t, execmode.Mock, ""), "n", ""))
		require.ErrorIs(t, err, relerrors.ErrMailFailed)
		assert.Equal(t, relerrors.KindAnnounce, relerrors.KindOf(err))
	})
}

func TestCompose_Bodies(t *testing.T) {
	a := New(testCfg, execmode.NewController(execmode.Real), fixedClock(), zerolog.Nop())

	m, err := a.Compose(DataFor(newSession(t, execmode.Real, "master"), "* <fixed> things", "https://example.com/r"))
	require.NoError(t, err)

	assert.Contains(t, m.Text, "Release branch release-1.6 has been created from master.")
	assert.Contains(t, m.Text, "beta     v1.6.0-beta.0 (primary)")
	assert.Contains(t, m.Text, "Release page: https://example.com/r")
	assert.Contains(t, m.Text, "* <fixed> things")
	assert.Contains(t, m.Text, "Sent by relcut session sess-1.")

	assert.Contains(t, m.HTML, "<b>release-1.6</b>")
	assert.Contains(t, m.HTML, "* &lt;fixed&gt; things", "notes are escaped in HTML")
	assert.Contains(t, m.HTML, `<a href="https://example.com/r">`)
}

func TestMessage_Bytes(t *testing.T) {
	a := New(testCfg, execmode.NewController(execmode.Real), fixedClock(), zerolog.Nop())
	m, err := a.Compose(DataFor(newSession(t, execmode.Real, ""), "notes", ""))
	require.NoError(t, err)

	raw, err := m.Bytes()
	require.NoError(t, err)

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, `"Release Bot" <release@example.com>`, msg.Header.Get("From"))
	assert.Equal(t, "<dev@example.com>", msg.Header.Get("To"))
	assert.Equal(t, "<qa@example.com>, <ops@example.com>", msg.Header.Get("Cc"))
	assert.Equal(t, "Released v1.6.0-beta.0 on release-1.6", msg.Header.Get("Subject"))
	assert.Equal(t, "Mon, 02 Mar 2026 15:04:05 +0000", msg.Header.Get("Date"))

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(msg.Body, params["boundary"])
	var types []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		types = append(types, p.Header.Get("Content-Type"))
		body, err := io.ReadAll(p)
		require.NoError(t, err)
		assert.Contains(t, string(body), "v1.6.0-beta.0")
	}
	assert.Equal(t, []string{"text/plain; charset=utf-8", "text/html; charset=utf-8"}, types)
}

func TestMessage_BytesRejectsBadAddress(t *testing.T) {
	m := Message{From: "not an address", To: []string{"dev@example.com"}}
	_, err := m.Bytes()
	require.ErrorIs(t, err, errAddress)
}

// captureCommand writes a script that saves stdin to a file and returns
// the command line and the capture path.
func captureCommand(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-sendmail")
	out := filepath.Join(dir, "message.eml")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ncat > \"$1\"\n"), 0o700)) //nolint:gosec // test script
	return script + " " + out, out
}

func TestSend_MockStillMailsOperator(t *testing.T) {
	command, out := captureCommand(t)
	cfg := testCfg
	cfg.Command = command
	a := New(cfg, execmode.NewController(execmode.Mock), fixedClock(), zerolog.Nop())

	m, err := a.Send(context.Background(), DataFor(newSession(t, execmode.Mock, ""), "notes", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"operator@example.com"}, m.To)

	raw, err := os.ReadFile(out) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(raw), "To: <operator@example.com>")
	assert.NotContains(t, string(raw), "dev@example.com")
}

func TestSend_MockWithoutOperatorIsSkipped(t *testing.T) {
	command, out := captureCommand(t)
	cfg := testCfg
	cfg.Operator = ""
	cfg.Command = command
	a := New(cfg, execmode.NewController(execmode.Mock), fixedClock(), zerolog.Nop())

	m, err := a.Send(context.Background(), DataFor(newSession(t, execmode.Mock, ""), "notes", ""))
	require.NoError(t, err)
	assert.Empty(t, m.To)
	assert.NoFileExists(t, out, "nothing is mailed to the distribution list")

	_, err = New(cfg, execmode.NewController(execmode.Real), fixedClock(), zerolog.Nop()).
		Compose(DataFor(newSession(t, execmode.Real, ""), "notes", ""))
	require.NoError(t, err, "real runs still use the list")
}

func TestSend_CommandFailure(t *testing.T) {
	cfg := testCfg
	cfg.Command = "false"
	a := New(cfg, execmode.NewController(execmode.Real), fixedClock(), zerolog.Nop())

	_, err := a.Send(context.Background(), DataFor(newSession(t, execmode.Real, ""), "notes", ""))
	require.ErrorIs(t, err, relerrors.ErrMailFailed)
	assert.Equal(t, "send", relerrors.StepOf(err))
}
