package testutil

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// VersionFile is a minimal version source file with every stamped identifier.
const VersionFile = `package version

var (
	gitMajor   string = ""
	gitMinor   string = ""
	gitVersion string = "v0.0.0-master+$Format:%H$"
)
`

// Git runs git in dir and fails the test on error. Returns trimmed stdout.
func Git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...) // #nosec G204
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %v failed: %v: %s", args, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String())
}

// ConfigureUser sets a commit identity in the repo at dir.
func ConfigureUser(t *testing.T, dir string) {
	t.Helper()
	Git(t, dir, "config", "user.email", "test@example.com")
	Git(t, dir, "config", "user.name", "Test User")
}

// NewOrigin creates a bare repository whose master holds README.md and
// pkg/version/base.go, with each extra branch pointing at master.
func NewOrigin(t *testing.T, branches ...string) string {
	t.Helper()
	src := t.TempDir()
	Git(t, src, "init", "--initial-branch=master")
	ConfigureUser(t, src)
	WriteFile(t, filepath.Join(src, "README.md"), "readme\n")
	WriteFile(t, filepath.Join(src, "pkg", "version", "base.go"), VersionFile)
	Git(t, src, "add", "-A")
	Git(t, src, "commit", "-m", "initial")
	for _, b := range branches {
		Git(t, src, "branch", b)
	}

	bare := filepath.Join(t.TempDir(), "origin.git")
	Git(t, filepath.Dir(bare), "clone", "--bare", src, bare)
	return bare
}

// Clone clones origin into a fresh directory with a commit identity and returns its path.
func Clone(t *testing.T, origin string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "repo")
	Git(t, filepath.Dir(dir), "clone", origin, dir)
	ConfigureUser(t, dir)
	return dir
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadFile returns the content of path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
