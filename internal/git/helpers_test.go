package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// runGit runs a raw git command for test setup.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...) // #nosec G204
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err, "git %v", args)
	return strings.TrimSpace(string(out))
}

// createTestGitRepo initializes a temporary git repository with one commit on master.
func createTestGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	cmd := exec.CommandContext(context.Background(), "git", "init", "--initial-branch=master")
	cmd.Dir = dir
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to init git repo: %v", err)
	}

	configureUser(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("readme\n"), 0o600))
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-m", "initial")

	return dir
}

// createOrigin makes a bare remote seeded from a fresh repo and returns its path.
func createOrigin(t *testing.T) string {
	t.Helper()
	src := createTestGitRepo(t)
	runGit(t, src, "branch", "release-1.4")

	bare := filepath.Join(t.TempDir(), "origin.git")
	runGit(t, filepath.Dir(bare), "clone", "--bare", src, bare)
	return bare
}

func configureUser(t *testing.T, dir string) {
	t.Helper()
	_ = exec.CommandContext(context.Background(), "git", "-C", dir, "config", "user.email", "test@example.com").Run() // #nosec G204
	_ = exec.CommandContext(context.Background(), "git", "-C", dir, "config", "user.name", "Test User").Run()         // #nosec G204
}
