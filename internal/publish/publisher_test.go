package publish

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/relcut/internal/domain"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/git"
	"github.com/mrz1836/relcut/internal/testutil"
	"github.com/mrz1836/relcut/internal/version"
)

type scriptedConfirmer struct {
	answers   map[string]bool
	questions []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, q string) (bool, error) {
	c.questions = append(c.questions, q)
	if ans, ok := c.answers[q]; ok {
		return ans, nil
	}
	return true, nil
}

type journal struct{ entries []string }

func (j *journal) record(stage domain.Stage, detail string) {
	j.entries = append(j.entries, string(stage)+": "+detail)
}

type pubFixture struct {
	origin string
	tree   string
	ctrl   *execmode.Controller
	runner *git.CLIRunner
	sess   domain.Session
	built  []Built
}

// newBranchFixture prepares release-1.6 cut from master: alpha tagged on
// master, beta tagged on the new branch.
func newBranchFixture(t *testing.T, mode execmode.Mode) pubFixture {
	t.Helper()
	ctx := context.Background()
	origin := testutil.NewOrigin(t)
	tree := testutil.Clone(t, origin)
	ctrl := execmode.NewController(mode)
	runner, err := git.NewRunner(ctx, tree, ctrl)
	require.NoError(t, err)

	alpha := version.Entry{Label: version.LabelAlpha, Version: version.MustParseSemVer("v1.7.0-alpha.0")}
	beta := version.Entry{Label: version.LabelBeta, Version: version.MustParseSemVer("v1.6.0-beta.0"), Unfrozen: true}
	set, err := version.NewSet(version.LabelBeta, alpha, beta)
	require.NoError(t, err)
	sess, err := domain.NewSession(domain.SessionParams{
		Branch: version.MustParseBranch("release-1.6"),
		Parent: version.Master,
		Set:    set,
		Tree:   tree,
		Mode:   mode,
	})
	require.NoError(t, err)

	testutil.Git(t, tree, "tag", "-a", "v1.7.0-alpha.0", "-m", "alpha")
	testutil.Git(t, tree, "checkout", "-b", "release-1.6")
	testutil.WriteFile(t, filepath.Join(tree, "CHANGES"), "beta\n")
	testutil.Git(t, tree, "add", "-A")
	testutil.Git(t, tree, "commit", "-m", "Bump version to v1.6.0-beta.0")
	testutil.Git(t, tree, "tag", "-a", "v1.6.0-beta.0", "-m", "beta")

	built := []Built{
		{Step: domain.Step{Entry: alpha, Branch: version.Master, Checkout: domain.OnParent}, ArtifactDir: t.TempDir()},
		{Step: domain.Step{Entry: beta, Branch: sess.Branch(), Parent: version.Master, Checkout: domain.CreateBranch, Primary: true}, ArtifactDir: tarballDir(t)},
	}
	return pubFixture{origin: origin, tree: tree, ctrl: ctrl, runner: runner, sess: sess, built: built}
}

func remoteRefs(t *testing.T, origin, pattern string) string {
	t.Helper()
	return testutil.Git(t, origin, "for-each-ref", "--format=%(refname:short)", pattern)
}

func TestPublisher_PushesTagsAndBranches(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	j := &journal{}
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{}, WithRecorder(j.record))

	out, err := p.Publish(context.Background(), f.built)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.7.0-alpha.0", "v1.6.0-beta.0"}, out.Tags)
	assert.Equal(t, []string{"release-1.6", "master"}, out.Branches)

	assert.Equal(t, "v1.6.0-beta.0\nv1.7.0-alpha.0", remoteRefs(t, f.origin, "refs/tags"))
	assert.Equal(t, "master\nrelease-1.6", remoteRefs(t, f.origin, "refs/heads"))
	assert.Equal(t, []string{
		"push: pushed tag v1.7.0-alpha.0",
		"push: pushed tag v1.6.0-beta.0",
		"push: pushed branch release-1.6",
		"push: pushed branch master",
	}, j.entries)
}

func TestPublisher_MockPushIsDryRun(t *testing.T) {
	f := newBranchFixture(t, execmode.Mock)
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{})

	out, err := p.Publish(context.Background(), f.built)
	require.NoError(t, err)
	assert.Len(t, out.Tags, 2)
	assert.Empty(t, remoteRefs(t, f.origin, "refs/tags"))
	assert.Equal(t, "master", remoteRefs(t, f.origin, "refs/heads"))
}

func TestPublisher_DeclinedPush(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	confirm := &scriptedConfirmer{answers: map[string]bool{
		"Push 2 tag(s) and [release-1.6 master] to origin (real)?": false,
	}}
	p := New(f.sess, f.runner, f.ctrl, confirm)

	_, err := p.Publish(context.Background(), f.built)
	require.ErrorIs(t, err, relerrors.ErrOperationCanceled)
	assert.Equal(t, relerrors.KindPublish, relerrors.KindOf(err))
	assert.Equal(t, "push", relerrors.StepOf(err))
	assert.Empty(t, remoteRefs(t, f.origin, "refs/tags"))
}

func TestPublisher_RefreshDocsCommitsOnMaster(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{},
		WithDocsRefresh(`mkdir -p docs && echo "$RELCUT_BRANCH" > docs/latest.txt`))

	out, err := p.Publish(context.Background(), f.built)
	require.NoError(t, err)
	assert.Equal(t, []string{"release-1.6", "master", "master"}, out.Branches)

	assert.Equal(t, "Update docs for v1.6.0-beta.0", testutil.Git(t, f.origin, "log", "-1", "--format=%s", "master"))
	assert.Equal(t, "release-1.6", testutil.Git(t, f.origin, "show", "master:docs/latest.txt"))
}

func TestPublisher_RefreshDocsCleanTreeSkipsCommit(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{}, WithDocsRefresh("true"))

	_, err := p.Publish(context.Background(), f.built)
	require.NoError(t, err)
	assert.Equal(t, "initial", testutil.Git(t, f.origin, "log", "-1", "--format=%s", "master"))
}

func TestPublisher_Artifacts(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	testutil.WriteFile(t, filepath.Join(f.built[0].ArtifactDir, "bin", "tool"), "alpha\n")
	fake := newFakeS3()
	storage := NewStorage(fake, StorageConfig{Bucket: "releases"}, f.ctrl, zerolog.Nop())
	j := &journal{}
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{}, WithStorage(storage), WithRecorder(j.record))

	out, err := p.Publish(context.Background(), f.built)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Uploaded)
	assert.Equal(t, []string{"v1.6.0-beta.0/product-v1.4.2.tar.gz", "v1.7.0-alpha.0/bin/tool"}, fake.keys())
	assert.Contains(t, j.entries, "artifacts: uploaded v1.7.0-alpha.0 to v1.7.0-alpha.0/")
}

func TestPublisher_OfficialWritesStable(t *testing.T) {
	ctx := context.Background()
	origin := testutil.NewOrigin(t, "release-1.4")
	tree := testutil.Clone(t, origin)
	ctrl := execmode.NewController(execmode.Real)
	runner, err := git.NewRunner(ctx, tree, ctrl)
	require.NoError(t, err)
	require.NoError(t, runner.Checkout(ctx, "release-1.4"))
	testutil.Git(t, tree, "tag", "-a", "v1.4.0", "-m", "official")

	official := version.Entry{Label: version.LabelOfficial, Version: version.MustParseSemVer("v1.4.0")}
	set, err := version.NewSet(version.LabelOfficial, official)
	require.NoError(t, err)
	sess, err := domain.NewSession(domain.SessionParams{
		Branch: version.MustParseBranch("release-1.4"), Set: set, Tree: tree, Mode: execmode.Real, Official: true,
	})
	require.NoError(t, err)

	fake := newFakeS3()
	storage := NewStorage(fake, StorageConfig{Bucket: "releases", Prefix: "product"}, ctrl, zerolog.Nop())
	p := New(sess, runner, ctrl, &scriptedConfirmer{}, WithStorage(storage))

	built := []Built{{
		Step:        domain.Step{Entry: official, Branch: sess.Branch(), Checkout: domain.OnBranch, Primary: true},
		ArtifactDir: tarballDir(t),
	}}
	out, err := p.Publish(ctx, built)
	require.NoError(t, err)
	assert.Equal(t, []string{"release-1.4"}, out.Branches)
	assert.Equal(t, "v1.4.0\n", fake.puts["product/stable.txt"].body)
}

func TestPublisher_HostingUsesPrimary(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	gh := newFakeGitHub(t)
	gh.tags["v1.6.0-beta.0"] = true
	hosting := NewHosting(gh.client(t), HostingConfig{Owner: "acme", Repo: "product"}, f.ctrl, zerolog.Nop())
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{}, WithHosting(hosting))

	out, err := p.Publish(context.Background(), f.built)
	require.NoError(t, err)
	assert.Equal(t, "* fixed things", out.Notes)
	assert.Equal(t, "https://github.example/acme/product/releases/tag/v1.6.0-beta.0", out.ReleaseURL)
	assert.Equal(t, []string{"product-v1.4.2.tar.gz"}, gh.uploads)
}

func TestPublisher_HostingFailureKeepsEarlierPhases(t *testing.T) {
	f := newBranchFixture(t, execmode.Real)
	gh := newFakeGitHub(t)
	hosting := NewHosting(gh.client(t), HostingConfig{Owner: "acme", Repo: "product"}, f.ctrl, zerolog.Nop())
	p := New(f.sess, f.runner, f.ctrl, &scriptedConfirmer{}, WithHosting(hosting))

	out, err := p.Publish(context.Background(), f.built)
	require.ErrorIs(t, err, relerrors.ErrTagNotOnRemote)
	assert.Equal(t, "hosting", relerrors.StepOf(err))
	assert.Len(t, out.Tags, 2)
	assert.Equal(t, "v1.6.0-beta.0\nv1.7.0-alpha.0", remoteRefs(t, f.origin, "refs/tags"))
}
