package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-github/v74/github"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/testutil"
	"github.com/mrz1836/relcut/internal/version"
)

// fakeGitHub emulates the release endpoints used by Hosting.
type fakeGitHub struct {
	mu          sync.Mutex
	tags        map[string]bool
	releases    map[int64]*github.RepositoryRelease
	nextID      int64
	keepDrafts  bool
	uploads     []string
	deleted     []int64
	calls       []string
	server      *httptest.Server
	notesCalled bool
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{tags: map[string]bool{}, releases: map[int64]*github.RepositoryRelease{}, nextID: 100}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/product/git/ref/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		tag := r.PathValue("tag")
		if !f.tags[tag] {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"ref": "refs/tags/" + tag})
	})
	mux.HandleFunc("GET /repos/acme/product/releases", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]*github.RepositoryRelease, 0, len(f.releases))
		for _, rel := range f.releases {
			list = append(list, rel)
		}
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("POST /repos/acme/product/releases", func(w http.ResponseWriter, r *http.Request) {
		var rel github.RepositoryRelease
		if err := json.NewDecoder(r.Body).Decode(&rel); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, "create")
		f.nextID++
		rel.ID = github.Ptr(f.nextID)
		rel.HTMLURL = github.Ptr(fmt.Sprintf("https://github.example/acme/product/releases/tag/%s", rel.GetTagName()))
		f.releases[f.nextID] = &rel
		writeJSON(w, http.StatusCreated, &rel)
	})
	mux.HandleFunc("POST /repos/acme/product/releases/generate-notes", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.notesCalled = true
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"name": "v1.4.2", "body": "* fixed things"})
	})
	mux.HandleFunc("GET /repos/acme/product/releases/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		rel, ok := f.releases[pathID(r)]
		if !ok {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, rel)
	})
	mux.HandleFunc("PATCH /repos/acme/product/releases/{id}", func(w http.ResponseWriter, r *http.Request) {
		var patch github.RepositoryRelease
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		rel, ok := f.releases[pathID(r)]
		if !ok {
			notFound(w)
			return
		}
		f.calls = append(f.calls, "edit")
		rel.Body = patch.Body
		writeJSON(w, http.StatusOK, rel)
	})
	mux.HandleFunc("DELETE /repos/acme/product/releases/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := pathID(r)
		f.calls = append(f.calls, "delete")
		f.deleted = append(f.deleted, id)
		if !f.keepDrafts {
			delete(f.releases, id)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /repos/acme/product/releases/assets/{id}", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, "delete-asset")
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /uploads/repos/acme/product/releases/{id}/assets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		name := r.URL.Query().Get("name")
		f.uploads = append(f.uploads, name)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 9, "name": name})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGitHub) client(t *testing.T) *github.Client {
	t.Helper()
	c := github.NewClient(f.server.Client())
	base, err := url.Parse(f.server.URL + "/")
	require.NoError(t, err)
	upload, err := url.Parse(f.server.URL + "/uploads/")
	require.NoError(t, err)
	c.BaseURL = base
	c.UploadURL = upload
	return c
}

func (f *fakeGitHub) addRelease(rel *github.RepositoryRelease) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[rel.GetID()] = rel
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func tarballDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, filepath.Join(dir, "product-v1.4.2.tar.gz"), "\x1f\x8b\x08\x00fake")
	return dir
}

func newTestHosting(t *testing.T, f *fakeGitHub, mode execmode.Mode) *Hosting {
	t.Helper()
	return NewHosting(f.client(t), HostingConfig{Owner: "acme", Repo: "product"}, execmode.NewController(mode), zerolog.Nop())
}

func yes() (bool, error) { return true, nil }
func no() (bool, error)  { return false, nil }

func TestHosting_CreatesRelease(t *testing.T) {
	f := newFakeGitHub(t)
	f.tags["v1.4.2"] = true
	h := newTestHosting(t, f, execmode.Real)

	u, err := h.Publish(context.Background(), ReleaseRequest{
		Version:     version.MustParseSemVer("v1.4.2"),
		ArtifactDir: tarballDir(t),
		Notes:       "notes",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://github.example/acme/product/releases/tag/v1.4.2", u)
	assert.Equal(t, []string{"create"}, f.calls)
	assert.Equal(t, []string{"product-v1.4.2.tar.gz"}, f.uploads)
	assert.False(t, f.releases[101].GetPrerelease())
}

func TestHosting_PrereleaseFlag(t *testing.T) {
	f := newFakeGitHub(t)
	f.tags["v1.5.0-beta.0"] = true
	h := newTestHosting(t, f, execmode.Real)

	_, err := h.Publish(context.Background(), ReleaseRequest{
		Version:     version.MustParseSemVer("v1.5.0-beta.0"),
		ArtifactDir: tarballDir(t),
	})
	require.NoError(t, err)
	assert.True(t, f.releases[101].GetPrerelease())
}

func TestHosting_TagMissingOnRemote(t *testing.T) {
	f := newFakeGitHub(t)
	h := newTestHosting(t, f, execmode.Real)

	_, err := h.Publish(context.Background(), ReleaseRequest{
		Version:     version.MustParseSemVer("v1.4.2"),
		ArtifactDir: tarballDir(t),
	})
	require.ErrorIs(t, err, relerrors.ErrTagNotOnRemote)
	assert.Empty(t, f.calls)
}

func TestHosting_UpdatesExisting(t *testing.T) {
	f := newFakeGitHub(t)
	f.tags["v1.4.2"] = true
	f.addRelease(&github.RepositoryRelease{
		ID:      github.Ptr(int64(7)),
		TagName: github.Ptr("v1.4.2"),
		HTMLURL: github.Ptr("https://github.example/acme/product/releases/tag/v1.4.2"),
		Assets:  []*github.ReleaseAsset{{ID: github.Ptr(int64(3)), Name: github.Ptr("product-v1.4.2.tar.gz")}},
	})
	h := newTestHosting(t, f, execmode.Real)
	req := ReleaseRequest{
		Version:       version.MustParseSemVer("v1.4.2"),
		ArtifactDir:   tarballDir(t),
		Notes:         "new notes",
		ConfirmUpdate: yes,
	}

	_, err := h.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"edit", "delete-asset"}, f.calls)
	assert.Equal(t, "new notes", f.releases[7].GetBody())

	t.Run("declined", func(t *testing.T) {
		f.calls = nil
		req.ConfirmUpdate = no
		_, err := h.Publish(context.Background(), req)
		require.ErrorIs(t, err, relerrors.ErrOperationCanceled)
		assert.Empty(t, f.calls)
	})
}

func TestHosting_ReplacesDraft(t *testing.T) {
	f := newFakeGitHub(t)
	f.tags["v1.4.2"] = true
	f.addRelease(&github.RepositoryRelease{ID: github.Ptr(int64(5)), TagName: github.Ptr("v1.4.2"), Draft: github.Ptr(true)})
	h := newTestHosting(t, f, execmode.Real)

	_, err := h.Publish(context.Background(), ReleaseRequest{
		Version:       version.MustParseSemVer("v1.4.2"),
		ArtifactDir:   tarballDir(t),
		ConfirmDelete: yes,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"delete", "create"}, f.calls)
	assert.Equal(t, []int64{5}, f.deleted)
}

func TestHosting_DraftSurvivesDelete(t *testing.T) {
	f := newFakeGitHub(t)
	f.tags["v1.4.2"] = true
	f.keepDrafts = true
	f.addRelease(&github.RepositoryRelease{ID: github.Ptr(int64(5)), TagName: github.Ptr("v1.4.2"), Draft: github.Ptr(true)})
	h := newTestHosting(t, f, execmode.Real)

	_, err := h.Publish(context.Background(), ReleaseRequest{
		Version:     version.MustParseSemVer("v1.4.2"),
		ArtifactDir: tarballDir(t),
	})
	require.ErrorIs(t, err, relerrors.ErrDraftNotDeleted)
}

func TestHosting_MockSkipsAPI(t *testing.T) {
	f := newFakeGitHub(t)
	h := newTestHosting(t, f, execmode.Mock)

	notes, err := h.ReleaseNotes(context.Background(), "v1.4.2")
	require.NoError(t, err)
	assert.Equal(t, MockReleaseNotes, notes)

	u, err := h.Publish(context.Background(), ReleaseRequest{
		Version:     version.MustParseSemVer("v1.4.2"),
		ArtifactDir: tarballDir(t),
	})
	require.NoError(t, err)
	assert.Empty(t, u)
	assert.Empty(t, f.calls)
	assert.False(t, f.notesCalled)
}

func TestHosting_ReleaseNotesReal(t *testing.T) {
	f := newFakeGitHub(t)
	h := newTestHosting(t, f, execmode.Real)

	notes, err := h.ReleaseNotes(context.Background(), "v1.4.2")
	require.NoError(t, err)
	assert.Equal(t, "* fixed things", notes)
}

func TestHosting_MissingTarball(t *testing.T) {
	f := newFakeGitHub(t)
	h := newTestHosting(t, f, execmode.Mock)

	_, err := h.Publish(context.Background(), ReleaseRequest{
		Version:     version.MustParseSemVer("v1.4.2"),
		ArtifactDir: t.TempDir(),
	})
	require.ErrorIs(t, err, relerrors.ErrBuildOutputMissing)
}

func TestNewGitHubClient(t *testing.T) {
	c, err := NewGitHubClient(HostingConfig{Token: "t", APIURL: "https://ghe.example.com/api/v3/"})
	require.NoError(t, err)
	assert.Equal(t, "ghe.example.com", c.BaseURL.Host)
}
