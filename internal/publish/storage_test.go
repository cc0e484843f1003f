package publish

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/testutil"
	"github.com/mrz1836/relcut/internal/version"
)

type putRecord struct {
	bucket      string
	body        string
	contentType string
}

type fakeS3 struct {
	mu      sync.Mutex
	puts    map[string]putRecord
	putErr  error
	headErr error
}

func newFakeS3() *fakeS3 { return &fakeS3{puts: map[string]putRecord{}} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[aws.ToString(in.Key)] = putRecord{
		bucket:      aws.ToString(in.Bucket),
		body:        string(body),
		contentType: aws.ToString(in.ContentType),
	}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) keys() []string {
	out := make([]string, 0, len(f.puts))
	for k := range f.puts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func artifactDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "_output-v1.4.2")
	testutil.WriteFile(t, filepath.Join(dir, "VERSION"), "v1.4.2\n")
	testutil.WriteFile(t, filepath.Join(dir, "bin", "tool"), "#!/bin/sh\necho tool\n")
	return dir
}

func TestStorage_UploadReal(t *testing.T) {
	fake := newFakeS3()
	s := NewStorage(fake, StorageConfig{Bucket: "releases", Prefix: "/product/"}, execmode.NewController(execmode.Real), zerolog.Nop())
	v := version.MustParseSemVer("v1.4.2")

	n, err := s.Upload(context.Background(), v, artifactDir(t))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "product/v1.4.2/", s.VersionPrefix(v))
	assert.Equal(t, []string{"product/v1.4.2/VERSION", "product/v1.4.2/bin/tool"}, fake.keys())

	rec := fake.puts["product/v1.4.2/VERSION"]
	assert.Equal(t, "releases", rec.bucket)
	assert.Equal(t, "v1.4.2\n", rec.body)
	assert.Contains(t, rec.contentType, "text/plain")
}

func TestStorage_UploadMockSendsNothing(t *testing.T) {
	fake := newFakeS3()
	s := NewStorage(fake, StorageConfig{Bucket: "releases"}, execmode.NewController(execmode.Mock), zerolog.Nop())

	n, err := s.Upload(context.Background(), version.MustParseSemVer("v1.4.2"), artifactDir(t))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, fake.puts)
}

func TestStorage_UploadFailure(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
	s := NewStorage(fake, StorageConfig{Bucket: "releases"}, execmode.NewController(execmode.Real), zerolog.Nop())

	_, err := s.Upload(context.Background(), version.MustParseSemVer("v1.4.2"), artifactDir(t))
	require.ErrorIs(t, err, relerrors.ErrStorageOperation)
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestStorage_WriteStable(t *testing.T) {
	fake := newFakeS3()
	s := NewStorage(fake, StorageConfig{Bucket: "releases", Prefix: "product"}, execmode.NewController(execmode.Real), zerolog.Nop())

	require.NoError(t, s.WriteStable(context.Background(), version.MustParseSemVer("v1.4.2")))
	assert.Equal(t, "v1.4.2\n", fake.puts["product/stable.txt"].body)
}

func TestStorage_Check(t *testing.T) {
	fake := newFakeS3()
	s := NewStorage(fake, StorageConfig{Bucket: "releases"}, execmode.NewController(execmode.Mock), zerolog.Nop())
	require.NoError(t, s.Check(context.Background()))

	fake.headErr = &smithy.GenericAPIError{Code: "NotFound", Message: "no such bucket"}
	err := s.Check(context.Background())
	require.ErrorIs(t, err, relerrors.ErrStorageUnreachable)
	assert.Contains(t, err.Error(), "NotFound")
}

func TestStorage_UploadMissingDir(t *testing.T) {
	s := NewStorage(newFakeS3(), StorageConfig{Bucket: "releases"}, execmode.NewController(execmode.Real), zerolog.Nop())
	_, err := s.Upload(context.Background(), version.MustParseSemVer("v1.4.2"), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, relerrors.ErrStorageOperation)
}
