package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/mrz1836/relcut/internal/constants"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/version"
)

// S3API is the subset of the S3 client the storage publisher uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// StorageConfig locates the release bucket.
type StorageConfig struct {
	Bucket string
	Prefix string
	Region string
	// Endpoint overrides the S3 endpoint (path-style), for S3-compatible stores.
	Endpoint string
}

// Storage publishes build outputs to object storage.
type Storage struct {
	client S3API
	cfg    StorageConfig
	ctrl   *execmode.Controller
	logger zerolog.Logger
}

// NewS3Client builds an S3 client from the default AWS credential chain.
func NewS3Client(ctx context.Context, cfg StorageConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load AWS config: %w", relerrors.ErrStorageOperation, err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewStorage creates a storage publisher.
func NewStorage(client S3API, cfg StorageConfig, ctrl *execmode.Controller, logger zerolog.Logger) *Storage {
	cfg.Prefix = strings.Trim(cfg.Prefix, "/")
	return &Storage{client: client, cfg: cfg, ctrl: ctrl, logger: logger}
}

// Check verifies the bucket is reachable with the current credentials.
func (s *Storage) Check(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.cfg.Bucket)})
	if err != nil {
		return fmt.Errorf("%w: s3://%s: %s", relerrors.ErrStorageUnreachable, s.cfg.Bucket, describeAWSError(err))
	}
	return nil
}

// VersionPrefix returns the key prefix for v.
func (s *Storage) VersionPrefix(v version.SemVer) string {
	return s.key(v.String()) + "/"
}

// Upload copies every file under dir to <prefix>/<v>/ and returns the count.
func (s *Storage) Upload(ctx context.Context, v version.SemVer, dir string) (int, error) {
	files, err := listFiles(dir)
	if err != nil {
		return 0, err
	}

	dest := fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, s.VersionPrefix(v))
	err = s.ctrl.Effect(ctx, fmt.Sprintf("upload %d files from %s to %s", len(files), dir, dest), func(ctx context.Context) error {
		for _, rel := range files {
			key := s.VersionPrefix(v) + filepath.ToSlash(rel)
			if err := s.putFile(ctx, key, filepath.Join(dir, rel)); err != nil {
				return err
			}
			s.logger.Debug().Str("key", key).Msg("uploaded")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// WriteStable points the official manifest at v.
func (s *Storage) WriteStable(ctx context.Context, v version.SemVer) error {
	key := s.key(constants.StableManifestName)
	return s.ctrl.Effect(ctx, fmt.Sprintf("write s3://%s/%s = %s", s.cfg.Bucket, key, v), func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.cfg.Bucket),
			Key:         aws.String(key),
			Body:        strings.NewReader(v.String() + "\n"),
			ContentType: aws.String("text/plain; charset=utf-8"),
		})
		if err != nil {
			return fmt.Errorf("%w: %s: %s", relerrors.ErrStorageOperation, key, describeAWSError(err))
		}
		return nil
	})
}

func (s *Storage) key(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}
	return path.Join(s.cfg.Prefix, name)
}

func (s *Storage) putFile(ctx context.Context, key, file string) error {
	f, err := os.Open(file) //#nosec G304 -- file is inside the build output
	if err != nil {
		return fmt.Errorf("%w: %w", relerrors.ErrStorageOperation, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	contentType := "application/octet-stream"
	if mt, err := mimetype.DetectFile(file); err == nil {
		contentType = mt.String()
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %s", relerrors.ErrStorageOperation, key, describeAWSError(err))
	}
	return nil
}

// listFiles returns regular files under dir relative to dir, sorted by walk order.
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list %s: %w", relerrors.ErrStorageOperation, dir, err)
	}
	return files, nil
}

// describeAWSError renders the service error code when there is one.
func describeAWSError(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}
