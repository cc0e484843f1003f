package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/rs/zerolog"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/mrz1836/relcut/internal/constants"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/execmode"
	"github.com/mrz1836/relcut/internal/version"
)

// DefaultSourceTag is the tag each image layout is read from.
const DefaultSourceTag = "latest"

// RegistryConfig locates the container registry.
type RegistryConfig struct {
	// Repository is host[:port]/namespace; images go to <Repository>/<name>.
	Repository string
	// SourceTag is the tag inside each OCI layout. Defaults to DefaultSourceTag.
	SourceTag string
	Username  string
	Password  string
	PlainHTTP bool
}

// TargetFunc opens the destination repository for an image reference.
type TargetFunc func(ctx context.Context, ref string) (oras.Target, error)

// Registry publishes OCI image layouts found in build outputs.
type Registry struct {
	cfg    RegistryConfig
	target TargetFunc
	ctrl   *execmode.Controller
	logger zerolog.Logger
}

// NewRegistry creates a registry publisher. A nil target uses RemoteTarget.
func NewRegistry(cfg RegistryConfig, target TargetFunc, ctrl *execmode.Controller, logger zerolog.Logger) *Registry {
	if cfg.SourceTag == "" {
		cfg.SourceTag = DefaultSourceTag
	}
	cfg.Repository = strings.TrimSuffix(cfg.Repository, "/")
	if target == nil {
		target = RemoteTarget(cfg)
	}
	return &Registry{cfg: cfg, target: target, ctrl: ctrl, logger: logger}
}

// RemoteTarget returns a TargetFunc for a real registry. Static credentials
// are used when configured, otherwise the docker credential store.
func RemoteTarget(cfg RegistryConfig) TargetFunc {
	return func(_ context.Context, ref string) (oras.Target, error) {
		repo, err := remote.NewRepository(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", relerrors.ErrRegistryOperation, ref, err)
		}
		repo.PlainHTTP = cfg.PlainHTTP

		client := &auth.Client{
			Client: retry.DefaultClient,
			Cache:  auth.NewCache(),
		}
		switch {
		case cfg.Username != "":
			client.Credential = auth.StaticCredential(repo.Reference.Registry, auth.Credential{
				Username: cfg.Username,
				Password: cfg.Password,
			})
		default:
			store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
			if err != nil {
				return nil, fmt.Errorf("%w: docker credentials: %w", relerrors.ErrRegistryOperation, err)
			}
			client.Credential = credentials.Credential(store)
		}
		repo.Client = client
		return repo, nil
	}
}

// Images lists the image layout names under <artifactDir>/images.
func Images(artifactDir string) ([]string, error) {
	root := filepath.Join(artifactDir, constants.ImagesDir)
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", relerrors.ErrRegistryOperation, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "index.json")); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Reference returns <repository>/<name>:<v>.
func (r *Registry) Reference(name string, v version.SemVer) string {
	return fmt.Sprintf("%s/%s:%s", r.cfg.Repository, name, v)
}

// Push copies every image layout in artifactDir to the registry tagged v
// and returns the references pushed.
func (r *Registry) Push(ctx context.Context, v version.SemVer, artifactDir string) ([]string, error) {
	names, err := Images(artifactDir)
	if err != nil {
		return nil, err
	}

	refs := make([]string, 0, len(names))
	for _, name := range names {
		ref := r.Reference(name, v)
		layout := filepath.Join(artifactDir, constants.ImagesDir, name)
		var dgst digest.Digest
		err := r.ctrl.Effect(ctx, "push "+layout+" to "+ref, func(ctx context.Context) error {
			var err error
			dgst, err = r.copyLayout(ctx, layout, ref, v.String())
			return err
		})
		if err != nil {
			return refs, err
		}
		event := r.logger.Info().Str("image", ref)
		if dgst != "" {
			event = event.Stringer("digest", dgst)
		}
		event.Msg("image published")
		refs = append(refs, ref)
	}
	return refs, nil
}

// copyLayout copies the layout's source tag to ref and returns the manifest digest.
func (r *Registry) copyLayout(ctx context.Context, layout, ref, tag string) (digest.Digest, error) {
	src, err := oci.NewWithContext(ctx, layout)
	if err != nil {
		return "", fmt.Errorf("%w: open layout %s: %w", relerrors.ErrRegistryOperation, layout, err)
	}
	dst, err := r.target(ctx, ref)
	if err != nil {
		return "", err
	}
	desc, err := oras.Copy(ctx, src, r.cfg.SourceTag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return "", fmt.Errorf("%w: copy %s to %s: %w", relerrors.ErrRegistryOperation, layout, ref, err)
	}
	if err := desc.Digest.Validate(); err != nil {
		return "", fmt.Errorf("%w: %s: invalid manifest digest: %w", relerrors.ErrRegistryOperation, ref, err)
	}
	return desc.Digest, nil
}
