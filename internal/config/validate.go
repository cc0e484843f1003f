package config

import (
	"net/mail"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mrz1836/relcut/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Sections that are left empty turn their publish phase off and are not
// checked beyond that.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	checks := []func(*Config) error{
		validateRepoConfig,
		validateBuildConfig,
		validateRegistryConfig,
		validateHostingConfig,
		validateMailConfig,
		validateEndpoints,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateRepoConfig(cfg *Config) error {
	if err := relativePath("repo.version_file", cfg.Repo.VersionFile); err != nil {
		return err
	}
	if strings.ContainsAny(cfg.Repo.Name, `/\`) {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"repo.name must be a single directory name, got %q", cfg.Repo.Name)
	}
	return nil
}

func validateBuildConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Build.Command) == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "build.command must not be empty")
	}
	if err := relativePath("build.output_dir", cfg.Build.OutputDir); err != nil {
		return err
	}
	if cfg.BuildStatus.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"buildstatus.timeout must be positive, got %s", cfg.BuildStatus.Timeout)
	}
	return nil
}

func validateRegistryConfig(cfg *Config) error {
	r := cfg.Registry
	if r.Repository == "" {
		return nil
	}
	if strings.Contains(r.Repository, "://") {
		return errors.Wrapf(errors.ErrConfigInvalid,
			"registry.repository must be host/namespace without a scheme, got %q", r.Repository)
	}
	if r.SourceTag == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "registry.source_tag must not be empty")
	}
	return nil
}

func validateHostingConfig(cfg *Config) error {
	h := cfg.Hosting
	if (h.Owner == "") != (h.Repo == "") {
		return errors.Wrap(errors.ErrConfigInvalid, "hosting.owner and hosting.repo must be set together")
	}
	if h.Owner != "" && h.TokenEnv == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "hosting.token_env must not be empty")
	}
	if _, err := filepath.Match(h.TarballGlob, ""); err != nil {
		return errors.Wrapf(errors.ErrConfigInvalid, "hosting.tarball_glob %q: %v", h.TarballGlob, err)
	}
	return nil
}

func validateMailConfig(cfg *Config) error {
	m := cfg.Mail
	if !m.HasMail() {
		return nil
	}
	if strings.TrimSpace(m.Command) == "" {
		return errors.Wrap(errors.ErrConfigInvalid, "mail.command must not be empty")
	}

	addresses := append([]string{m.From, m.Operator}, m.To...)
	addresses = append(addresses, m.Cc...)
	for _, addr := range addresses {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return errors.Wrapf(errors.ErrConfigInvalid, "mail address %q: %v", addr, err)
		}
	}
	return nil
}

func validateEndpoints(cfg *Config) error {
	endpoints := map[string]string{
		"buildstatus.url":  cfg.BuildStatus.URL,
		"storage.endpoint": cfg.Storage.Endpoint,
		"hosting.api_url":  cfg.Hosting.APIURL,
	}
	for key, raw := range endpoints {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Wrapf(errors.ErrConfigInvalid, "%s must be an http(s) URL, got %q", key, raw)
		}
	}
	return nil
}

// relativePath rejects absolute paths and paths escaping the tree.
func relativePath(key, p string) error {
	if p == "" {
		return errors.Wrapf(errors.ErrConfigInvalid, "%s must not be empty", key)
	}
	if filepath.IsAbs(p) || strings.HasPrefix(filepath.Clean(p), "..") {
		return errors.Wrapf(errors.ErrConfigInvalid, "%s must be relative to the tree, got %q", key, p)
	}
	return nil
}
