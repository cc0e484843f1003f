package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/relcut/internal/errors"
)

func TestValidate_NilConfig(t *testing.T) {
	require.ErrorIs(t, Validate(nil), errors.ErrConfigNil)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:   "fully configured",
			mutate: fullyConfigured,
		},
		{
			name:    "empty build command",
			mutate:  func(c *Config) { c.Build.Command = "  " },
			wantMsg: "build.command",
		},
		{
			name:    "absolute output dir",
			mutate:  func(c *Config) { c.Build.OutputDir = "/tmp/out" },
			wantMsg: "build.output_dir",
		},
		{
			name:    "version file escaping the tree",
			mutate:  func(c *Config) { c.Repo.VersionFile = "../base.go" },
			wantMsg: "repo.version_file",
		},
		{
			name:    "repo name with separator",
			mutate:  func(c *Config) { c.Repo.Name = "acme/product" },
			wantMsg: "repo.name",
		},
		{
			name:    "non-positive status timeout",
			mutate:  func(c *Config) { c.BuildStatus.Timeout = 0 },
			wantMsg: "buildstatus.timeout",
		},
		{
			name:    "registry with scheme",
			mutate:  func(c *Config) { c.Registry.Repository = "https://registry.example.com/acme" },
			wantMsg: "registry.repository",
		},
		{
			name: "registry without source tag",
			mutate: func(c *Config) {
				c.Registry.Repository = "registry.example.com/acme"
				c.Registry.SourceTag = ""
			},
			wantMsg: "registry.source_tag",
		},
		{
			name:    "hosting owner without repo",
			mutate:  func(c *Config) { c.Hosting.Owner = "acme" },
			wantMsg: "hosting.owner",
		},
		{
			name: "hosting without token env",
			mutate: func(c *Config) {
				c.Hosting.Owner, c.Hosting.Repo = "acme", "product"
				c.Hosting.TokenEnv = ""
			},
			wantMsg: "hosting.token_env",
		},
		{
			name:    "bad tarball glob",
			mutate:  func(c *Config) { c.Hosting.TarballGlob = "[" },
			wantMsg: "hosting.tarball_glob",
		},
		{
			name:    "bad recipient",
			mutate:  func(c *Config) { c.Mail.To = []string{"not an address"} },
			wantMsg: "mail address",
		},
		{
			name: "mail without command",
			mutate: func(c *Config) {
				c.Mail.Operator = "rel@example.com"
				c.Mail.Command = ""
			},
			wantMsg: "mail.command",
		},
		{
			name:   "mail command ignored without recipients",
			mutate: func(c *Config) { c.Mail.Command = "" },
		},
		{
			name:    "status url without scheme",
			mutate:  func(c *Config) { c.BuildStatus.URL = "status.example.com/latest" },
			wantMsg: "buildstatus.url",
		},
		{
			name:    "storage endpoint not http",
			mutate:  func(c *Config) { c.Storage.Endpoint = "ftp://s3.example.com" },
			wantMsg: "storage.endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errors.ErrConfigInvalid)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func fullyConfigured(c *Config) {
	c.Repo.Remote = "git@github.com:acme/product.git"
	c.Docs.VersionCommand = "hack/version-docs.sh"
	c.Docs.RefreshCommand = "hack/update-docs.sh"
	c.Storage = StorageConfig{Bucket: "acme-releases", Prefix: "product", Region: "us-west-2", Endpoint: "http://localhost:4566"}
	c.Registry.Repository = "registry.example.com:5000/acme"
	c.Hosting.Owner, c.Hosting.Repo = "acme", "product"
	c.Hosting.APIURL = "https://github.example.com/api/v3/"
	c.Mail = MailConfig{
		Command:  "sendmail -t",
		From:     "Release Bot <rel@example.com>",
		Operator: "rel@example.com",
		To:       []string{"dev@example.com"},
		Cc:       []string{"ops@example.com"},
	}
	c.BuildStatus = BuildStatusConfig{URL: "https://status.example.com/latest", Timeout: time.Minute}
}
