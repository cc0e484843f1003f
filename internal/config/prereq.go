package config

import (
	"context"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/relcut/internal/errors"
)

// ToolFinder abstracts PATH lookups for testability.
type ToolFinder interface {
	// LookPath searches for an executable named file in the PATH.
	LookPath(file string) (string, error)
}

// PathFinder implements ToolFinder using os/exec.
type PathFinder struct{}

// LookPath searches for an executable in the PATH.
func (PathFinder) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// BucketChecker verifies the storage bucket is reachable.
type BucketChecker interface {
	Check(ctx context.Context) error
}

// Prerequisites are the environment probes used by CheckPrerequisites.
type Prerequisites struct {
	// Finder defaults to PathFinder.
	Finder ToolFinder
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Storage is checked on real runs. Nil skips the check.
	Storage BucketChecker
}

// RequiredTools returns the executables a session runs.
func (c *Config) RequiredTools() []string {
	tools := []string{"git", "sh"}
	if c.Mail.HasMail() {
		if fields := strings.Fields(c.Mail.Command); len(fields) > 0 {
			tools = append(tools, fields[0])
		}
	}
	return tools
}

// HostingToken returns the hosting API token from the configured variable.
func (c *Config) HostingToken(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	return getenv(c.Hosting.TokenEnv)
}

// RegistryPassword returns the registry password from the configured variable.
func (c *Config) RegistryPassword(getenv func(string) string) string {
	if c.Registry.PasswordEnv == "" {
		return ""
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	return getenv(c.Registry.PasswordEnv)
}

// CheckPrerequisites verifies the environment before any tree is touched.
// Tools and the remote are always required; credentials and the storage
// bucket only for real runs, since mock runs never reach those services.
// Every failure is a prerequisite error.
func CheckPrerequisites(ctx context.Context, cfg *Config, real bool, p Prerequisites) error {
	if cfg == nil {
		return errors.Prerequisite("config", errors.ErrConfigNil)
	}
	if p.Finder == nil {
		p.Finder = PathFinder{}
	}
	if p.Getenv == nil {
		p.Getenv = os.Getenv
	}

	if cfg.Repo.Remote == "" {
		return errors.Prerequisite("config", errors.Wrap(errors.ErrConfigInvalid, "repo.remote must be set"))
	}

	if missing := missingTools(ctx, p.Finder, cfg.RequiredTools()); len(missing) > 0 {
		return errors.Prerequisite("tools",
			errors.Wrapf(errors.ErrMissingRequiredTools, "not on PATH: %s", strings.Join(missing, ", ")))
	}

	if !real {
		return nil
	}

	if cfg.Hosting.Owner != "" && cfg.HostingToken(p.Getenv) == "" {
		return errors.Prerequisite("credentials",
			errors.Wrapf(errors.ErrMissingCredentials, "%s is not set", cfg.Hosting.TokenEnv))
	}

	if cfg.Storage.Bucket != "" && p.Storage != nil {
		if err := p.Storage.Check(ctx); err != nil {
			return errors.Prerequisite("storage", err)
		}
	}
	return nil
}

// missingTools looks every tool up concurrently and returns the missing ones, sorted.
func missingTools(ctx context.Context, finder ToolFinder, tools []string) []string {
	var (
		mu      sync.Mutex
		missing []string
	)

	g, _ := errgroup.WithContext(ctx)
	for _, tool := range tools {
		g.Go(func() error {
			if _, err := finder.LookPath(tool); err != nil {
				mu.Lock()
				missing = append(missing, tool)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(missing)
	return missing
}
