// Package buildstatus queries the continuous-build dashboard for the most
// recent green build identifier of a branch.
package buildstatus

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mrz1836/relcut/internal/constants"
	"github.com/mrz1836/relcut/internal/ctxutil"
	relerrors "github.com/mrz1836/relcut/internal/errors"
	"github.com/mrz1836/relcut/internal/version"
)

// DefaultTimeout bounds a single status query.
const DefaultTimeout = constants.DefaultBuildStatusTimeout

// maxBodyBytes caps how much of a status response is read.
const maxBodyBytes = 64 << 10

// Source returns the latest good build identifier for a branch.
type Source interface {
	LatestBuild(ctx context.Context, branch version.Branch) (version.BuildID, error)
}

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSource implements Source with a GET to <url>?branch=<branch>.
// The first non-empty line of the response body is the identifier.
type HTTPSource struct {
	url        string
	httpClient HTTPClient
}

// NewHTTPSource creates a source for the given endpoint.
func NewHTTPSource(endpoint string, timeout time.Duration) (*HTTPSource, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("build status url: %w", relerrors.ErrEmptyValue)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		url:        endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// NewHTTPSourceWithClient creates a source with a custom HTTP client (for testing).
func NewHTTPSourceWithClient(endpoint string, client HTTPClient) *HTTPSource {
	return &HTTPSource{url: endpoint, httpClient: client}
}

// LatestBuild fetches and validates the build identifier for branch.
func (s *HTTPSource) LatestBuild(ctx context.Context, branch version.Branch) (version.BuildID, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return version.BuildID{}, err
	}

	u, err := url.Parse(s.url)
	if err != nil {
		return version.BuildID{}, fmt.Errorf("%w: invalid url %q: %w", relerrors.ErrBuildStatusFailed, s.url, err)
	}
	q := u.Query()
	q.Set("branch", branch.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return version.BuildID{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", "relcut")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return version.BuildID{}, fmt.Errorf("%w: %w", relerrors.ErrBuildStatusFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // HTTP response body close

	body := io.LimitReader(resp.Body, maxBodyBytes)
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(body)
		return version.BuildID{}, fmt.Errorf("%w: status %d for %s: %s",
			relerrors.ErrBuildStatusFailed, resp.StatusCode, branch, strings.TrimSpace(string(msg)))
	}

	line, err := firstLine(body)
	if err != nil {
		return version.BuildID{}, fmt.Errorf("%w: %w", relerrors.ErrBuildStatusFailed, err)
	}
	if line == "" {
		return version.BuildID{}, fmt.Errorf("%w: no build reported for %s", relerrors.ErrNoBuildCandidate, branch)
	}

	id, err := version.ParseBuildID(line)
	if err != nil {
		return version.BuildID{}, fmt.Errorf("%w: %s reported %q: %w", relerrors.ErrNoBuildCandidate, branch, line, err)
	}
	return id, nil
}

func firstLine(r io.Reader) (string, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			return line, nil
		}
	}
	return "", sc.Err()
}

var _ Source = (*HTTPSource)(nil)
