// Package version reports build information and checks GitHub for a newer release.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Release lookup defaults.
const (
	DefaultBaseURL      = "https://api.github.com"
	DefaultTimeout      = 10 * time.Second
	Owner               = "mrz1836"
	Repo                = "trickle"
	devVersion          = "dev"
	maxErrorBodySize    = 1024
	maxResponseBodySize = 64 * 1024
)

// ErrGitHubAPIFailed is returned for any non-200 response.
var ErrGitHubAPIFailed = errors.New("GitHub API request failed")

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current returns the version, or "dev" for unstamped builds.
func (b BuildInfo) Current() string {
	if b.Version == "" {
		return devVersion
	}
	return b.Version
}

// String formats the build as "v1.2.3 (commit: abc1234, built: 2026-01-15)".
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", b.Current(), orUnknown(b.Commit), orUnknown(b.Date))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// Release is the subset of a GitHub release we read.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// Client fetches releases from the GitHub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root (tests, GitHub Enterprise).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a release client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  fmt.Sprintf("trickle/%s (%s/%s)", devVersion, runtime.GOOS, runtime.GOARCH),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestRelease fetches the latest published release of owner/repo.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is built from the configured API root
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: status %d: %s", ErrGitHubAPIFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var rel Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &rel, nil
}

// Compare returns 1, 0 or -1 as v1 is newer than, equal to or older than
// v2. A leading "v" and any "-suffix" or "+build" are ignored. Development
// builds sort before every release.
func Compare(v1, v2 string) int {
	p1, ok1 := parse(v1)
	p2, ok2 := parse(v2)
	switch {
	case !ok1 && !ok2:
		return 0
	case !ok1:
		return -1
	case !ok2:
		return 1
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			if p1[i] > p2[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// IsNewer reports whether latest is a newer release than current.
func IsNewer(current, latest string) bool {
	return Compare(latest, current) > 0
}

// parse reads major.minor.patch. Missing parts are zero; anything that is
// not a number makes the version a development build.
func parse(v string) ([3]int, bool) {
	var out [3]int
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == devVersion {
		return out, false
	}
	parts := strings.Split(v, ".")
	if len(parts) > len(out) {
		return out, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
