// Package fetch implements the narrow HTTP collaborator the crawl
// driver treats as a black box: fetch(url) -> bytes (§6). Invalid TLS
// certificates are accepted and non-2xx responses are errors, matching
// the spec's HTTP collaborator contract.
package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/TheArchitect4855/ksearch/internal/ksearcherr"
	"github.com/TheArchitect4855/ksearch/internal/urlparse"
)

// Fetcher is the contract the crawl driver depends on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client is the default Fetcher, a thin net/http wrapper carrying the
// spec's user-agent and TLS-skip-verify requirements.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// New creates a Client with the given user agent and request timeout.
func New(userAgent string, timeout time.Duration) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // §6 mandates accepting invalid certs
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
	}
}

// Fetch validates url against the canonical URL regex, performs a GET
// request, and returns the decoded body. Non-2xx responses are errors.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !urlparse.Validate.MatchString(url) {
		return nil, ksearcherr.New(ksearcherr.BadURL, "invalid URL: "+url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Fetch, "failed to build request for "+url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Fetch, "request failed for "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ksearcherr.New(ksearcherr.Fetch, fmt.Sprintf("%s responded with status %d", url, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ksearcherr.Wrap(ksearcherr.Fetch, "failed to read response body for "+url, err)
	}

	if !utf8.Valid(body) {
		return nil, ksearcherr.New(ksearcherr.Fetch, "response body for "+url+" is not valid UTF-8")
	}

	return body, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
