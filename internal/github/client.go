package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v63/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/masmgr/githar-go/internal/history"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com/"

const userAgent = "githar"

// Client fetches commit history from the GitHub REST API.
type Client struct {
	gh         *gogithub.Client
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *logrus.Logger
}

// ClientOption allows configuring the client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root, e.g. GitHub Enterprise.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken authenticates every request with a caller-supplied token.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *logrus.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(client)
	}

	if client.logger == nil {
		client.logger = logrus.New()
		client.logger.SetOutput(io.Discard)
	}

	base, err := url.Parse(client.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, NewValidationError("base URL", client.baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	client.gh = gogithub.NewClient(client.authenticatedHTTPClient())
	client.gh.BaseURL = base
	client.gh.UserAgent = userAgent

	return client, nil
}

func (c *Client) authenticatedHTTPClient() *http.Client {
	if c.token == "" {
		return c.httpClient
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
	if c.httpClient == nil {
		return oauth2.NewClient(context.Background(), ts)
	}

	wrapped := *c.httpClient
	wrapped.Transport = &oauth2.Transport{Source: ts, Base: c.httpClient.Transport}
	return &wrapped
}

// Fetch retrieves every page of commits for q and appends them to q.Commits.
// On error q is left unchanged.
func (c *Client) Fetch(ctx context.Context, q *history.Query) (*history.Query, error) {
	if q.Repository.Owner == "" || q.Repository.Name == "" {
		return nil, NewValidationError("repository", q.Repository.String())
	}

	logger := c.logger.WithFields(logrus.Fields{
		"repository": q.Repository.String(),
		"filters":    q.Filters.Summary(),
	})
	logger.Debug("Starting to fetch commits from GitHub API")

	var fetched []history.RawCommit
	seen := make(map[string]bool)
	page := 0

	for next := commitsPath(q.Repository, q.Filters); next != ""; {
		if seen[next] {
			return nil, fmt.Errorf("pagination loop: %s was already fetched", next)
		}
		seen[next] = true
		page++

		if !c.sameOrigin(next) {
			return nil, fmt.Errorf("refusing to follow next link to %s: not on %s", next, c.gh.BaseURL.Host)
		}

		commits, link, err := c.getPage(ctx, next)
		if err != nil {
			logger.WithError(err).WithField("page", page).Debug("Failed to fetch commits page")
			return nil, err
		}

		fetched = append(fetched, commits...)
		logger.WithFields(logrus.Fields{
			"page":    page,
			"url":     next,
			"commits": len(commits),
		}).Debug("Fetched commits page")

		next = link
	}

	q.Commits = append(q.Commits, fetched...)
	logger.WithFields(logrus.Fields{
		"pages":   page,
		"commits": len(fetched),
	}).Info("Completed fetching commits")

	return q, nil
}

// sameOrigin reports whether target resolves to the API scheme and host, so
// the token is never sent elsewhere.
func (c *Client) sameOrigin(target string) bool {
	u, err := c.gh.BaseURL.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == c.gh.BaseURL.Scheme && strings.EqualFold(u.Host, c.gh.BaseURL.Host)
}

// getPage requests one page and returns its commits and the next link.
func (c *Client) getPage(ctx context.Context, target string) ([]history.RawCommit, string, error) {
	req, err := c.gh.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.gh.BareDo(ctx, req)
	if err != nil {
		return nil, "", responseError(resp, err)
	}
	defer resp.Body.Close()

	var commits []history.RawCommit
	if err := json.NewDecoder(resp.Body).Decode(&commits); err != nil {
		return nil, "", NewDecodeError(req.URL.String(), err)
	}
	if commits == nil {
		return nil, "", NewDecodeError(req.URL.String(), errors.New("expected a JSON array of commits"))
	}
	if err := history.ValidateCommits(commits); err != nil {
		return nil, "", NewDecodeError(req.URL.String(), err)
	}

	return commits, nextLink(resp.Header.Values("Link")), nil
}

// responseError maps go-github failures onto APIError.
func responseError(resp *gogithub.Response, err error) error {
	var rateErr *gogithub.RateLimitError
	if errors.As(err, &rateErr) {
		return NewAPIError(statusOf(rateErr.Response), rateErr.Message, err)
	}
	var abuseErr *gogithub.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return NewAPIError(statusOf(abuseErr.Response), abuseErr.Message, err)
	}
	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) {
		return NewAPIError(statusOf(errResp.Response), errResp.Message, err)
	}
	if resp != nil && resp.Response != nil {
		return NewAPIError(resp.StatusCode, http.StatusText(resp.StatusCode), err)
	}
	return NewAPIError(0, "request failed", err)
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// commitsPath builds the first-page path relative to the API root.
func commitsPath(repo history.Identifier, filters history.Filters) string {
	path := fmt.Sprintf("repos/%s/%s/commits", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))

	params := filters.Params()
	if len(params) == 0 {
		return path
	}

	query := url.Values{}
	for _, p := range params {
		query.Set(p.Key, p.Value)
	}
	return path + "?" + query.Encode()
}

// Compile-time interface conformance check.
var _ history.Fetcher = (*Client)(nil)
