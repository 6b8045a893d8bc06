package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/v-the-cmd/fondsnet-import/internal/config"
	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
)

// NewClient creates a new GitHub client.
func NewClient(token, owner, repo string) *Client {
	return &Client{
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		BaseURL: DefaultAPIEndpoint,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// NewFromConfig creates a client from the pipeline configuration, reading the
// token from the configured env var.
func NewFromConfig(cfg config.GitHubConfig) (*Client, error) {
	token := os.Getenv(cfg.TokenEnv)
	if token == "" {
		return nil, errs.New(errs.ErrConfig, fmt.Sprintf("%s is not set", cfg.TokenEnv)).
			WithSuggestion("Provide a GitHub token with repo access")
	}

	owner, repo, err := cfg.SplitRepository()
	if err != nil {
		return nil, err
	}

	client := NewClient(token, owner, repo)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	return client, nil
}

// WithBaseURL returns a new client with a custom base URL (for testing or GitHub Enterprise).
func (c *Client) WithBaseURL(baseURL string) *Client {
	return &Client{
		Token:      c.Token,
		Owner:      c.Owner,
		Repo:       c.Repo,
		BaseURL:    baseURL,
		HTTPClient: c.HTTPClient,
	}
}

// repoPath returns the "owner/repo" path segment.
func (c *Client) repoPath() string {
	return c.Owner + "/" + c.Repo
}

// buildURL constructs a full API URL.
func (c *Client) buildURL(path string, params map[string]string) string {
	u := c.BaseURL + path

	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		u += "?" + values.Encode()
	}

	return u
}

// doRequest performs an HTTP request with authentication and retry logic.
func (c *Client) doRequest(ctx context.Context, method, urlStr string, body interface{}) ([]byte, http.Header, error) {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		var reqBody io.Reader
		if jsonBody != nil {
			reqBody = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, urlStr, reqBody)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.Token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt+1, MaxRetries+1, err)
			continue
		}

		const maxResponseSize = 10 * 1024 * 1024
		respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response (attempt %d/%d): %w", attempt+1, MaxRetries+1, err)
			continue
		}

		// Rate limiting is a 429, or a 403 with the remaining quota at zero.
		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0") {
			delay := RetryDelay * time.Duration(1<<attempt)
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					delay = time.Duration(seconds) * time.Second
				}
			}
			lastErr = errs.RateLimited(delay)
			select {
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			case <-time.After(delay):
				continue
			}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, nil, &apiError{StatusCode: resp.StatusCode, Body: string(respBody)}
		}

		return respBody, resp.Header, nil
	}

	return nil, nil, fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries+1, lastErr)
}

// linkNextPattern matches the "next" relation in GitHub Link headers.
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// hasNextPage checks the Link header for a next page URL.
func hasNextPage(headers http.Header) bool {
	return linkNextPattern.MatchString(headers.Get("Link"))
}

// BranchExists reports whether the given branch exists in the repository.
func (c *Client) BranchExists(ctx context.Context, branch string) (bool, error) {
	urlStr := c.buildURL("/repos/"+c.repoPath()+"/branches/"+url.PathEscape(branch), nil)

	respBody, _, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, errs.GitHubRequestFailed("check branch", err)
	}

	var b Branch
	if err := json.Unmarshal(respBody, &b); err != nil {
		return false, errs.GitHubRequestFailed("check branch", err)
	}
	return true, nil
}

// ListOpenPulls retrieves the open pull requests whose head is the given
// branch of this repository.
func (c *Client) ListOpenPulls(ctx context.Context, headBranch string) ([]PullRequest, error) {
	var all []PullRequest
	page := 1

	for {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		params := map[string]string{
			"state":    "open",
			"head":     c.Owner + ":" + branchRefPrefix + headBranch,
			"per_page": strconv.Itoa(MaxPageSize),
			"page":     strconv.Itoa(page),
		}

		urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls", params)
		respBody, headers, err := c.doRequest(ctx, http.MethodGet, urlStr, nil)
		if err != nil {
			return nil, errs.GitHubRequestFailed("list pull requests", err)
		}

		var pulls []PullRequest
		if err := json.Unmarshal(respBody, &pulls); err != nil {
			return nil, errs.GitHubRequestFailed("list pull requests", err)
		}
		all = append(all, pulls...)

		if !hasNextPage(headers) {
			break
		}
		page++

		if page > MaxPages {
			return nil, errs.GitHubRequestFailed("list pull requests",
				fmt.Errorf("pagination limit exceeded: stopped after %d pages", MaxPages))
		}
	}

	return all, nil
}

// CreatePull opens a pull request from head into base.
func (c *Client) CreatePull(ctx context.Context, title, body, head, base string) (*PullRequest, error) {
	reqBody := map[string]interface{}{
		"title": title,
		"body":  body,
		"head":  head,
		"base":  base,
	}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls", nil)
	respBody, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody)
	if err != nil {
		return nil, errs.GitHubRequestFailed("create pull request", err)
	}

	var pull PullRequest
	if err := json.Unmarshal(respBody, &pull); err != nil {
		return nil, errs.GitHubRequestFailed("create pull request", err)
	}
	return &pull, nil
}

// RequestReviewers adds the given users as reviewers of a pull request.
func (c *Client) RequestReviewers(ctx context.Context, number int, reviewers []string) error {
	if len(reviewers) == 0 {
		return nil
	}

	reqBody := map[string]interface{}{"reviewers": reviewers}

	urlStr := c.buildURL("/repos/"+c.repoPath()+"/pulls/"+strconv.Itoa(number)+"/requested_reviewers", nil)
	if _, _, err := c.doRequest(ctx, http.MethodPost, urlStr, reqBody); err != nil {
		return errs.GitHubRequestFailed("request reviewers", err)
	}
	return nil
}

// EnsurePullRequest returns the open pull request for the head branch,
// creating it (and requesting the reviewers) when none exists. head and base
// are plain branch names. The created return value reports whether a new pull
// request was opened.
func (c *Client) EnsurePullRequest(ctx context.Context, title, body, head, base string, reviewers []string) (pull *PullRequest, created bool, err error) {
	pulls, err := c.ListOpenPulls(ctx, head)
	if err != nil {
		return nil, false, err
	}
	if len(pulls) > 0 {
		return &pulls[0], false, nil
	}

	pull, err = c.CreatePull(ctx, title, body, branchRefPrefix+head, branchRefPrefix+base)
	if err != nil {
		return nil, false, err
	}

	if err := c.RequestReviewers(ctx, pull.Number, reviewers); err != nil {
		return nil, false, err
	}
	return pull, true, nil
}
