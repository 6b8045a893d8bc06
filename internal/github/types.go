// Package github talks to the GitHub REST API to manage the pull request of
// the automatic data import.
package github

import (
	"fmt"
	"net/http"
	"time"
)

// API configuration constants.
const (
	// DefaultAPIEndpoint is the GitHub REST API base URL.
	DefaultAPIEndpoint = "https://api.github.com"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for rate-limited requests.
	MaxRetries = 3

	// RetryDelay is the base delay between retries (exponential backoff).
	RetryDelay = time.Second

	// MaxPageSize is the maximum number of results to fetch per page.
	MaxPageSize = 100

	// MaxPages is the maximum number of pages to fetch before stopping.
	// This prevents infinite loops from malformed Link headers.
	MaxPages = 100
)

// branchRefPrefix is the fully qualified ref prefix of branch names.
const branchRefPrefix = "refs/heads/"

// Client provides methods to interact with the GitHub REST API.
type Client struct {
	Token      string       // GitHub token (CI-provided or personal access token)
	Owner      string       // Repository owner (user or org)
	Repo       string       // Repository name
	BaseURL    string       // API base URL (default: https://api.github.com)
	HTTPClient *http.Client // Optional custom HTTP client
}

// PullRequest represents a pull request from the GitHub API.
type PullRequest struct {
	ID      int    `json:"id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	State   string `json:"state"` // "open" or "closed"
	HTMLURL string `json:"html_url"`
	Head    Ref    `json:"head"`
	Base    Ref    `json:"base"`
	User    *User  `json:"user,omitempty"`
}

// Ref is one endpoint of a pull request.
type Ref struct {
	Ref  string `json:"ref"`
	SHA  string `json:"sha"`
	Repo *struct {
		FullName string `json:"full_name"`
	} `json:"repo,omitempty"`
}

// User represents a GitHub user.
type User struct {
	ID    int    `json:"id"`
	Login string `json:"login"`
}

// Branch represents a repository branch from the GitHub API.
type Branch struct {
	Name string `json:"name"`
}

// apiError is a non-2xx response from the GitHub API.
type apiError struct {
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("API error: %s (status %d)", e.Body, e.StatusCode)
}
