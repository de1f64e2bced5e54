package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
)

// Client reads profile repositories through the GitHub REST API.
type Client struct {
	rest *api.RESTClient
}

// Repository is the subset of repository metadata sync needs.
type Repository struct {
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
	Private       bool   `json:"private"`
}

// Blob is a fetched file.
type Blob struct {
	Content []byte
	SHA     string
}

// DirectoryEntry is one item of a contents listing.
type DirectoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	SHA  string `json:"sha"`
}

// NewClient uses the host and token of the gh configuration.
func NewClient() (*Client, error) {
	rest, err := api.DefaultRESTClient()
	if err != nil {
		return nil, err
	}
	return &Client{rest: rest}, nil
}

// NewClientWithToken authenticates with an explicit token.
func NewClientWithToken(token string) (*Client, error) {
	return newClient(api.ClientOptions{AuthToken: token})
}

// NewUnauthenticatedClient reaches public repositories only, at the
// anonymous rate limit (60 requests per hour).
func NewUnauthenticatedClient() (*Client, error) {
	return newClient(api.ClientOptions{})
}

func newClient(opts api.ClientOptions) (*Client, error) {
	rest, err := api.NewRESTClient(opts)
	if err != nil {
		return nil, err
	}
	return &Client{rest: rest}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	return c.rest.DoWithContext(ctx, http.MethodGet, endpoint, nil, v)
}

func isNotFound(err error) bool {
	var httpErr *api.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// contentsEndpoint builds a contents API path, escaping each path segment.
func contentsEndpoint(owner, repo, path, ref string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	endpoint := fmt.Sprintf("repos/%s/%s/contents/%s", owner, repo, strings.Join(segments, "/"))
	if ref != "" {
		endpoint += "?ref=" + url.QueryEscape(ref)
	}
	return endpoint
}

// Repository looks up a repository. A missing or inaccessible repository
// returns nil without error.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*Repository, error) {
	var r Repository
	if err := c.get(ctx, fmt.Sprintf("repos/%s/%s", owner, repo), &r); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// FetchFile downloads one file at ref (default branch when empty).
func (c *Client) FetchFile(ctx context.Context, owner, repo, path, ref string) (*Blob, error) {
	if owner == "" || repo == "" || path == "" {
		return nil, fmt.Errorf("owner, repo, and path are required")
	}

	var resp struct {
		Type    string `json:"type"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := c.get(ctx, contentsEndpoint(owner, repo, path, ref), &resp); err != nil {
		return nil, err
	}
	if resp.Type != "file" {
		return nil, fmt.Errorf("%s is a %s, not a file", path, resp.Type)
	}

	// The API wraps base64 content at 60 columns.
	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &Blob{Content: content, SHA: resp.SHA}, nil
}

// ListDirectory lists a directory. A missing directory returns nil, nil.
func (c *Client) ListDirectory(ctx context.Context, owner, repo, path, ref string) ([]DirectoryEntry, error) {
	var entries []DirectoryEntry
	if err := c.get(ctx, contentsEndpoint(owner, repo, path, ref), &entries); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}
