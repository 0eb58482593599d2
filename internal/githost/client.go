// Package githost fetches repository metadata, tree listings, and README
// content from the GitHub API. Callers treat its failures as opaque
// transport errors.
package githost

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"repotutor/internal/pathresolve"
)

// RepoMeta is the subset of repository metadata fed into the tutorial prompt.
type RepoMeta struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	Language      string `json:"language"`
	Stars         int    `json:"stars"`
}

// Client wraps the GitHub REST client.
type Client struct {
	gh *github.Client
}

// NewClient builds a client. An empty token yields an unauthenticated
// client subject to the anonymous rate limit.
func NewClient(ctx context.Context, token string) *Client {
	if token == "" {
		return &Client{gh: github.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: github.NewClient(oauth2.NewClient(ctx, ts))}
}

// Metadata fetches repository metadata.
func (c *Client) Metadata(ctx context.Context, owner, repo string) (RepoMeta, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return RepoMeta{}, fmt.Errorf("githost: get %s/%s: %w", owner, repo, err)
	}
	return RepoMeta{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
	}, nil
}

// Tree fetches the recursive tree listing at ref as a flat entry list,
// preserving the API's entry order. Blobs map to files, trees to
// directories; submodule entries are skipped.
func (c *Client) Tree(ctx context.Context, owner, repo, ref string) ([]pathresolve.Entry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, owner, repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("githost: tree %s/%s@%s: %w", owner, repo, ref, err)
	}
	entries := make([]pathresolve.Entry, 0, len(tree.Entries))
	for _, te := range tree.Entries {
		var kind pathresolve.Kind
		switch te.GetType() {
		case "blob":
			kind = pathresolve.KindFile
		case "tree":
			kind = pathresolve.KindDirectory
		default:
			continue
		}
		entries = append(entries, pathresolve.Entry{Path: te.GetPath(), Kind: kind})
	}
	if tree.GetTruncated() {
		// GitHub caps recursive listings; a partial tree is still usable.
		log.Printf("githost: tree for %s/%s@%s truncated at %d entries", owner, repo, ref, len(entries))
	}
	return entries, nil
}

// Readme fetches and decodes the repository README. A missing README is
// an empty string, not an error.
func (c *Client) Readme(ctx context.Context, owner, repo string) (string, error) {
	content, resp, err := c.gh.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("githost: readme %s/%s: %w", owner, repo, err)
	}
	text, err := content.GetContent()
	if err != nil {
		return "", fmt.Errorf("githost: decode readme %s/%s: %w", owner, repo, err)
	}
	return text, nil
}
