package fetch

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Extensions considered text-like enough to include in a repository dump.
var includedExtensions = map[string]struct{}{
	".c": {}, ".cfg": {}, ".cpp": {}, ".css": {}, ".csv": {}, ".go": {},
	".h": {}, ".html": {}, ".ini": {}, ".ipynb": {}, ".java": {}, ".js": {},
	".json": {}, ".jsonl": {}, ".md": {}, ".proto": {}, ".py": {}, ".rb": {},
	".rs": {}, ".rst": {}, ".sh": {}, ".sql": {}, ".toml": {}, ".ts": {},
	".txt": {}, ".xml": {}, ".yaml": {}, ".yml": {},
}

// GitHub retrieves repositories, pull requests, and issues through the
// REST API. An optional token raises the rate limit; without one the
// anonymous limits apply.
type GitHub struct {
	http    *HTTPClient
	apiBase string
	token   string
}

func NewGitHub(client *HTTPClient, token string) *GitHub {
	return &GitHub{http: client, apiBase: "https://api.github.com", token: token}
}

func (g *GitHub) headers(accept string) map[string]string {
	h := map[string]string{"Accept": accept}
	if g.token != "" {
		h["Authorization"] = "Bearer " + g.token
	}
	return h
}

// repoRef is a parsed owner/name pair plus the optional ref and subpath
// from /tree/<ref>/<path> URLs.
type repoRef struct {
	owner   string
	name    string
	ref     string
	subpath string
}

func parseRepoURL(raw string) (repoRef, error) {
	u, err := url.Parse(normalizeGitHubURL(raw))
	if err != nil {
		return repoRef{}, fmt.Errorf("parse repository url: %w", err)
	}
	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return repoRef{}, fmt.Errorf("repository url %q must contain owner and name", raw)
	}
	ref := repoRef{owner: parts[0], name: strings.TrimSuffix(parts[1], ".git")}
	if len(parts) >= 4 && parts[2] == "tree" {
		ref.ref = parts[3]
		if len(parts) > 4 {
			ref.subpath = strings.Join(parts[4:], "/")
		}
	}
	return ref, nil
}

// issueRef identifies one pull request or issue.
type issueRef struct {
	owner  string
	name   string
	number string
}

func parseIssueURL(raw, segment string) (issueRef, error) {
	u, err := url.Parse(normalizeGitHubURL(raw))
	if err != nil {
		return issueRef{}, fmt.Errorf("parse url: %w", err)
	}
	parts := splitPath(u.Path)
	for i := 2; i < len(parts)-1; i++ {
		if parts[i] == segment {
			return issueRef{owner: parts[0], name: parts[1], number: parts[i+1]}, nil
		}
	}
	return issueRef{}, fmt.Errorf("url %q does not contain a /%s/<number> segment", raw, segment)
}

func normalizeGitHubURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

func splitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return parts
}

// Repository walks the repository contents tree and concatenates every
// included text file, each prefixed with a path header.
func (g *GitHub) Repository(ctx context.Context, rawURL string) (string, error) {
	ref, err := parseRepoURL(rawURL)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Repository: %s/%s\n\n", ref.owner, ref.name)
	if err := g.walkContents(ctx, ref, ref.subpath, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

type contentEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}

func (g *GitHub) walkContents(ctx context.Context, ref repoRef, dir string, sb *strings.Builder) error {
	apiURL := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.apiBase, ref.owner, ref.name, dir)
	if ref.ref != "" {
		apiURL += "?ref=" + url.QueryEscape(ref.ref)
	}
	var entries []contentEntry
	if err := g.http.GetJSON(ctx, apiURL, g.headers("application/vnd.github+json"), &entries); err != nil {
		return fmt.Errorf("list %s/%s contents: %w", ref.owner, ref.name, err)
	}

	for _, e := range entries {
		switch e.Type {
		case "dir":
			if err := g.walkContents(ctx, ref, e.Path, sb); err != nil {
				return err
			}
		case "file":
			if _, ok := includedExtensions[strings.ToLower(path.Ext(e.Name))]; !ok {
				continue
			}
			if e.DownloadURL == "" {
				continue
			}
			body, err := g.http.Get(ctx, e.DownloadURL, g.headers("application/vnd.github.raw"))
			if err != nil {
				return fmt.Errorf("download %s: %w", e.Path, err)
			}
			fmt.Fprintf(sb, "# File: %s\n\n%s\n\n", e.Path, strings.TrimRight(string(body), "\n"))
		}
	}
	return nil
}

type pullData struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	State string `json:"state"`
	User  struct {
		Login string `json:"login"`
	} `json:"user"`
}

type commentData struct {
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
	Path string `json:"path,omitempty"`
}

// PullRequest assembles the pull request metadata, its unified diff, and
// all review and discussion comments into one text block.
func (g *GitHub) PullRequest(ctx context.Context, rawURL string) (string, error) {
	ref, err := parseIssueURL(rawURL, "pull")
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s/repos/%s/%s/pulls/%s", g.apiBase, ref.owner, ref.name, ref.number)

	var pr pullData
	if err := g.http.GetJSON(ctx, base, g.headers("application/vnd.github+json"), &pr); err != nil {
		return "", fmt.Errorf("fetch pull request: %w", err)
	}
	diff, err := g.http.Get(ctx, base, g.headers("application/vnd.github.diff"))
	if err != nil {
		return "", fmt.Errorf("fetch pull request diff: %w", err)
	}
	var reviewComments []commentData
	if err := g.http.GetJSON(ctx, base+"/comments", g.headers("application/vnd.github+json"), &reviewComments); err != nil {
		return "", fmt.Errorf("fetch review comments: %w", err)
	}
	issueBase := fmt.Sprintf("%s/repos/%s/%s/issues/%s", g.apiBase, ref.owner, ref.name, ref.number)
	var discussion []commentData
	if err := g.http.GetJSON(ctx, issueBase+"/comments", g.headers("application/vnd.github+json"), &discussion); err != nil {
		return "", fmt.Errorf("fetch discussion comments: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Pull Request #%s: %s\nAuthor: %s\nState: %s\n\n%s\n\n", ref.number, pr.Title, pr.User.Login, pr.State, pr.Body)
	sb.WriteString("## Diff\n\n")
	sb.Write(diff)
	writeComments(&sb, "Review Comments", reviewComments)
	writeComments(&sb, "Discussion", discussion)
	return sb.String(), nil
}

// Issue assembles the issue body and its comment thread.
func (g *GitHub) Issue(ctx context.Context, rawURL string) (string, error) {
	ref, err := parseIssueURL(rawURL, "issues")
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s/repos/%s/%s/issues/%s", g.apiBase, ref.owner, ref.name, ref.number)

	var issue pullData
	if err := g.http.GetJSON(ctx, base, g.headers("application/vnd.github+json"), &issue); err != nil {
		return "", fmt.Errorf("fetch issue: %w", err)
	}
	var comments []commentData
	if err := g.http.GetJSON(ctx, base+"/comments", g.headers("application/vnd.github+json"), &comments); err != nil {
		return "", fmt.Errorf("fetch issue comments: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Issue #%s: %s\nAuthor: %s\nState: %s\n\n%s\n", ref.number, issue.Title, issue.User.Login, issue.State, issue.Body)
	writeComments(&sb, "Comments", comments)
	return sb.String(), nil
}

func writeComments(sb *strings.Builder, heading string, comments []commentData) {
	if len(comments) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n\n", heading)
	for _, c := range comments {
		if c.Path != "" {
			fmt.Fprintf(sb, "**%s** (%s):\n%s\n\n", c.User.Login, c.Path, c.Body)
		} else {
			fmt.Fprintf(sb, "**%s**:\n%s\n\n", c.User.Login, c.Body)
		}
	}
}
