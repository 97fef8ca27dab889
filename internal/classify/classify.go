// Package classify maps a raw input string to exactly one retrieval
// target. Classification is total and pure: every input terminates at
// one of the Kind variants, unrecognized shapes at KindRejected.
package classify

import (
	"net/url"
	"strings"
)

// Kind identifies which retrieval backend is authoritative for an input.
type Kind int

const (
	KindRejected Kind = iota
	KindRepository
	KindPullRequest
	KindIssue
	KindVideo
	KindDocument
	KindWeb
	KindBibliographic
)

func (k Kind) String() string {
	switch k {
	case KindRepository:
		return "repository"
	case KindPullRequest:
		return "pull_request"
	case KindIssue:
		return "issue"
	case KindVideo:
		return "video"
	case KindDocument:
		return "document"
	case KindWeb:
		return "web"
	case KindBibliographic:
		return "bibliographic"
	default:
		return "rejected"
	}
}

// Target is the outcome of classifying one raw input. Input carries the
// original string (for KindBibliographic the trimmed identifier). Reason
// is set only for KindRejected.
type Target struct {
	Kind   Kind
	Input  string
	Reason string
}

// NetworkBound reports whether dispatching this target implies fetching
// a caller-controlled URL. Bibliographic identifiers resolve through
// fixed trusted services and are exempt from the URL safety check.
func (t Target) NetworkBound() bool {
	switch t.Kind {
	case KindRepository, KindPullRequest, KindIssue, KindVideo, KindDocument, KindWeb:
		return true
	}
	return false
}

// Classify decides which backend owns the given input. Rules are ordered
// and the first match wins: the github.com marker takes precedence over
// generic URL parsing, and within it pull requests are checked before
// issues.
func Classify(raw string) Target {
	input := strings.TrimSpace(raw)
	if input == "" {
		return Target{Kind: KindRejected, Input: raw, Reason: "empty input"}
	}

	if strings.Contains(input, "github.com") {
		switch {
		case strings.Contains(input, "/pull/"):
			return Target{Kind: KindPullRequest, Input: input}
		case strings.Contains(input, "/issues/"):
			return Target{Kind: KindIssue, Input: input}
		default:
			return Target{Kind: KindRepository, Input: input}
		}
	}

	if parsed, err := url.Parse(input); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		switch {
		case strings.Contains(input, "youtube.com") || strings.Contains(input, "youtu.be"):
			return Target{Kind: KindVideo, Input: input}
		case strings.Contains(input, "arxiv.org"):
			return Target{Kind: KindDocument, Input: input}
		default:
			return Target{Kind: KindWeb, Input: input}
		}
	}

	if isDOI(input) || isPMID(input) {
		return Target{Kind: KindBibliographic, Input: input}
	}

	// Local filesystem paths and anything else unrecognized are rejected
	// here, never attempted as a local read.
	return Target{Kind: KindRejected, Input: raw, Reason: "unsupported input; expected a URL, DOI, or PMID"}
}

func isDOI(s string) bool {
	return strings.HasPrefix(s, "10.") && strings.Contains(s, "/")
}

func isPMID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
