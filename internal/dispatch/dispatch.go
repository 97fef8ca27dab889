// Package dispatch routes a classified target to its single
// authoritative retrieval backend, gated by the address safety check.
package dispatch

import (
	"context"

	"github.com/earth-sol/onefilellm/internal/classify"
	"github.com/earth-sol/onefilellm/internal/crawl"
	"github.com/earth-sol/onefilellm/internal/safety"
)

// Content is the normalized text obtained from a backend. VisitedURLs is
// populated only for crawl results and feeds the sidecar listing.
type Content struct {
	Text        string
	VisitedURLs []string
}

// TextFetch is the contract every single-document backend satisfies.
type TextFetch func(ctx context.Context, ref string) (string, error)

// CrawlFetch is the contract for the site traversal backend.
type CrawlFetch func(ctx context.Context, seed string) (crawl.Result, error)

// Backends binds one retrieval routine per classification kind.
type Backends struct {
	Repository    TextFetch
	PullRequest   TextFetch
	Issue         TextFetch
	Document      TextFetch
	Transcript    TextFetch
	Bibliographic TextFetch
	Web           CrawlFetch
}

// Dispatcher orchestrates safety checking and backend selection. SafeURL
// defaults to safety.IsSafeURL and is injectable for tests.
type Dispatcher struct {
	backends Backends
	safeURL  func(string) bool
}

func New(backends Backends) *Dispatcher {
	return &Dispatcher{backends: backends, safeURL: safety.IsSafeURL}
}

// Dispatch invokes the backend matching the target. Network-bound
// targets are safety-checked first and fail with ErrSecurityRejected
// without any fetch being attempted. There is no fallback chain and no
// retry: any backend failure surfaces as a BackendError.
func (d *Dispatcher) Dispatch(ctx context.Context, target classify.Target) (Content, error) {
	if target.Kind == classify.KindRejected {
		return Content{}, ErrNotDispatchable
	}
	if target.NetworkBound() && !d.safeURL(target.Input) {
		return Content{}, ErrSecurityRejected
	}

	if target.Kind == classify.KindWeb {
		result, err := d.backends.Web(ctx, target.Input)
		if err != nil {
			return Content{}, &BackendError{Backend: target.Kind.String(), Err: err}
		}
		return Content{Text: result.Text, VisitedURLs: result.Visited}, nil
	}

	var fetch TextFetch
	switch target.Kind {
	case classify.KindRepository:
		fetch = d.backends.Repository
	case classify.KindPullRequest:
		fetch = d.backends.PullRequest
	case classify.KindIssue:
		fetch = d.backends.Issue
	case classify.KindDocument:
		fetch = d.backends.Document
	case classify.KindVideo:
		fetch = d.backends.Transcript
	case classify.KindBibliographic:
		fetch = d.backends.Bibliographic
	}

	text, err := fetch(ctx, target.Input)
	if err != nil {
		return Content{}, &BackendError{Backend: target.Kind.String(), Err: err}
	}
	return Content{Text: text}, nil
}
