package fetch

import (
	"context"
	"fmt"
	"strings"
)

// Arxiv retrieves academic documents from arxiv.org. PDF links are
// redirected to the abstract page, which carries the title, authors, and
// abstract in extractable HTML.
type Arxiv struct {
	http      *HTTPClient
	converter *Converter
}

func NewArxiv(client *HTTPClient) *Arxiv {
	return &Arxiv{http: client, converter: NewConverter()}
}

// Document fetches the abstract page for the given arXiv URL and returns
// it as markdown.
func (a *Arxiv) Document(ctx context.Context, rawURL string) (string, error) {
	absURL := abstractURL(rawURL)
	body, err := a.http.Get(ctx, absURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch arxiv page: %w", err)
	}
	title, markdown, err := a.converter.Convert(body)
	if err != nil {
		return "", fmt.Errorf("convert arxiv page: %w", err)
	}
	if title != "" && !strings.HasPrefix(markdown, "#") {
		return "# " + title + "\n\n" + markdown, nil
	}
	return markdown, nil
}

// abstractURL maps /pdf/<id>(.pdf)? URLs onto their /abs/<id> page.
func abstractURL(rawURL string) string {
	u := strings.Replace(rawURL, "/pdf/", "/abs/", 1)
	return strings.TrimSuffix(u, ".pdf")
}
