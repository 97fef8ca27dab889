// Package crawl implements bounded breadth-first traversal of a web
// site, assembling readable text from every visited page.
package crawl

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/earth-sol/onefilellm/internal/fetch"
)

// Result is the assembled crawl output. Visited preserves traversal
// order and feeds the sidecar URL listing.
type Result struct {
	Text    string
	Visited []string
}

// Crawler walks pages breadth-first from a seed URL, staying on the
// seed's host. PDF links are recorded but not parsed; EPUB links are
// skipped entirely when configured.
type Crawler struct {
	http        *fetch.HTTPClient
	maxDepth    int
	maxPages    int
	includePDFs bool
	ignoreEPUBs bool
}

func New(client *fetch.HTTPClient, maxDepth, maxPages int, includePDFs, ignoreEPUBs bool) *Crawler {
	if maxDepth <= 0 {
		maxDepth = 2
	}
	if maxPages <= 0 {
		maxPages = 100
	}
	return &Crawler{
		http:        client,
		maxDepth:    maxDepth,
		maxPages:    maxPages,
		includePDFs: includePDFs,
		ignoreEPUBs: ignoreEPUBs,
	}
}

type queueItem struct {
	url   string
	depth int
}

// Crawl traverses from seed and returns the concatenated page texts plus
// the ordered list of URLs actually visited. The seed page failing is an
// error; failures on deeper pages are skipped so one broken link does
// not void the whole crawl.
func (c *Crawler) Crawl(ctx context.Context, seed string) (Result, error) {
	seedURL, err := url.Parse(seed)
	if err != nil {
		return Result{}, fmt.Errorf("parse seed url: %w", err)
	}

	var (
		result Result
		sb     strings.Builder
		seen   = map[string]struct{}{seed: {}}
		queue  = []queueItem{{url: seed, depth: 1}}
	)

	for len(queue) > 0 && len(result.Visited) < c.maxPages {
		item := queue[0]
		queue = queue[1:]

		if isPDF(item.url) {
			if c.includePDFs {
				result.Visited = append(result.Visited, item.url)
				fmt.Fprintf(&sb, "--- %s ---\n\n[PDF document: %s]\n\n", item.url, item.url)
			}
			continue
		}

		body, err := c.http.Get(ctx, item.url, nil)
		if err != nil {
			if item.url == seed {
				return Result{}, fmt.Errorf("fetch %s: %w", seed, err)
			}
			continue
		}
		result.Visited = append(result.Visited, item.url)

		pageURL, _ := url.Parse(item.url)
		if text := extractText(body, pageURL); text != "" {
			fmt.Fprintf(&sb, "--- %s ---\n\n%s\n\n", item.url, text)
		}

		if item.depth >= c.maxDepth {
			continue
		}
		for _, link := range c.extractLinks(body, pageURL, seedURL) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			queue = append(queue, queueItem{url: link, depth: item.depth + 1})
		}
	}

	result.Text = strings.TrimSpace(sb.String())
	return result, nil
}

// extractText pulls the readable article content from a page. Sparse
// pages that readability declines to extract fall back to the raw
// document text.
func extractText(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(strings.Join(strings.Fields(doc.Text()), " "))
}

// extractLinks returns same-host links found on the page, resolved to
// absolute form with fragments stripped.
func (c *Crawler) extractLinks(body []byte, pageURL, seedURL *url.URL) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		resolved, err := pageURL.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if resolved.Host != seedURL.Host {
			return
		}
		if c.ignoreEPUBs && strings.HasSuffix(strings.ToLower(resolved.Path), ".epub") {
			return
		}
		if !c.includePDFs && isPDF(resolved.String()) {
			return
		}
		resolved.Fragment = ""
		links = append(links, resolved.String())
	})
	return links
}

func isPDF(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
