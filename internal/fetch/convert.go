package fetch

import (
	"bytes"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

var excessiveLinesRe = regexp.MustCompile(`\n{4,}`)

// Converter turns fetched HTML into readable markdown. Navigation,
// scripts, and other chrome are stripped before conversion.
type Converter struct {
	converter *md.Converter
}

func NewConverter() *Converter {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	return &Converter{converter: converter}
}

// Convert extracts the page title and the main content as markdown.
func (c *Converter) Convert(htmlContent []byte) (title, markdown string, err error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlContent))
	if err != nil {
		return "", "", err
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, iframe, nav, header, footer, aside, form").Remove()

	root := doc.Find("main, article, [role=main]").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	content, err := root.Html()
	if err != nil {
		return "", "", err
	}

	markdown, err = c.converter.ConvertString(content)
	if err != nil {
		return "", "", err
	}
	markdown = strings.TrimSpace(excessiveLinesRe.ReplaceAllString(markdown, "\n\n\n"))
	return title, markdown, nil
}
