package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Bibliographic resolves DOIs and PMIDs through fixed, trusted services:
// doi.org content negotiation for DOIs and NCBI E-utilities for PMIDs.
// Because the hosts are fixed, these lookups bypass the URL safety check.
type Bibliographic struct {
	http       *HTTPClient
	doiBase    string
	eutilsBase string
}

func NewBibliographic(client *HTTPClient) *Bibliographic {
	return &Bibliographic{
		http:       client,
		doiBase:    "https://doi.org",
		eutilsBase: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
	}
}

// Resolve dispatches on identifier shape: all digits is a PMID,
// anything else is treated as a DOI.
func (b *Bibliographic) Resolve(ctx context.Context, identifier string) (string, error) {
	id := strings.TrimSpace(identifier)
	if isAllDigits(id) {
		return b.resolvePMID(ctx, id)
	}
	return b.resolveDOI(ctx, id)
}

func isAllDigits(s string) bool {
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

type cslItem struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Container string `json:"container-title"`
	Abstract  string `json:"abstract"`
	DOI       string `json:"DOI"`
	Author    []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	Issued struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

func (b *Bibliographic) resolveDOI(ctx context.Context, doi string) (string, error) {
	var item cslItem
	headers := map[string]string{"Accept": "application/vnd.citationstyles.csl+json"}
	if err := b.http.GetJSON(ctx, b.doiBase+"/"+doi, headers, &item); err != nil {
		return "", fmt.Errorf("resolve DOI %s: %w", doi, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", item.Title)
	if len(item.Author) > 0 {
		names := make([]string, 0, len(item.Author))
		for _, a := range item.Author {
			names = append(names, strings.TrimSpace(a.Given+" "+a.Family))
		}
		fmt.Fprintf(&sb, "Authors: %s\n", strings.Join(names, ", "))
	}
	if item.Container != "" {
		fmt.Fprintf(&sb, "Published in: %s\n", item.Container)
	}
	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		fmt.Fprintf(&sb, "Year: %d\n", item.Issued.DateParts[0][0])
	}
	fmt.Fprintf(&sb, "DOI: %s\n", item.DOI)
	if item.Abstract != "" {
		fmt.Fprintf(&sb, "\n## Abstract\n\n%s\n", item.Abstract)
	}
	return sb.String(), nil
}

type pmidSummary struct {
	Result map[string]struct {
		Title    string `json:"title"`
		FullName string `json:"fulljournalname"`
		PubDate  string `json:"pubdate"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"result"`
}

func (b *Bibliographic) resolvePMID(ctx context.Context, pmid string) (string, error) {
	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&id=%s&retmode=json", b.eutilsBase, url.QueryEscape(pmid))
	var summary pmidSummary
	if err := b.http.GetJSON(ctx, summaryURL, nil, &summary); err != nil {
		return "", fmt.Errorf("resolve PMID %s: %w", pmid, err)
	}
	entry, ok := summary.Result[pmid]
	if !ok {
		return "", fmt.Errorf("PMID %s not found", pmid)
	}

	abstractURL := fmt.Sprintf("%s/efetch.fcgi?db=pubmed&id=%s&rettype=abstract&retmode=text", b.eutilsBase, url.QueryEscape(pmid))
	abstract, err := b.http.Get(ctx, abstractURL, nil)
	if err != nil {
		return "", fmt.Errorf("fetch PMID %s abstract: %w", pmid, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", entry.Title)
	if len(entry.Authors) > 0 {
		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			names = append(names, a.Name)
		}
		fmt.Fprintf(&sb, "Authors: %s\n", strings.Join(names, ", "))
	}
	if entry.FullName != "" {
		fmt.Fprintf(&sb, "Published in: %s\n", entry.FullName)
	}
	if entry.PubDate != "" {
		fmt.Fprintf(&sb, "Date: %s\n", entry.PubDate)
	}
	fmt.Fprintf(&sb, "PMID: %s\n\n%s\n", pmid, strings.TrimSpace(string(abstract)))
	return sb.String(), nil
}
