package discover

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
)

// urlSet represents a regular sitemap structure
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
}

// sitemapIndex represents a sitemap index structure
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Location string `xml:"loc"`
}

type SitemapParser struct{}

func NewSitemapParser() *SitemapParser {
	return &SitemapParser{}
}

// Run parses sitemap XML. A regular sitemap yields entries; a sitemap index
// yields the child sitemap URLs instead, for the caller to fetch and feed
// back through Run. Unparseable lastmod values are dropped, not errors.
func (p *SitemapParser) Run(data []byte) ([]Entry, []string, error) {
	if isSitemapIndex(data) {
		var index sitemapIndex
		if err := xml.Unmarshal(data, &index); err != nil {
			return nil, nil, fmt.Errorf("failed to parse sitemap index: %w", err)
		}

		var children []string
		for _, ref := range index.Sitemaps {
			if loc := strings.TrimSpace(ref.Location); loc != "" {
				children = append(children, loc)
			}
		}
		return nil, children, nil
	}

	var set urlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	entries := make([]Entry, 0, len(set.URLs))
	for _, u := range set.URLs {
		loc := strings.TrimSpace(u.Location)
		if loc == "" {
			continue
		}

		entry := Entry{URL: loc}
		if u.LastMod != "" {
			if parsed, err := dateparse.ParseAny(strings.TrimSpace(u.LastMod)); err == nil {
				entry.LastMod = &parsed
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil, nil
}

func isSitemapIndex(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.Contains(head, []byte("<sitemapindex"))
}
