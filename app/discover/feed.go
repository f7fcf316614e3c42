package discover

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// FeedParser discovers post URLs from an RSS/Atom feed, for sources that
// publish a feed instead of a sitemap.
type FeedParser struct {
	gofeedParser *gofeed.Parser
}

func NewFeedParser() *FeedParser {
	return &FeedParser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *FeedParser) Run(data []byte) ([]Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		entry := Entry{URL: item.Link}
		if item.UpdatedParsed != nil {
			entry.LastMod = item.UpdatedParsed
		} else if item.PublishedParsed != nil {
			entry.LastMod = item.PublishedParsed
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
