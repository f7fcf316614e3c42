package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rpgmp3/rpgstats/app/database"
	"github.com/rpgmp3/rpgstats/app/discover"
	"github.com/rpgmp3/rpgstats/app/source"
)

// A sitemap index pointing at more indexes is suspicious; stop following
// children past this depth.
const maxSitemapDepth = 3

type IngestSourceTask struct {
	Task
	SourceConfig  *source.Config
	httpClient    *http.Client
	sitemapParser *discover.SitemapParser
	feedParser    *discover.FeedParser
	sourceRepo    database.SourceRepository
	postRepo      database.PostRepository
	userAgent     string
}

func NewIngestSourceTask(sourceName string, sourceConfig *source.Config, httpClient *http.Client,
	sitemapParser *discover.SitemapParser, feedParser *discover.FeedParser,
	sourceRepo database.SourceRepository, postRepo database.PostRepository, userAgent string) *IngestSourceTask {
	return &IngestSourceTask{
		Task:          NewTask(TaskTypeIngestSource, sourceName),
		SourceConfig:  sourceConfig,
		httpClient:    httpClient,
		sitemapParser: sitemapParser,
		feedParser:    feedParser,
		sourceRepo:    sourceRepo,
		postRepo:      postRepo,
		userAgent:     userAgent,
	}
}

// Execute discovers post URLs from the source and records them in the
// backlog. Known URLs only get their lastmod refreshed; enrichment is left
// to the extraction loop.
func (t *IngestSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var entries []discover.Entry
	var err error

	switch t.SourceConfig.Type {
	case "rss":
		entries, err = t.discoverFromFeed(ctx)
	default:
		entries, err = t.discoverFromSitemap(ctx)
	}
	if err != nil {
		return err
	}

	ingested := 0
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := t.postRepo.UpsertPost(entry.URL, entry.LastMod); err != nil {
			return fmt.Errorf("failed to upsert post %s: %w", entry.URL, err)
		}
		ingested++
	}

	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.SourceConfig.Settings.RefreshInterval) * time.Second)
	if err := t.sourceRepo.UpdateNextFetch(t.SourceName, now, nextFetch); err != nil {
		return fmt.Errorf("failed to update next fetch time: %w", err)
	}

	slog.Info("Task completed",
		"type", "IngestSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"ingested", ingested)

	return nil
}

func (t *IngestSourceTask) discoverFromFeed(ctx context.Context) ([]discover.Entry, error) {
	data, err := t.fetch(ctx, t.SourceConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	entries, err := t.feedParser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return entries, nil
}

// discoverFromSitemap walks the sitemap, following index children
// breadth-first. A child sitemap that fails to fetch or parse is logged
// and skipped so one broken shard doesn't lose the whole source.
func (t *IngestSourceTask) discoverFromSitemap(ctx context.Context) ([]discover.Entry, error) {
	data, err := t.fetch(ctx, t.SourceConfig.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}

	entries, children, err := t.sitemapParser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	seen := map[string]bool{t.SourceConfig.URL: true}
	for depth := 0; depth < maxSitemapDepth && len(children) > 0; depth++ {
		var next []string
		for _, childURL := range children {
			if seen[childURL] {
				continue
			}
			seen[childURL] = true

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			childData, err := t.fetch(ctx, childURL)
			if err != nil {
				slog.Warn("Failed to fetch child sitemap", "source", t.SourceName, "url", childURL, "error", err)
				continue
			}

			childEntries, grandchildren, err := t.sitemapParser.Run(childData)
			if err != nil {
				slog.Warn("Failed to parse child sitemap", "source", t.SourceName, "url", childURL, "error", err)
				continue
			}

			entries = append(entries, childEntries...)
			next = append(next, grandchildren...)
		}
		children = next
	}

	return entries, nil
}

func (t *IngestSourceTask) fetch(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, time.Duration(t.SourceConfig.Settings.Timeout)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
