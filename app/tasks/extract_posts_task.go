package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rpgmp3/rpgstats/app/database"
	"github.com/rpgmp3/rpgstats/app/extract"
	"github.com/rpgmp3/rpgstats/app/infer"
)

const fetchTimeout = 30 * time.Second

// ExtractPostsTask is the resumable extraction loop. One execution drains
// the backlog in batches: select up to batchSize posts that have never been
// attempted, fetch and extract each one sequentially, merge the results
// under fill-if-empty semantics, and stop when the backlog is empty or a
// configured cap is reached. Failed posts are stamped and skipped, never
// retried within the run.
type ExtractPostsTask struct {
	Task
	httpClient *http.Client
	extractor  *extract.Extractor
	engine     *infer.Engine
	postRepo   database.PostRepository
	userAgent  string
	batchSize  int
	fetchDelay time.Duration
	maxBatches int // 0 = run until the backlog is empty
	maxPosts   int // 0 = no cap on posts processed
}

func NewExtractPostsTask(httpClient *http.Client, extractor *extract.Extractor,
	engine *infer.Engine, postRepo database.PostRepository, userAgent string,
	batchSize int, fetchDelay time.Duration, maxBatches, maxPosts int) *ExtractPostsTask {
	return &ExtractPostsTask{
		Task:       NewTask(TaskTypeExtractPosts, "backlog"),
		httpClient: httpClient,
		extractor:  extractor,
		engine:     engine,
		postRepo:   postRepo,
		userAgent:  userAgent,
		batchSize:  batchSize,
		fetchDelay: fetchDelay,
		maxBatches: maxBatches,
		maxPosts:   maxPosts,
	}
}

func (t *ExtractPostsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	processed := 0
	updated := 0
	failed := 0
	batches := 0

	for {
		if t.maxBatches > 0 && batches >= t.maxBatches {
			slog.Debug("Batch cap reached", "batches", batches)
			break
		}

		limit := t.batchSize
		if t.maxPosts > 0 && t.maxPosts-processed < limit {
			limit = t.maxPosts - processed
		}
		if limit <= 0 {
			slog.Debug("Post cap reached", "processed", processed)
			break
		}

		posts, err := t.postRepo.GetPostsNeedingExtraction(limit)
		if err != nil {
			return fmt.Errorf("failed to get posts needing extraction: %w", err)
		}

		if len(posts) == 0 {
			// Backlog exhausted
			break
		}
		batches++

		for _, post := range posts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			err := t.extractPost(ctx, post.URL)
			processed++

			if err != nil {
				slog.Error("Failed to extract post", "url", post.URL, "error", err)
				failed++

				if markErr := t.postRepo.MarkExtractError(post.URL, err.Error()); markErr != nil {
					slog.Error("Failed to record extraction error", "url", post.URL, "error", markErr)
				}
			} else {
				updated++
			}

			// Politeness delay toward the source server, success or not
			if t.fetchDelay > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(t.fetchDelay):
				}
			}

			if t.maxPosts > 0 && processed >= t.maxPosts {
				break
			}
		}
	}

	slog.Info("Task completed",
		"type", "ExtractPosts",
		"duration", t.GetDuration(),
		"batches", batches,
		"processed", processed,
		"updated", updated,
		"failed", failed)

	return nil
}

// extractPost runs the full pipeline for one URL: fetch, extract observable
// fields, infer group/system/campaign, merge into the post record.
func (t *ExtractPostsTask) extractPost(ctx context.Context, postURL string) error {
	data, err := t.fetchPage(ctx, postURL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	candidate, err := t.extractor.Run(data, postURL)
	if err != nil {
		return fmt.Errorf("failed to extract fields: %w", err)
	}

	groupName := t.engine.InferGroup(candidate.Tags, candidate.PageText)
	systemName := t.engine.InferSystem(candidate.Tags, candidate.PageText)
	campaignName := t.engine.InferCampaign(candidate.Tags, candidate.Title, groupName, systemName, postURL)

	update := database.PostUpdate{
		Title:           candidate.Title,
		Author:          candidate.Author,
		PublishedAt:     candidate.PublishedAt,
		Tags:            candidate.Tags,
		GroupName:       groupName,
		SystemName:      systemName,
		CampaignName:    campaignName,
		DurationSeconds: candidate.DurationSeconds,
		DownloadURL:     candidate.DownloadURL,
		FileSizeBytes:   candidate.FileSizeBytes,
		YoutubeURLs:     candidate.YoutubeURLs,
	}

	if err := t.postRepo.ApplyExtraction(postURL, update); err != nil {
		return fmt.Errorf("failed to apply extraction: %w", err)
	}

	slog.Debug("Post extracted successfully",
		"url", postURL,
		"group", groupName,
		"system", systemName,
		"campaign", campaignName)

	return nil
}

func (t *ExtractPostsTask) fetchPage(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
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

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
