package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var _ PostRepository = (*PostRepositoryImpl)(nil)

// PostRepositoryImpl handles database operations for discovered posts
type PostRepositoryImpl struct {
	db *DB
}

func NewPostRepository(db *DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

// UpsertPost records a discovered URL. Re-discovery only refreshes lastmod;
// enrichment columns are untouched.
func (r *PostRepositoryImpl) UpsertPost(url string, lastmod *time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO posts (url, lastmod)
		VALUES ($1, $2)
		ON CONFLICT (url) DO UPDATE SET
			lastmod = EXCLUDED.lastmod,
			updated_at = NOW()
	`, url, lastmod)

	if err != nil {
		return fmt.Errorf("failed to upsert post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetPost(url string) (*Post, error) {
	var post Post
	err := r.db.QueryRow(`
		SELECT url, lastmod, COALESCE(title, ''), COALESCE(author, ''), published_at,
		       COALESCE(tags, '{}'), COALESCE(group_name, ''), COALESCE(system_name, ''),
		       COALESCE(campaign_name, ''), duration_seconds, COALESCE(duration_source, ''),
		       COALESCE(download_url, ''), file_size_bytes, COALESCE(youtube_urls, '{}'),
		       extracted_at, extract_attempts, COALESCE(last_extract_error, ''),
		       created_at, updated_at
		FROM posts
		WHERE url = $1
	`, url).Scan(
		&post.URL, &post.Lastmod, &post.Title, &post.Author, &post.PublishedAt,
		pq.Array(&post.Tags), &post.GroupName, &post.SystemName,
		&post.CampaignName, &post.DurationSeconds, &post.DurationSource,
		&post.DownloadURL, &post.FileSizeBytes, pq.Array(&post.YoutubeURLs),
		&post.ExtractedAt, &post.ExtractAttempts, &post.LastExtractError,
		&post.CreatedAt, &post.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (r *PostRepositoryImpl) GetPostCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

// GetPostsNeedingExtraction selects the extraction backlog: posts that have
// never been attempted and still miss enrichable fields, newest first.
// Attempted rows are excluded even when incomplete, which is what keeps
// until-empty runs from looping forever on permanently-unresolvable posts.
func (r *PostRepositoryImpl) GetPostsNeedingExtraction(limit int) ([]PostForExtraction, error) {
	rows, err := r.db.Query(`
		SELECT url, lastmod
		FROM posts
		WHERE extracted_at IS NULL
		  AND (
		    duration_seconds IS NULL
		    OR tags IS NULL
		    OR author IS NULL
		    OR group_name IS NULL OR group_name = ''
		    OR system_name IS NULL OR system_name = ''
		    OR campaign_name IS NULL OR campaign_name = ''
		  )
		ORDER BY lastmod DESC NULLS LAST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts needing extraction: %w", err)
	}
	defer rows.Close()

	var posts []PostForExtraction
	for rows.Next() {
		var post PostForExtraction
		if err := rows.Scan(&post.URL, &post.Lastmod); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

// ApplyExtraction merges one extraction attempt into a post. COALESCE keeps
// existing values when the attempt found nothing; NULLIF keeps empty strings
// from blocking later backfills. The attempt is stamped and any previous
// error cleared.
func (r *PostRepositoryImpl) ApplyExtraction(url string, update PostUpdate) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET title = COALESCE(NULLIF($2, ''), title),
		    author = COALESCE(NULLIF($3, ''), author),
		    published_at = COALESCE($4, published_at),
		    tags = COALESCE($5, tags),

		    group_name = COALESCE(NULLIF($6, ''), group_name),
		    system_name = COALESCE(NULLIF($7, ''), system_name),
		    campaign_name = COALESCE(NULLIF($8, ''), campaign_name),

		    duration_seconds = COALESCE($9::int, duration_seconds),
		    duration_source = CASE
		        WHEN $9::int IS NULL THEN duration_source
		        ELSE 'wp_html'
		    END,

		    download_url = COALESCE(NULLIF($10, ''), download_url),
		    file_size_bytes = COALESCE($11::bigint, file_size_bytes),
		    youtube_urls = COALESCE($12, youtube_urls),

		    extracted_at = NOW(),
		    extract_attempts = extract_attempts + 1,
		    last_extract_error = NULL,
		    updated_at = NOW()
		WHERE url = $1
	`, url, update.Title, update.Author, update.PublishedAt,
		pq.Array(update.Tags), update.GroupName, update.SystemName,
		update.CampaignName, update.DurationSeconds, update.DownloadURL,
		update.FileSizeBytes, pq.Array(update.YoutubeURLs))

	if err != nil {
		return fmt.Errorf("failed to apply extraction: %w", err)
	}

	return nil
}

// MarkExtractError stamps a failed attempt so until-empty runs don't retry
// the same URL immediately.
func (r *PostRepositoryImpl) MarkExtractError(url string, extractError string) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET extracted_at = NOW(),
		    extract_attempts = extract_attempts + 1,
		    last_extract_error = LEFT($2, 2000),
		    updated_at = NOW()
		WHERE url = $1
	`, url, extractError)

	if err != nil {
		return fmt.Errorf("failed to mark extract error: %w", err)
	}

	return nil
}
