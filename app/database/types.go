package database

import (
	"time"
)

type Post struct {
	URL     string // Primary key
	Lastmod *time.Time

	Title       string
	Author      string
	PublishedAt *time.Time
	Tags        []string

	GroupName    string
	SystemName   string
	CampaignName string

	DurationSeconds *int
	DurationSource  string // "wp_html" when parsed from page HTML
	DownloadURL     string
	FileSizeBytes   *int64
	YoutubeURLs     []string

	ExtractedAt      *time.Time
	ExtractAttempts  int
	LastExtractError string

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Source struct {
	Name          string
	URL           string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PostForExtraction is the slim selection the batch loop works from.
type PostForExtraction struct {
	URL     string
	Lastmod *time.Time
}

// PostUpdate carries one extraction attempt's results into the merge.
// Empty strings and nil pointers/slices mean "no value found" and never
// overwrite an existing column.
type PostUpdate struct {
	Title       string
	Author      string
	PublishedAt *time.Time
	Tags        []string

	GroupName    string
	SystemName   string
	CampaignName string

	DurationSeconds *int
	DownloadURL     string
	FileSizeBytes   *int64
	YoutubeURLs     []string
}

// Analytics result rows. Hours are fractional; counts only include posts
// that have a parsed duration.

type StatsSummary struct {
	TotalPosts           int     `json:"total_posts"`
	WithDuration         int     `json:"with_duration"`
	MissingDuration      int     `json:"missing_duration"`
	TotalSecondsAll      int64   `json:"total_seconds_all"`
	TotalSecondsSessions int64   `json:"total_seconds_sessions"`
	TotalHoursAll        float64 `json:"total_hours_all"`
	TotalHoursSessions   float64 `json:"total_hours_sessions"`
}

type GroupHours struct {
	GroupName string  `json:"group_name"`
	Hours     float64 `json:"hours"`
	Sessions  int     `json:"sessions"`
}

type AuthorHours struct {
	Author   string  `json:"author"`
	Hours    float64 `json:"hours"`
	Sessions int     `json:"sessions"`
}

type SystemHours struct {
	SystemName string  `json:"system_name"`
	Hours      float64 `json:"hours"`
	Sessions   int     `json:"sessions"`
}

type CampaignHours struct {
	CampaignName string  `json:"campaign_name"`
	Hours        float64 `json:"hours"`
	Sessions     int     `json:"sessions"`
}

type GroupSystemHours struct {
	GroupName  string  `json:"group_name"`
	SystemName string  `json:"system_name"`
	Hours      float64 `json:"hours"`
	Sessions   int     `json:"sessions"`
}

type GroupCampaignHours struct {
	GroupName    string  `json:"group_name"`
	CampaignName string  `json:"campaign_name"`
	Hours        float64 `json:"hours"`
	Sessions     int     `json:"sessions"`
}

type MissingDurationPost struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	GroupName string `json:"group_name"`
}
