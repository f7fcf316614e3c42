package database

import (
	"time"
)

type PostRepository interface {
	UpsertPost(url string, lastmod *time.Time) error
	GetPost(url string) (*Post, error)
	GetPostCount() (int, error)

	GetPostsNeedingExtraction(limit int) ([]PostForExtraction, error)
	ApplyExtraction(url string, update PostUpdate) error
	MarkExtractError(url string, extractError string) error
}

type SourceRepository interface {
	UpsertSource(name, url string) error
	GetSource(name string) (*Source, error)
	GetSourceCount() (int, error)

	UpdateNextFetch(name string, lastFetched, nextFetch time.Time) error
}

type StatsRepository interface {
	GetSummary() (*StatsSummary, error)
	TopGroupsByHours(limit int) ([]GroupHours, error)
	TopAuthorsByHours(limit int) ([]AuthorHours, error)
	TopSystemsByHours(limit int) ([]SystemHours, error)
	TopSystemsByCount(limit int) ([]SystemHours, error)
	TopCampaignsByHours(limit int) ([]CampaignHours, error)
	TopGroupSystemPairs(limit int) ([]GroupSystemHours, error)
	TopGroupCampaignPairs(limit int) ([]GroupCampaignHours, error)
	MissingDurationPosts(limit int) ([]MissingDurationPost, error)
}
