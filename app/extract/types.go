package extract

import (
	"time"
)

// Candidate is the output of one extraction attempt over a single page.
// Zero values mean "not found"; the repository merge never overwrites an
// existing column with an absent value.
type Candidate struct {
	Title       string
	Author      string
	PublishedAt *time.Time
	Tags        []string

	DurationSeconds *int
	DownloadURL     string
	FileSizeBytes   *int64
	YoutubeURLs     []string

	// PageText is the whitespace-normalized visible text of the whole page.
	// Not persisted; feeds the inference engine as a low-weight haystack.
	PageText string
}
