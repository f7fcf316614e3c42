package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"
)

// Matches: Duration: 2:08:54 OR Duration: 48:12
var durationRe = regexp.MustCompile(`(?i)Duration:\s*([0-9]{1,2}:[0-9]{2}(?::[0-9]{2})?)`)

// Matches: — 69.6MB or - 69.6MB
var sizeRe = regexp.MustCompile(`(?i)[—-]\s*([0-9.]+)\s*(KB|MB|GB)\b`)

// Author markers tried in order; first match wins.
var authorSelectors = []string{
	"a[rel='author']",
	".author a",
	".entry-author a",
}

// Category/tag markers across common WordPress themes.
var tagSelectors = []string{
	".cat-links a",
	".tags-links a",
	"a[rel='category tag']",
	".post-meta a",
	".entry-meta a",
	".td-post-category a",
	".td-post-source-tags a",
}

// Navigation and podcast-platform labels that show up in tag containers
// but are not real categories.
var tagDenylist = map[string]bool{
	"download":       true,
	"play":           true,
	"rss":            true,
	"spotify":        true,
	"apple podcasts": true,
	"amazon music":   true,
	"pandora":        true,
	"iheartradio":    true,
	"podchaser":      true,
	"tunein":         true,
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Run extracts the directly observable post fields from raw page HTML.
// Pure function of its input: malformed dates and duration strings are
// swallowed and the corresponding field left absent.
func (e *Extractor) Run(data []byte, sourceURL string) (*Candidate, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	candidate := &Candidate{}

	candidate.Title = normalizeSpace(doc.Find("h1").First().Text())
	candidate.PublishedAt = e.extractPublished(doc)
	candidate.Author = e.extractAuthor(doc, data, sourceURL)
	candidate.Tags = e.extractTags(doc)
	e.extractDownload(doc, candidate)
	candidate.YoutubeURLs = e.extractVideos(doc)
	candidate.PageText = normalizeSpace(doc.Text())

	return candidate, nil
}

func (e *Extractor) extractPublished(doc *goquery.Document) *time.Time {
	value, exists := doc.Find("time[datetime]").First().Attr("datetime")
	if !exists || value == "" {
		return nil
	}

	parsed, err := dateparse.ParseAny(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &parsed
}

func (e *Extractor) extractAuthor(doc *goquery.Document, data []byte, sourceURL string) string {
	for _, selector := range authorSelectors {
		if text := normalizeSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}

	// Byline fallback for themes without an explicit author element.
	var pageURL *url.URL
	if sourceURL != "" {
		pageURL, _ = url.Parse(sourceURL)
	}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return ""
	}
	return normalizeSpace(article.Byline)
}

func (e *Extractor) extractTags(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, selector := range tagSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := normalizeSpace(s.Text())
			if text == "" {
				return
			}
			if tagDenylist[strings.ToLower(text)] {
				return
			}
			if !seen[text] {
				seen[text] = true
				tags = append(tags, text)
			}
		})
	}

	if len(tags) == 0 {
		return nil
	}

	sort.Strings(tags)
	return tags
}

// extractDownload locates the first anchor whose visible text is exactly
// "download" (case-insensitive), takes its target as the download URL and
// scans the surrounding container for a duration and a file size.
func (e *Extractor) extractDownload(doc *goquery.Document, candidate *Candidate) {
	var downloadLink *goquery.Selection
	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.EqualFold(normalizeSpace(s.Text()), "download") {
			downloadLink = s
			return false
		}
		return true
	})

	if downloadLink == nil {
		return
	}

	href, exists := downloadLink.Attr("href")
	if !exists {
		return
	}
	candidate.DownloadURL = strings.TrimSpace(href)

	containerText := normalizeSpace(downloadLink.Parent().Text())
	if containerText == "" {
		containerText = normalizeSpace(doc.Text())
	}

	if m := durationRe.FindStringSubmatch(containerText); m != nil {
		if seconds, ok := parseDuration(m[1]); ok {
			candidate.DurationSeconds = &seconds
		}
	}

	if m := sizeRe.FindStringSubmatch(containerText); m != nil {
		if size, ok := parseSize(m[1], m[2]); ok {
			candidate.FileSizeBytes = &size
		}
	}
}

func (e *Extractor) extractVideos(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var urls []string

	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if src == "" {
			return
		}
		if !strings.Contains(src, "youtube.com") && !strings.Contains(src, "youtu.be") {
			return
		}
		if !seen[src] {
			seen[src] = true
			urls = append(urls, src)
		}
	})

	if len(urls) == 0 {
		return nil
	}

	sort.Strings(urls)
	return urls
}

// parseDuration converts H:MM:SS or M:SS to whole seconds.
// Any other shape is malformed and reported as absent.
func parseDuration(s string) (int, bool) {
	parts := strings.Split(s, ":")

	switch len(parts) {
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		sec, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return m*60 + sec, true
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0, false
		}
		return h*3600 + m*60 + sec, true
	default:
		return 0, false
	}
}

// parseSize converts a "69.6" + "MB" pair to bytes, truncated to an integer.
func parseSize(num, unit string) (int64, bool) {
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}

	var mult float64
	switch strings.ToUpper(unit) {
	case "KB":
		mult = 1024
	case "MB":
		mult = 1024 * 1024
	case "GB":
		mult = 1024 * 1024 * 1024
	default:
		return 0, false
	}

	return int64(value * mult), true
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
