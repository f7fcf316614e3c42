package extract

import (
	"testing"
)

const samplePostHTML = `
<html>
<head><title>Kingmaker Session 44 | RPGMP3</title></head>
<body>
<article>
  <h1>Kingmaker  Session 44</h1>
  <time datetime="2015-03-22T10:30:00+00:00">March 22, 2015</time>
  <div class="byline">by <a rel="author" href="/author/hal">Hal</a></div>
  <div class="cat-links">
    <a href="/cat/actual-play">Actual Play</a>
    <a href="/cat/pathfinder">Pathfinder</a>
    <a href="/cat/play">Play</a>
    <a href="/cat/spotify">Spotify</a>
  </div>
  <p>The party returns to the Stag Lord's fort.</p>
  <p>
    <a href="https://cdn.example.com/audio/kingmaker-44.mp3">Download</a>
    Duration: 2:08:54 — 69.6MB
  </p>
  <iframe src="https://www.youtube.com/embed/abc123"></iframe>
  <iframe src="https://www.youtube.com/embed/abc123"></iframe>
  <iframe src="https://example.com/other-embed"></iframe>
</article>
</body>
</html>`

func TestExtractorRun(t *testing.T) {
	extractor := NewExtractor()

	candidate, err := extractor.Run([]byte(samplePostHTML), "https://www.rpgmp3.com/kingmaker-session-44/")
	if err != nil {
		t.Fatal(err)
	}

	if candidate.Title != "Kingmaker Session 44" {
		t.Errorf("Expected title 'Kingmaker Session 44', got '%s'", candidate.Title)
	}

	if candidate.Author != "Hal" {
		t.Errorf("Expected author 'Hal', got '%s'", candidate.Author)
	}

	if candidate.PublishedAt == nil {
		t.Fatal("Expected published date, got nil")
	}
	if candidate.PublishedAt.Year() != 2015 || candidate.PublishedAt.Month() != 3 {
		t.Errorf("Expected published date in March 2015, got %v", candidate.PublishedAt)
	}

	if candidate.DownloadURL != "https://cdn.example.com/audio/kingmaker-44.mp3" {
		t.Errorf("Unexpected download URL: '%s'", candidate.DownloadURL)
	}

	if candidate.DurationSeconds == nil {
		t.Fatal("Expected duration, got nil")
	}
	if *candidate.DurationSeconds != 7734 {
		t.Errorf("Expected duration 7734 seconds, got %d", *candidate.DurationSeconds)
	}

	if candidate.FileSizeBytes == nil {
		t.Fatal("Expected file size, got nil")
	}
	if *candidate.FileSizeBytes != 72981299 {
		t.Errorf("Expected file size 72981299 bytes, got %d", *candidate.FileSizeBytes)
	}
}

func TestExtractorRunEmptyData(t *testing.T) {
	extractor := NewExtractor()

	_, err := extractor.Run(nil, "https://example.com/")
	if err == nil {
		t.Error("Expected error for empty data, got nil")
	}
}

func TestExtractorTagsFilteredAndSorted(t *testing.T) {
	extractor := NewExtractor()

	candidate, err := extractor.Run([]byte(samplePostHTML), "")
	if err != nil {
		t.Fatal(err)
	}

	// "Play" and "Spotify" are platform labels, not categories
	expected := []string{"Actual Play", "Pathfinder"}
	if len(candidate.Tags) != len(expected) {
		t.Fatalf("Expected %d tags, got %d: %v", len(expected), len(candidate.Tags), candidate.Tags)
	}
	for i, tag := range expected {
		if candidate.Tags[i] != tag {
			t.Errorf("Expected tag[%d] '%s', got '%s'", i, tag, candidate.Tags[i])
		}
	}
}

func TestExtractorVideosDeduplicated(t *testing.T) {
	extractor := NewExtractor()

	candidate, err := extractor.Run([]byte(samplePostHTML), "")
	if err != nil {
		t.Fatal(err)
	}

	if len(candidate.YoutubeURLs) != 1 {
		t.Fatalf("Expected 1 youtube URL, got %d: %v", len(candidate.YoutubeURLs), candidate.YoutubeURLs)
	}
	if candidate.YoutubeURLs[0] != "https://www.youtube.com/embed/abc123" {
		t.Errorf("Unexpected youtube URL: '%s'", candidate.YoutubeURLs[0])
	}
}

func TestExtractorMissingFieldsAbsent(t *testing.T) {
	extractor := NewExtractor()

	html := `<html><body><h1>Untitled</h1><p>Nothing else here.</p></body></html>`

	candidate, err := extractor.Run([]byte(html), "")
	if err != nil {
		t.Fatal(err)
	}

	if candidate.PublishedAt != nil {
		t.Errorf("Expected nil published date, got %v", candidate.PublishedAt)
	}
	if candidate.DurationSeconds != nil {
		t.Errorf("Expected nil duration, got %d", *candidate.DurationSeconds)
	}
	if candidate.FileSizeBytes != nil {
		t.Errorf("Expected nil file size, got %d", *candidate.FileSizeBytes)
	}
	if candidate.DownloadURL != "" {
		t.Errorf("Expected empty download URL, got '%s'", candidate.DownloadURL)
	}
	if candidate.Tags != nil {
		t.Errorf("Expected nil tags, got %v", candidate.Tags)
	}
}

func TestExtractorMalformedDateIgnored(t *testing.T) {
	extractor := NewExtractor()

	html := `<html><body><h1>Post</h1><time datetime="not a date">whenever</time></body></html>`

	candidate, err := extractor.Run([]byte(html), "")
	if err != nil {
		t.Fatal(err)
	}

	if candidate.PublishedAt != nil {
		t.Errorf("Expected nil published date for malformed datetime, got %v", candidate.PublishedAt)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		seconds int
		ok      bool
	}{
		{"48:12", 2892, true},
		{"2:08:54", 7734, true},
		{"0:59", 59, true},
		{"1:00:00", 3600, true},
		{"1:2:3:4", 0, false},
		{"48", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		seconds, ok := parseDuration(tt.input)
		if ok != tt.ok {
			t.Errorf("parseDuration(%q): expected ok=%v, got %v", tt.input, tt.ok, ok)
			continue
		}
		if ok && seconds != tt.seconds {
			t.Errorf("parseDuration(%q): expected %d seconds, got %d", tt.input, tt.seconds, seconds)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		num   string
		unit  string
		bytes int64
		ok    bool
	}{
		{"69.6", "MB", 72981299, true},
		{"512", "KB", 524288, true},
		{"1.5", "GB", 1610612736, true},
		{"12", "TB", 0, false},
		{"abc", "MB", 0, false},
	}

	for _, tt := range tests {
		bytes, ok := parseSize(tt.num, tt.unit)
		if ok != tt.ok {
			t.Errorf("parseSize(%q, %q): expected ok=%v, got %v", tt.num, tt.unit, tt.ok, ok)
			continue
		}
		if ok && bytes != tt.bytes {
			t.Errorf("parseSize(%q, %q): expected %d bytes, got %d", tt.num, tt.unit, tt.bytes, bytes)
		}
	}
}
