package discover

import (
	"time"
)

// Entry is one discovered post URL with the feed-supplied modification time.
type Entry struct {
	URL     string
	LastMod *time.Time
}
