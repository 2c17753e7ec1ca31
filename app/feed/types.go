package feed

import (
	"time"
)

// Article is the canonical normalized form of a single feed item. Every
// supported feed format (RSS 2.0, Atom, RDF) is mapped into this shape at
// parse time; nothing format-specific leaks past the parser. The JSON tags
// define the snapshot payload stored per feed.
type Article struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Summary          string    `json:"summary"`
	Link             string    `json:"link"`
	Author           string    `json:"author"`
	PubDate          string    `json:"pubDate"`
	GUID             string    `json:"guid"`
	Category         string    `json:"category"`
	Tags             []string  `json:"tags"`
	MediaThumbURL    string    `json:"media_thumb_url"`
	MediaURL         string    `json:"media_url"`
	MediaType        string    `json:"media_type"`
	MediaDescription string    `json:"media_description"`
	ContentEncoded   string    `json:"content_encoded"`
	WordCount        int       `json:"word_count"`
	ReadingTime      int       `json:"reading_time"`
	ExtractedAt      time.Time `json:"extracted_at"`
	HasMedia         bool      `json:"has_media"`
	HasAuthor        bool      `json:"has_author"`
	HasContent       bool      `json:"has_content"`
	ContentLength    int       `json:"content_length"`
}

// Result is the outcome of fetching and parsing a single feed URL.
type Result struct {
	Success     bool
	NotModified bool

	FeedTitle       string
	FeedDescription string
	FeedLink        string
	FeedImage       string
	FeedThumbnail   string
	Articles        []Article

	ETag         string
	LastModified string
	Status       int

	Error            string
	ShouldDeactivate bool
}

// FetchHints carries the conditional GET validators stored from the last
// successful fetch of a feed.
type FetchHints struct {
	ETag         string
	LastModified string
}

// mediaInfo holds the per-item result of the media extraction cascade.
type mediaInfo struct {
	Thumbnail   string
	MainImage   string
	Type        string
	Description string
}
