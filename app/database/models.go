package database

import (
	"time"

	"github.com/kortney-lee/feed-engine/app/feed"
)

// Feed is one registered feed URL with its operational state and the
// serialized snapshot of its most recent successful poll.
type Feed struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	Category     string `json:"category,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Link         string `json:"link,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	ETag         string `json:"-"`
	LastModified string `json:"-"`

	LastStatus  int        `json:"last_status"`
	LastChecked *time.Time `json:"last_checked"`
	LastFetched *time.Time `json:"last_fetched"`
	FetchCount  int        `json:"fetch_count"`
	IsActive    bool       `json:"is_active"`

	// LatestArticles holds the raw JSON snapshot; empty when the feed has
	// never been polled successfully. Served through the article view, not
	// inline with the feed.
	LatestArticles string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotUpdate is the payload for ReplaceSnapshot. Articles replace the
// stored snapshot wholesale; every metadata field is written only when
// non-empty (coalesce-on-write).
type SnapshotUpdate struct {
	Articles        []feed.Article
	FeedTitle       string
	FeedDescription string
	FeedLink        string
	FeedImage       string
	FeedThumbnail   string
	ETag            string
	LastModified    string
	Status          int // defaults to 200 when zero
}

// ListFilter narrows ListFeeds results.
type ListFilter struct {
	Category    string
	CountryCode string
	OnlyActive  bool
	Limit       int
}

// ArticleFilter narrows FlattenArticles results.
type ArticleFilter struct {
	Category    string
	CountryCode string
	FeedID      int64
	Limit       int
}

// FlatArticle is one snapshot article joined with its parent feed.
type FlatArticle struct {
	feed.Article

	FeedID           int64  `json:"feed_id"`
	FeedTitle        string `json:"feed_title"`
	FeedURL          string `json:"feed_url"`
	FeedCategory     string `json:"feed_category"`
	FeedCountry      string `json:"feed_country"`
	FeedImageURL     string `json:"feed_image_url"`
	FeedThumbnailURL string `json:"feed_thumbnail_url"`
}

// CategoryStats aggregates feed counts for one category.
type CategoryStats struct {
	Category          string `json:"category"`
	TotalFeeds        int    `json:"total_feeds"`
	ActiveFeeds       int    `json:"active_feeds"`
	FeedsWithArticles int    `json:"feeds_with_articles"`
}

// Stats is the operational summary over all feeds.
type Stats struct {
	TotalFeeds        int             `json:"total_feeds"`
	ActiveFeeds       int             `json:"active_feeds"`
	FeedsWithArticles int             `json:"feeds_with_articles"`
	Categories        []CategoryStats `json:"categories"`
}
