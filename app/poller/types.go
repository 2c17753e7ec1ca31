package poller

import (
	"context"
	"time"

	"github.com/kortney-lee/feed-engine/app/feed"
)

// ParserInterface is what the poller needs from the feed parser. Satisfied
// by *feed.Parser; tests substitute stubs with simulated outcomes.
type ParserInterface interface {
	Parse(ctx context.Context, url string, hints feed.FetchHints) feed.Result
}

var _ ParserInterface = (*feed.Parser)(nil)

// Options bound a single polling cycle.
type Options struct {
	MaxConcurrent       int
	DelayBetweenBatches time.Duration
	MaxFeeds            int
}

// FeedResult is the structured outcome of polling one feed. Every poll
// attempt produces exactly one result; errors never escape the worker.
type FeedResult struct {
	FeedID            int64         `json:"feed_id"`
	FeedTitle         string        `json:"feed_title"`
	Success           bool          `json:"success"`
	ArticlesProcessed int           `json:"articles_processed"`
	Deactivated       bool          `json:"deactivated,omitempty"`
	Duration          time.Duration `json:"duration"`
	Error             string        `json:"error,omitempty"`
}

// CycleSummary aggregates one full polling cycle.
type CycleSummary struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []FeedResult  `json:"results"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}
