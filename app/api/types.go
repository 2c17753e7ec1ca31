package api

import (
	"context"

	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/ingest"
	"github.com/kortney-lee/feed-engine/app/poller"
)

// CoordinatorInterface is what the HTTP layer needs from the ingestion
// engine. Satisfied by *ingest.Coordinator; tests substitute stubs.
type CoordinatorInterface interface {
	ListFeeds(filter database.ListFilter) ([]database.Feed, error)
	ListArticles(filter database.ArticleFilter) ([]database.FlatArticle, error)
	RegisterFeed(url, title, category, countryCode string) (*database.Feed, error)
	FeedStats() (*database.Stats, error)
	SeedCuratedFeeds() (added, existing int, err error)
	TriggerPollCycle(ctx context.Context) (*poller.CycleSummary, error)
}

var _ CoordinatorInterface = (*ingest.Coordinator)(nil)

type Handler struct {
	coordinator CoordinatorInterface
}

// registerFeedRequest is the POST /api/feeds payload.
type registerFeedRequest struct {
	URL         string `json:"url" binding:"required"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	CountryCode string `json:"country_code"`
}
