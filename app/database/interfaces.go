package database

// FeedRepository is the persistence contract consumed by the poller, the
// coordinator and the HTTP layer. ReplaceSnapshot is the single write path
// into a feed's article state; the snapshot is the unit of consistency.
type FeedRepository interface {
	RegisterFeed(url, title, category, countryCode string) (*Feed, error)
	GetFeed(id int64) (*Feed, error)
	GetFeedByURL(url string) (*Feed, error)
	ListFeeds(filter ListFilter) ([]Feed, error)
	ListActiveFeedsForPolling(limit int) ([]Feed, error)
	ReplaceSnapshot(feedID int64, update SnapshotUpdate) error
	RecordPollStatus(feedID int64, status int) error
	SetFeedActive(feedID int64, active bool) error
	FlattenArticles(filter ArticleFilter) ([]FlatArticle, error)
	FeedStats() (*Stats, error)
	FeedCount() (int, error)
}
