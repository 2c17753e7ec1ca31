package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kortney-lee/feed-engine/app/feed"
)

const (
	defaultFeedLimit    = 100
	maxFeedLimit        = 1000
	defaultArticleLimit = 50
	maxArticleLimit     = 500
	defaultPollLimit    = 50
)

var _ FeedRepository = (*Repository)(nil)

// Repository handles all database operations for feeds and their snapshots.
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

const feedColumns = `id, url, COALESCE(category, ''), COALESCE(country_code, ''),
	COALESCE(title, ''), COALESCE(description, ''), COALESCE(link, ''),
	COALESCE(image_url, ''), COALESCE(thumbnail_url, ''),
	COALESCE(etag, ''), COALESCE(last_modified, ''),
	COALESCE(last_status, 0), last_checked, last_fetched,
	fetch_count, is_active, COALESCE(latest_articles, ''),
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var f Feed
	err := row.Scan(
		&f.ID, &f.URL, &f.Category, &f.CountryCode,
		&f.Title, &f.Description, &f.Link,
		&f.ImageURL, &f.ThumbnailURL,
		&f.ETag, &f.LastModified,
		&f.LastStatus, &f.LastChecked, &f.LastFetched,
		&f.FetchCount, &f.IsActive, &f.LatestArticles,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// RegisterFeed inserts a feed by URL. Registering an existing URL is a
// no-op; the stored feed is returned either way.
func (r *Repository) RegisterFeed(url, title, category, countryCode string) (*Feed, error) {
	_, err := r.db.Exec(`
		INSERT INTO feeds (url, title, category, country_code)
		VALUES (?, COALESCE(NULLIF(?, ''), ''), NULLIF(?, ''), NULLIF(?, ''))
		ON CONFLICT(url) DO NOTHING
	`, url, title, category, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to register feed: %w", err)
	}

	return r.GetFeedByURL(url)
}

// GetFeed retrieves a feed by its surrogate key, nil when absent.
func (r *Repository) GetFeed(id int64) (*Feed, error) {
	f, err := scanFeed(r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return f, nil
}

// GetFeedByURL retrieves a feed by its unique URL, nil when absent.
func (r *Repository) GetFeedByURL(url string) (*Feed, error) {
	f, err := scanFeed(r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE url = ?`, url))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}
	return f, nil
}

// ListFeeds returns feeds ordered by most-recently-checked first.
func (r *Repository) ListFeeds(filter ListFilter) ([]Feed, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	query := `SELECT ` + feedColumns + ` FROM feeds WHERE 1=1`
	var args []any

	if filter.OnlyActive {
		query += ` AND is_active = 1`
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.CountryCode != "" {
		query += ` AND country_code = ?`
		args = append(args, filter.CountryCode)
	}

	query += ` ORDER BY last_checked DESC, created_at DESC LIMIT ?`
	args = append(args, limit)

	return r.queryFeeds(query, args...)
}

// ListActiveFeedsForPolling returns active feeds in ascending staleness
// order; never-checked feeds surface first. This ordering is the polling
// schedule.
func (r *Repository) ListActiveFeedsForPolling(limit int) ([]Feed, error) {
	if limit <= 0 {
		limit = defaultPollLimit
	}

	return r.queryFeeds(`
		SELECT `+feedColumns+`
		FROM feeds
		WHERE is_active = 1
		ORDER BY last_checked IS NOT NULL, last_checked ASC
		LIMIT ?
	`, limit)
}

func (r *Repository) queryFeeds(query string, args ...any) ([]Feed, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		f, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}

// ReplaceSnapshot atomically replaces a feed's article snapshot and applies
// metadata with coalesce-on-write semantics: empty fields keep their prior
// stored value. Always advances last_fetched, last_checked (monotonically)
// and fetch_count, and records the poll status.
func (r *Repository) ReplaceSnapshot(feedID int64, update SnapshotUpdate) error {
	articles := update.Articles
	if articles == nil {
		articles = []feed.Article{}
	}
	articlesJSON, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to encode articles: %w", err)
	}

	status := update.Status
	if status == 0 {
		status = 200
	}
	now := time.Now().UTC()

	res, err := r.db.Exec(`
		UPDATE feeds
		SET latest_articles = ?,
		    title = CASE WHEN ? = '' THEN title ELSE ? END,
		    description = CASE WHEN ? = '' THEN description ELSE ? END,
		    link = CASE WHEN ? = '' THEN link ELSE ? END,
		    image_url = CASE WHEN ? = '' THEN image_url ELSE ? END,
		    thumbnail_url = CASE WHEN ? = '' THEN thumbnail_url ELSE ? END,
		    etag = CASE WHEN ? = '' THEN etag ELSE ? END,
		    last_modified = CASE WHEN ? = '' THEN last_modified ELSE ? END,
		    last_status = ?,
		    last_fetched = ?,
		    last_checked = CASE WHEN last_checked IS NULL OR last_checked < ? THEN ? ELSE last_checked END,
		    fetch_count = fetch_count + 1,
		    updated_at = ?
		WHERE id = ?
	`, string(articlesJSON),
		update.FeedTitle, update.FeedTitle,
		update.FeedDescription, update.FeedDescription,
		update.FeedLink, update.FeedLink,
		update.FeedImage, update.FeedImage,
		update.FeedThumbnail, update.FeedThumbnail,
		update.ETag, update.ETag,
		update.LastModified, update.LastModified,
		status, now, now, now, now, feedID)
	if err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check snapshot update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("feed %d not found", feedID)
	}

	return nil
}

// RecordPollStatus records a poll attempt that produced no new snapshot:
// last_checked, last_status and fetch_count advance, the stored articles
// stay untouched.
func (r *Repository) RecordPollStatus(feedID int64, status int) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(`
		UPDATE feeds
		SET last_status = ?,
		    last_checked = CASE WHEN last_checked IS NULL OR last_checked < ? THEN ? ELSE last_checked END,
		    fetch_count = fetch_count + 1,
		    updated_at = ?
		WHERE id = ?
	`, status, now, now, now, feedID)
	if err != nil {
		return fmt.Errorf("failed to record poll status: %w", err)
	}

	return nil
}

// SetFeedActive flips the is_active flag; the engine never hard-deletes.
func (r *Repository) SetFeedActive(feedID int64, active bool) error {
	_, err := r.db.Exec(`
		UPDATE feeds
		SET is_active = ?, updated_at = ?
		WHERE id = ?
	`, active, time.Now().UTC(), feedID)
	if err != nil {
		return fmt.Errorf("failed to set feed active status: %w", err)
	}

	return nil
}

// FlattenArticles decodes every active feed's snapshot into a single list
// joined with feed metadata, newest first. Feeds with malformed snapshots
// are skipped, never failing the whole read.
func (r *Repository) FlattenArticles(filter ArticleFilter) ([]FlatArticle, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultArticleLimit
	}
	if limit > maxArticleLimit {
		limit = maxArticleLimit
	}

	query := `SELECT ` + feedColumns + ` FROM feeds WHERE is_active = 1 AND latest_articles IS NOT NULL AND latest_articles != ''`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.CountryCode != "" {
		query += ` AND country_code = ?`
		args = append(args, filter.CountryCode)
	}
	if filter.FeedID != 0 {
		query += ` AND id = ?`
		args = append(args, filter.FeedID)
	}

	feeds, err := r.queryFeeds(query, args...)
	if err != nil {
		return nil, err
	}

	var articles []FlatArticle
	for _, f := range feeds {
		var snapshot []feed.Article
		if err := json.Unmarshal([]byte(f.LatestArticles), &snapshot); err != nil {
			slog.Warn("Skipping malformed snapshot", "feed_id", f.ID, "error", err)
			continue
		}

		for _, article := range snapshot {
			articles = append(articles, FlatArticle{
				Article:          article,
				FeedID:           f.ID,
				FeedTitle:        f.Title,
				FeedURL:          f.URL,
				FeedCategory:     f.Category,
				FeedCountry:      f.CountryCode,
				FeedImageURL:     f.ImageURL,
				FeedThumbnailURL: f.ThumbnailURL,
			})
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articleSortTime(articles[i].Article).After(articleSortTime(articles[j].Article))
	})

	if len(articles) > limit {
		articles = articles[:limit]
	}

	return articles, nil
}

// articleSortTime prefers the feed-supplied publish date, falling back to
// the ingestion timestamp when the date string is missing or unparseable.
func articleSortTime(a feed.Article) time.Time {
	if a.PubDate != "" {
		if t, err := dateparse.ParseAny(a.PubDate); err == nil {
			return t
		}
	}
	return a.ExtractedAt
}

// FeedStats returns aggregate counts for operational visibility.
func (r *Repository) FeedStats() (*Stats, error) {
	stats := &Stats{}

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN latest_articles IS NOT NULL AND latest_articles != '' AND latest_articles != '[]' THEN 1 ELSE 0 END), 0)
		FROM feeds
	`).Scan(&stats.TotalFeeds, &stats.ActiveFeeds, &stats.FeedsWithArticles)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed stats: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT category,
		       COUNT(*),
		       SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END),
		       SUM(CASE WHEN latest_articles IS NOT NULL AND latest_articles != '' AND latest_articles != '[]' THEN 1 ELSE 0 END)
		FROM feeds
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs CategoryStats
		if err := rows.Scan(&cs.Category, &cs.TotalFeeds, &cs.ActiveFeeds, &cs.FeedsWithArticles); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		stats.Categories = append(stats.Categories, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category stats: %w", err)
	}

	return stats, nil
}

// FeedCount returns the total number of registered feeds.
func (r *Repository) FeedCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM feeds`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}
