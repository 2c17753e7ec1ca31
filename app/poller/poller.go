package poller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/feed"
)

const (
	defaultMaxConcurrent = 3
	defaultBatchDelay    = 2 * time.Second
	defaultMaxFeeds      = 20
)

// Poller runs polling cycles over the stalest active feeds, fanning each
// batch out concurrently while keeping the overall request rate polite.
type Poller struct {
	parser ParserInterface
	repo   database.FeedRepository
}

func New(parser ParserInterface, repo database.FeedRepository) *Poller {
	return &Poller{
		parser: parser,
		repo:   repo,
	}
}

// RunCycle polls up to MaxFeeds active feeds in staleness order, in
// sequential batches of MaxConcurrent. A batch completes only when every
// member has settled; one feed's failure never aborts its siblings.
func (p *Poller) RunCycle(ctx context.Context, opts Options) (*CycleSummary, error) {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.DelayBetweenBatches <= 0 {
		opts.DelayBetweenBatches = defaultBatchDelay
	}
	if opts.MaxFeeds <= 0 {
		opts.MaxFeeds = defaultMaxFeeds
	}

	started := time.Now()

	feeds, err := p.repo.ListActiveFeedsForPolling(opts.MaxFeeds)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds for polling: %w", err)
	}

	summary := &CycleSummary{
		Total:     len(feeds),
		Results:   make([]FeedResult, len(feeds)),
		StartedAt: started.UTC(),
	}

	if len(feeds) == 0 {
		slog.Debug("No active feeds to poll")
		return summary, nil
	}

	slog.Info("Starting polling cycle", "feeds", len(feeds),
		"max_concurrent", opts.MaxConcurrent, "batch_delay", opts.DelayBetweenBatches)

	for start := 0; start < len(feeds); start += opts.MaxConcurrent {
		end := min(start+opts.MaxConcurrent, len(feeds))
		batch := feeds[start:end]

		var wg sync.WaitGroup
		for i, f := range batch {
			wg.Add(1)
			go func(idx int, f database.Feed) {
				defer wg.Done()
				summary.Results[idx] = p.pollOneFeed(ctx, f)
			}(start+i, f)
		}
		wg.Wait()

		if end < len(feeds) {
			select {
			case <-time.After(opts.DelayBetweenBatches):
			case <-ctx.Done():
				summary.Duration = time.Since(started)
				return summary, ctx.Err()
			}
		}
	}

	for _, result := range summary.Results {
		if result.Success {
			summary.Successful++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = time.Since(started)

	slog.Info("Polling cycle completed", "total", summary.Total,
		"successful", summary.Successful, "failed", summary.Failed,
		"duration", summary.Duration)

	return summary, nil
}

// pollOneFeed fetches, parses and persists a single feed. Every path
// returns a result value; persistence failures while recording an error
// status are logged and swallowed.
func (p *Poller) pollOneFeed(ctx context.Context, f database.Feed) FeedResult {
	started := time.Now()
	result := FeedResult{FeedID: f.ID, FeedTitle: f.Title}

	parsed := p.parser.Parse(ctx, f.URL, feed.FetchHints{
		ETag:         f.ETag,
		LastModified: f.LastModified,
	})

	switch {
	case parsed.NotModified:
		if err := p.repo.RecordPollStatus(f.ID, parsed.Status); err != nil {
			slog.Error("Failed to record not-modified status", "feed_id", f.ID, "error", err)
		}
		result.Success = true
		slog.Debug("Feed not modified", "feed_id", f.ID, "url", f.URL)

	case parsed.Success && len(parsed.Articles) > 0:
		err := p.repo.ReplaceSnapshot(f.ID, database.SnapshotUpdate{
			Articles:        parsed.Articles,
			FeedTitle:       parsed.FeedTitle,
			FeedDescription: parsed.FeedDescription,
			FeedLink:        parsed.FeedLink,
			FeedImage:       parsed.FeedImage,
			FeedThumbnail:   parsed.FeedThumbnail,
			ETag:            parsed.ETag,
			LastModified:    parsed.LastModified,
			Status:          parsed.Status,
		})
		if err != nil {
			result.Error = fmt.Sprintf("failed to store snapshot: %v", err)
			slog.Error("Snapshot update failed", "feed_id", f.ID, "error", err)
		} else {
			result.Success = true
			result.ArticlesProcessed = len(parsed.Articles)
			slog.Info("Feed polled", "feed_id", f.ID, "articles", len(parsed.Articles))
		}

	case parsed.Success:
		// Parsed fine but currently empty: replace the snapshot anyway so
		// last_checked and fetch_count advance and the feed is not stuck.
		err := p.repo.ReplaceSnapshot(f.ID, database.SnapshotUpdate{
			Articles:        []feed.Article{},
			FeedTitle:       parsed.FeedTitle,
			FeedDescription: parsed.FeedDescription,
			FeedLink:        parsed.FeedLink,
			ETag:            parsed.ETag,
			LastModified:    parsed.LastModified,
			Status:          parsed.Status,
		})
		if err != nil {
			slog.Error("Failed to store empty snapshot", "feed_id", f.ID, "error", err)
		}
		result.Error = "no articles"
		slog.Warn("Feed produced no articles", "feed_id", f.ID, "url", f.URL)

	default:
		status := parsed.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if err := p.repo.RecordPollStatus(f.ID, status); err != nil {
			slog.Error("Failed to record poll failure", "feed_id", f.ID, "error", err)
		}
		result.Error = parsed.Error

		if parsed.ShouldDeactivate {
			if err := p.repo.SetFeedActive(f.ID, false); err != nil {
				slog.Error("Failed to deactivate feed", "feed_id", f.ID, "error", err)
			} else {
				result.Deactivated = true
				slog.Warn("Feed deactivated after permanent failure",
					"feed_id", f.ID, "url", f.URL, "status", status, "error", parsed.Error)
			}
		}
	}

	result.Duration = time.Since(started)
	return result
}
