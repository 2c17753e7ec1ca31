package poller

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/feed"
)

// stubParser returns a scripted result per URL.
type stubParser struct {
	results map[string]feed.Result
	delay   time.Duration

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (s *stubParser) Parse(ctx context.Context, url string, hints feed.FetchHints) feed.Result {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()

	if result, ok := s.results[url]; ok {
		return result
	}
	return feed.Result{Success: true, Status: 200, Articles: []feed.Article{{Title: "T", Link: url, GUID: url}}}
}

// stubRepo records mutating calls; reads are scripted.
type stubRepo struct {
	feeds []database.Feed

	mu          sync.Mutex
	snapshots   map[int64]database.SnapshotUpdate
	statuses    map[int64]int
	deactivated map[int64]bool
	snapshotErr error
}

func newStubRepo(feeds ...database.Feed) *stubRepo {
	return &stubRepo{
		feeds:       feeds,
		snapshots:   make(map[int64]database.SnapshotUpdate),
		statuses:    make(map[int64]int),
		deactivated: make(map[int64]bool),
	}
}

func (s *stubRepo) ListActiveFeedsForPolling(limit int) ([]database.Feed, error) {
	if limit < len(s.feeds) {
		return s.feeds[:limit], nil
	}
	return s.feeds, nil
}

func (s *stubRepo) ReplaceSnapshot(feedID int64, update database.SnapshotUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return s.snapshotErr
	}
	s.snapshots[feedID] = update
	return nil
}

func (s *stubRepo) RecordPollStatus(feedID int64, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[feedID] = status
	return nil
}

func (s *stubRepo) SetFeedActive(feedID int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivated[feedID] = !active
	return nil
}

func (s *stubRepo) RegisterFeed(url, title, category, countryCode string) (*database.Feed, error) {
	return nil, nil
}
func (s *stubRepo) GetFeed(id int64) (*database.Feed, error)         { return nil, nil }
func (s *stubRepo) GetFeedByURL(url string) (*database.Feed, error)  { return nil, nil }
func (s *stubRepo) ListFeeds(database.ListFilter) ([]database.Feed, error) {
	return s.feeds, nil
}
func (s *stubRepo) FlattenArticles(database.ArticleFilter) ([]database.FlatArticle, error) {
	return nil, nil
}
func (s *stubRepo) FeedStats() (*database.Stats, error) { return &database.Stats{}, nil }
func (s *stubRepo) FeedCount() (int, error)             { return len(s.feeds), nil }

var _ database.FeedRepository = (*stubRepo)(nil)

func testFeeds(n int) []database.Feed {
	feeds := make([]database.Feed, n)
	for i := range feeds {
		feeds[i] = database.Feed{
			ID:    int64(i + 1),
			URL:   fmt.Sprintf("https://example.com/feed%d", i+1),
			Title: fmt.Sprintf("Feed %d", i+1),
		}
	}
	return feeds
}

func TestRunCycleEmptyStore(t *testing.T) {
	repo := newStubRepo()
	p := New(&stubParser{}, repo)

	summary, err := p.RunCycle(context.Background(), Options{DelayBetweenBatches: time.Millisecond})
	require.NoError(t, err)

	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.Results)
}

func TestRunCycleAllSuccessful(t *testing.T) {
	repo := newStubRepo(testFeeds(3)...)
	p := New(&stubParser{}, repo)

	summary, err := p.RunCycle(context.Background(), Options{
		MaxConcurrent:       2,
		DelayBetweenBatches: time.Millisecond,
		MaxFeeds:            10,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Successful)
	assert.Zero(t, summary.Failed)
	assert.Len(t, repo.snapshots, 3)

	for _, result := range summary.Results {
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.ArticlesProcessed)
	}
}

func TestRunCycleConcurrencyBound(t *testing.T) {
	parser := &stubParser{delay: 20 * time.Millisecond}
	repo := newStubRepo(testFeeds(5)...)
	p := New(parser, repo)

	_, err := p.RunCycle(context.Background(), Options{
		MaxConcurrent:       2,
		DelayBetweenBatches: time.Millisecond,
		MaxFeeds:            10,
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, parser.maxInFlight, 2, "no batch may exceed the concurrency bound")
	assert.Len(t, repo.snapshots, 5, "all feeds polled across batches")
}

func TestRunCyclePartialFailureIsolated(t *testing.T) {
	feeds := testFeeds(3)
	parser := &stubParser{results: map[string]feed.Result{
		feeds[1].URL: {Success: false, Status: 500, Error: "HTTP error: 500"},
	}}
	repo := newStubRepo(feeds...)
	p := New(parser, repo)

	summary, err := p.RunCycle(context.Background(), Options{
		MaxConcurrent:       3,
		DelayBetweenBatches: time.Millisecond,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)

	failed := summary.Results[1]
	assert.False(t, failed.Success)
	assert.Equal(t, "HTTP error: 500", failed.Error)
	assert.False(t, failed.Deactivated, "transient failures never deactivate")

	assert.Equal(t, 500, repo.statuses[feeds[1].ID])
	assert.False(t, repo.deactivated[feeds[1].ID])
}

func TestRunCycleDeactivatesPermanentFailure(t *testing.T) {
	feeds := testFeeds(1)
	parser := &stubParser{results: map[string]feed.Result{
		feeds[0].URL: {Success: false, Status: 404, Error: "HTTP error: 404", ShouldDeactivate: true},
	}}
	repo := newStubRepo(feeds...)
	p := New(parser, repo)

	summary, err := p.RunCycle(context.Background(), Options{DelayBetweenBatches: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.Results[0].Deactivated)
	assert.True(t, repo.deactivated[feeds[0].ID])
	assert.Equal(t, 404, repo.statuses[feeds[0].ID])
}

func TestRunCycleNotModified(t *testing.T) {
	feeds := testFeeds(1)
	parser := &stubParser{results: map[string]feed.Result{
		feeds[0].URL: {Success: true, NotModified: true, Status: 304},
	}}
	repo := newStubRepo(feeds...)
	p := New(parser, repo)

	summary, err := p.RunCycle(context.Background(), Options{DelayBetweenBatches: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Successful)
	assert.Empty(t, repo.snapshots, "304 must not rewrite the snapshot")
	assert.Equal(t, 304, repo.statuses[feeds[0].ID])
}

func TestRunCycleEmptyFeedIsSoftFailure(t *testing.T) {
	feeds := testFeeds(1)
	parser := &stubParser{results: map[string]feed.Result{
		feeds[0].URL: {Success: true, Status: 200, Articles: []feed.Article{}},
	}}
	repo := newStubRepo(feeds...)
	p := New(parser, repo)

	summary, err := p.RunCycle(context.Background(), Options{DelayBetweenBatches: time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, "no articles", summary.Results[0].Error)

	// The snapshot is still replaced so last_checked and fetch_count advance.
	stored, ok := repo.snapshots[feeds[0].ID]
	require.True(t, ok)
	assert.Empty(t, stored.Articles)
}

func TestRunCycleSnapshotStoreFailure(t *testing.T) {
	feeds := testFeeds(1)
	repo := newStubRepo(feeds...)
	repo.snapshotErr = fmt.Errorf("disk full")
	p := New(&stubParser{}, repo)

	summary, err := p.RunCycle(context.Background(), Options{DelayBetweenBatches: time.Millisecond})
	require.NoError(t, err, "a persistence failure must not abort the cycle")

	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, summary.Results[0].Error, "failed to store snapshot")
}

func TestRunCycleRespectsMaxFeeds(t *testing.T) {
	repo := newStubRepo(testFeeds(5)...)
	p := New(&stubParser{}, repo)

	summary, err := p.RunCycle(context.Background(), Options{
		MaxConcurrent:       2,
		DelayBetweenBatches: time.Millisecond,
		MaxFeeds:            2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Len(t, repo.snapshots, 2)
}

func TestRunCycleCancelledBetweenBatches(t *testing.T) {
	repo := newStubRepo(testFeeds(4)...)
	p := New(&stubParser{}, repo)

	ctx, cancel := context.WithCancel(context.Background())

	var cancelled atomic.Bool
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancelled.Store(true)
		cancel()
	}()

	summary, err := p.RunCycle(ctx, Options{
		MaxConcurrent:       1,
		DelayBetweenBatches: 5 * time.Second,
		MaxFeeds:            10,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, cancelled.Load())
	require.NotNil(t, summary)
	assert.Equal(t, 4, summary.Total)
}
