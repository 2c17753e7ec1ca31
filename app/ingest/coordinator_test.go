package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kortney-lee/feed-engine/app/cfg"
	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/poller"
)

type stubPoller struct {
	calls atomic.Int32
	block chan struct{}
}

func (s *stubPoller) RunCycle(ctx context.Context, opts poller.Options) (*poller.CycleSummary, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	return &poller.CycleSummary{}, nil
}

func newTestCoordinator(t *testing.T, p PollerInterface) (*Coordinator, database.FeedRepository) {
	t.Helper()

	// Timers far in the future keep scheduled cycles out of the way.
	cfg.Set(&cfg.Cfg{
		PollInterval:  3600,
		StartupDelay:  3600,
		MaxConcurrent: 1,
		BatchDelay:    1,
		MaxFeeds:      5,
	})

	db, err := database.NewConnection(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewRepository(db)
	return NewCoordinator(db, repo, p), repo
}

func TestOperationsBeforeStart(t *testing.T) {
	c, _ := newTestCoordinator(t, &stubPoller{})

	_, err := c.ListFeeds(database.ListFilter{})
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = c.ListArticles(database.ArticleFilter{})
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = c.RegisterFeed("https://example.com/rss", "", "", "")
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = c.FeedStats()
	assert.ErrorIs(t, err, ErrNotReady)

	_, _, err = c.SeedCuratedFeeds()
	assert.ErrorIs(t, err, ErrNotReady)

	_, err = c.TriggerPollCycle(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestStartIsIdempotent(t *testing.T) {
	c, _ := newTestCoordinator(t, &stubPoller{})

	require.NoError(t, c.Start())
	require.NoError(t, c.Start())
	defer c.Stop()

	// Bootstrap ran: the schema exists and operations work.
	feeds, err := c.ListFeeds(database.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, feeds)
}

func TestTriggerPollCycle(t *testing.T) {
	p := &stubPoller{}
	c, _ := newTestCoordinator(t, p)

	require.NoError(t, c.Start())
	defer c.Stop()

	_, err := c.TriggerPollCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestTriggerPollCycleReEntrancy(t *testing.T) {
	p := &stubPoller{block: make(chan struct{})}
	c, _ := newTestCoordinator(t, p)

	require.NoError(t, c.Start())
	defer c.Stop()

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, err := c.TriggerPollCycle(context.Background())
		assert.NoError(t, err)
	}()

	// Wait until the first cycle is inside RunCycle.
	require.Eventually(t, func() bool {
		return p.calls.Load() == 1
	}, time.Second, time.Millisecond)

	_, err := c.TriggerPollCycle(context.Background())
	assert.ErrorIs(t, err, ErrCycleInProgress)

	close(p.block)
	<-firstDone

	// With the first cycle settled, triggering works again.
	p.block = nil
	_, err = c.TriggerPollCycle(context.Background())
	require.NoError(t, err)
}

func TestSeedCuratedFeeds(t *testing.T) {
	c, repo := newTestCoordinator(t, &stubPoller{})

	require.NoError(t, c.Start())
	defer c.Stop()

	added, existing, err := c.SeedCuratedFeeds()
	require.NoError(t, err)
	assert.Equal(t, len(curatedFeeds), added)
	assert.Zero(t, existing)

	count, err := repo.FeedCount()
	require.NoError(t, err)
	assert.Equal(t, len(curatedFeeds), count)

	// Seeding again only reports existing entries.
	added, existing, err = c.SeedCuratedFeeds()
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, len(curatedFeeds), existing)
}

func TestListArticlesSeedsEmptyStore(t *testing.T) {
	p := &stubPoller{}
	c, repo := newTestCoordinator(t, p)

	require.NoError(t, c.Start())
	defer c.Stop()

	articles, err := c.ListArticles(database.ArticleFilter{})
	require.NoError(t, err)
	assert.Empty(t, articles, "no polls have run yet")

	count, err := repo.FeedCount()
	require.NoError(t, err)
	assert.Equal(t, len(curatedFeeds), count, "an empty store is auto-seeded on first read")
}

func TestRegisterFeedAfterStart(t *testing.T) {
	c, _ := newTestCoordinator(t, &stubPoller{})

	require.NoError(t, c.Start())
	defer c.Stop()

	f, err := c.RegisterFeed("https://example.com/rss", "Example", "Science", "US")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, "Example", f.Title)

	feeds, err := c.ListFeeds(database.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, feeds, 1)
}
