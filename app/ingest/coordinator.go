package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kortney-lee/feed-engine/app/cfg"
	"github.com/kortney-lee/feed-engine/app/database"
	"github.com/kortney-lee/feed-engine/app/poller"
)

// ErrNotReady is returned when an operation is invoked before Start has
// completed the one-time bootstrap.
var ErrNotReady = errors.New("ingestion engine not initialized")

// ErrCycleInProgress is returned when a manual trigger overlaps a running
// polling cycle.
var ErrCycleInProgress = errors.New("polling cycle already in progress")

// PollerInterface is what the coordinator needs from the orchestrator.
type PollerInterface interface {
	RunCycle(ctx context.Context, opts poller.Options) (*poller.CycleSummary, error)
}

var _ PollerInterface = (*poller.Poller)(nil)

// Coordinator owns the engine lifecycle: one-time schema bootstrap, the
// recurring polling timer plus a single delayed startup sweep, and the
// operations exposed to external callers. It is constructed explicitly and
// started/stopped explicitly; no ambient state.
type Coordinator struct {
	db     *database.DB
	repo   database.FeedRepository
	poller PollerInterface

	interval     time.Duration
	startupDelay time.Duration
	opts         poller.Options

	initOnce    sync.Once
	initErr     error
	initialized atomic.Bool

	// cycleInFlight guards against a timer firing while a previous cycle
	// is still running; overlapping cycles are skipped, not queued.
	cycleInFlight atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCoordinator(db *database.DB, repo database.FeedRepository, p PollerInterface) *Coordinator {
	c := cfg.Get()

	return &Coordinator{
		db:           db,
		repo:         repo,
		poller:       p,
		interval:     time.Duration(c.PollInterval) * time.Second,
		startupDelay: time.Duration(c.StartupDelay) * time.Second,
		opts: poller.Options{
			MaxConcurrent:       c.MaxConcurrent,
			DelayBetweenBatches: time.Duration(c.BatchDelay) * time.Second,
			MaxFeeds:            c.MaxFeeds,
		},
	}
}

// Start performs the one-time bootstrap and launches the polling timers.
// Idempotent and safe to call from multiple entry points; only the first
// call does work, and a bootstrap failure is returned to every caller.
func (c *Coordinator) Start() error {
	c.initOnce.Do(func() {
		version, dirty, err := database.RunMigrations(c.db)
		if err != nil {
			c.initErr = fmt.Errorf("failed to bootstrap storage: %w", err)
			return
		}
		slog.Info("Database schema ready", "version", version, "dirty", dirty)

		c.ctx, c.cancel = context.WithCancel(context.Background())
		c.wg.Add(1)
		go c.run()

		c.initialized.Store(true)
		slog.Info("Ingestion engine started",
			"poll_interval", c.interval, "startup_delay", c.startupDelay)
	})

	return c.initErr
}

// Stop cancels the timers and waits for an in-flight cycle to settle.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// run drives the recurring sweeps: one delayed startup sweep, then a fixed
// interval forever until Stop.
func (c *Coordinator) run() {
	defer c.wg.Done()

	startup := time.NewTimer(c.startupDelay)
	defer startup.Stop()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-startup.C:
			c.runScheduledCycle()
		case <-ticker.C:
			c.runScheduledCycle()
		}
	}
}

func (c *Coordinator) runScheduledCycle() {
	if !c.cycleInFlight.CompareAndSwap(false, true) {
		slog.Warn("Skipping polling cycle, previous cycle still running")
		return
	}
	defer c.cycleInFlight.Store(false)

	if _, err := c.poller.RunCycle(c.ctx, c.opts); err != nil {
		slog.Error("Scheduled polling cycle failed", "error", err)
	}
}

func (c *Coordinator) ready() error {
	if !c.initialized.Load() {
		return ErrNotReady
	}
	return nil
}

// TriggerPollCycle runs one cycle on demand, using the same algorithm and
// re-entrancy guard as the scheduled sweeps.
func (c *Coordinator) TriggerPollCycle(ctx context.Context) (*poller.CycleSummary, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	if !c.cycleInFlight.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer c.cycleInFlight.Store(false)

	return c.poller.RunCycle(ctx, c.opts)
}

// ListFeeds exposes the stored feeds to external callers.
func (c *Coordinator) ListFeeds(filter database.ListFilter) ([]database.Feed, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.repo.ListFeeds(filter)
}

// ListArticles exposes the flattened article view. When no feeds exist yet
// the curated list is seeded and a background cycle is kicked off so the
// first caller is not left with a permanently empty store.
func (c *Coordinator) ListArticles(filter database.ArticleFilter) ([]database.FlatArticle, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	count, err := c.repo.FeedCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		slog.Info("No feeds registered, seeding curated list")
		if _, _, err := c.SeedCuratedFeeds(); err != nil {
			return nil, err
		}
		go func() {
			if _, err := c.TriggerPollCycle(c.ctx); err != nil && !errors.Is(err, ErrCycleInProgress) {
				slog.Error("Initial polling cycle failed", "error", err)
			}
		}()
	}

	return c.repo.FlattenArticles(filter)
}

// RegisterFeed registers a feed URL, a no-op when the URL already exists.
func (c *Coordinator) RegisterFeed(url, title, category, countryCode string) (*database.Feed, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.repo.RegisterFeed(url, title, category, countryCode)
}

// FeedStats exposes aggregate operational counts.
func (c *Coordinator) FeedStats() (*database.Stats, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.repo.FeedStats()
}

// SeedCuratedFeeds registers the curated feed list, skipping URLs that are
// already present. Returns how many were added and how many existed.
func (c *Coordinator) SeedCuratedFeeds() (added, existing int, err error) {
	if err := c.ready(); err != nil {
		return 0, 0, err
	}

	for _, seed := range curatedFeeds {
		current, err := c.repo.GetFeedByURL(seed.URL)
		if err != nil {
			slog.Error("Failed to check curated feed", "url", seed.URL, "error", err)
			continue
		}
		if current != nil {
			existing++
			continue
		}

		if _, err := c.repo.RegisterFeed(seed.URL, seed.Title, seed.Category, seed.CountryCode); err != nil {
			slog.Error("Failed to seed curated feed", "url", seed.URL, "error", err)
			continue
		}
		added++
	}

	slog.Info("Curated feeds seeded", "added", added, "existing", existing)
	return added, existing, nil
}
