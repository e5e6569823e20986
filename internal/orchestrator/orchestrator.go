// Scrape orchestration: the keyword×page work queue, the bounded pool
// of browser-session workers, pacing, and result aggregation.

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"go-jobscout/internal/antibot"
	"go-jobscout/internal/browser"
	"go-jobscout/internal/filter"
	"go-jobscout/internal/scraper"
	"go-jobscout/internal/store"
)

// Logf is the injected observer for run progress. Defaults to discard;
// the pipeline never prints on its own.
type Logf func(format string, args ...any)

// Config tunes one pipeline run.
type Config struct {
	Keywords        []string
	PagesPerKeyword int
	WorkerCount     int
	CutoffDays      int
	Policy          filter.Policy

	MaxRetries         int
	EmptyPageThreshold int
	RecoveryAttempts   int

	// Pacing. PageInterval is the hard floor between page loads across
	// all workers; the jitter delays are per-worker burstiness noise.
	PageInterval       time.Duration
	PageJitterMinMs    int
	PageJitterMaxMs    int
	KeywordSwitchDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.PagesPerKeyword <= 0 {
		c.PagesPerKeyword = 3
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 2
	}
	if c.CutoffDays <= 0 {
		c.CutoffDays = 14
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.EmptyPageThreshold <= 0 {
		c.EmptyPageThreshold = 2
	}
	if c.RecoveryAttempts <= 0 {
		c.RecoveryAttempts = 3
	}
	if c.PageInterval <= 0 {
		c.PageInterval = 2 * time.Second
	}
	if c.PageJitterMaxMs <= 0 {
		c.PageJitterMinMs, c.PageJitterMaxMs = 500, 2000
	}
	if len(c.Policy.SeniorKeywords) == 0 && len(c.Policy.EntryKeywords) == 0 {
		c.Policy = filter.DefaultPolicy()
	}
}

// Orchestrator owns one run of the discovery pipeline against one site.
type Orchestrator struct {
	cfg      Config
	site     scraper.SiteAdapter
	factory  browser.Factory
	jobs     *store.Store
	recovery antibot.RecoveryFunc
	logf     Logf
}

func New(cfg Config, site scraper.SiteAdapter, factory browser.Factory, jobs *store.Store, recovery antibot.RecoveryFunc, logf Logf) *Orchestrator {
	cfg.applyDefaults()
	if logf == nil {
		logf = func(string, ...any) {}
	}
	if recovery == nil {
		// no recovery wired: every suspicion burns an attempt and the
		// worker eventually abandons
		recovery = func(context.Context, string) ([]browser.Cookie, error) {
			return nil, errors.New("no recovery configured")
		}
	}
	return &Orchestrator{cfg: cfg, site: site, factory: factory, jobs: jobs, recovery: recovery, logf: logf}
}

// Run expands keywords × pages into work items, fans them out to the
// worker pool, and aggregates results. A run never aborts because of a
// single page, candidate, or worker failure; it degrades to a smaller
// result set and reports the failure counts.
func (o *Orchestrator) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	var items []WorkItem
	for _, kw := range o.cfg.Keywords {
		for page := 1; page <= o.cfg.PagesPerKeyword; page++ {
			items = append(items, WorkItem{Keyword: kw, Page: page})
		}
	}

	queue := newWorkQueue(items, o.cfg.MaxRetries)
	tracker := newKeywordTracker(o.cfg.EmptyPageThreshold)
	coll := newCollector()
	limiter := rate.NewLimiter(rate.Every(o.cfg.PageInterval), 1)

	var g errgroup.Group
	for i := 0; i < o.cfg.WorkerCount; i++ {
		id := i
		g.Go(func() error {
			o.runWorker(ctx, id, queue, tracker, coll, limiter)
			return nil
		})
	}
	g.Wait()

	stats := coll.snapshot(time.Since(start))
	o.logf("🏁 Run finished: %d pages, %d new jobs, %d duplicates, %d errors in %s",
		stats.PagesScraped, stats.JobsFound, stats.DuplicatesSkipped, stats.ErrorsEncountered, stats.Elapsed.Round(time.Millisecond))
	return stats, ctx.Err()
}

// runWorker is one worker's life: own a session, drain the queue, stop
// on cancellation or abandonment. Per-item errors stay local.
func (o *Orchestrator) runWorker(ctx context.Context, id int, queue *workQueue, tracker *keywordTracker, coll *collector, limiter *rate.Limiter) {
	sess, err := o.factory.NewSession(ctx)
	if err != nil {
		o.logf("❌ Worker %d: session failed: %v", id, err)
		coll.failure()
		return
	}
	defer sess.Close()

	machine := antibot.NewMachine(o.cfg.RecoveryAttempts, o.recovery, coll.onTransition)

	lastKeyword := ""
	for {
		select {
		case <-ctx.Done():
			// cooperative cancellation: stop dequeuing, current item is
			// already finished by the time we are here
			return
		case item, ok := <-queue.items():
			if !ok {
				return
			}
			if tracker.isTerminated(item.Keyword) {
				queue.done()
				continue
			}

			if lastKeyword != "" && lastKeyword != item.Keyword && o.cfg.KeywordSwitchDelay > 0 {
				sleepCtx(ctx, o.cfg.KeywordSwitchDelay)
			}
			lastKeyword = item.Keyword

			err := o.processItem(ctx, sess, machine, item, tracker, coll, limiter)
			switch {
			case err == nil:
				queue.done()
			case errors.Is(err, antibot.ErrAbandoned):
				// give the item back for the surviving workers
				queue.retry(item)
				o.logf("🛑 Worker %d abandoned after repeated verification failures", id)
				return
			case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
				queue.done()
				return
			default:
				coll.failure()
				if queue.retry(item) {
					o.logf("  ↩️ Worker %d: page %d of %q requeued: %v", id, item.Page, item.Keyword, err)
				} else {
					o.logf("  ⚠️ Worker %d: page %d of %q dropped: %v", id, item.Page, item.Keyword, err)
				}
			}
		}
	}
}

// processItem renders one results page and pushes its admitted
// candidates through resolve → filter → store.
func (o *Orchestrator) processItem(ctx context.Context, sess browser.Session, machine *antibot.Machine, item WorkItem, tracker *keywordTracker, coll *collector, limiter *rate.Limiter) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	browser.RandomDelay(o.cfg.PageJitterMinMs, o.cfg.PageJitterMaxMs)

	listingURL := o.site.SearchURL(item.Keyword, item.Page)
	if err := sess.Navigate(ctx, listingURL); err != nil {
		return fmt.Errorf("navigate %s: %w", listingURL, err)
	}
	sess.Humanize()

	if o.site.Verification().Detect(sess) {
		sess.Screenshot("verification-" + o.site.Name())
		o.logf("  🛡️ Verification page on %q page %d, entering recovery", item.Keyword, item.Page)
		if err := machine.HandleSuspicion(ctx, sess, listingURL); err != nil {
			return err
		}
		if err := sess.Navigate(ctx, listingURL); err != nil {
			return fmt.Errorf("navigate after recovery: %w", err)
		}
		if o.site.Verification().Detect(sess) {
			return fmt.Errorf("verification page persists after recovery")
		}
	}

	candidates, err := scraper.Extract(o.site, sess, item.Keyword, item.Page)
	if err != nil {
		return fmt.Errorf("extract %q page %d: %w", item.Keyword, item.Page, err)
	}
	coll.pageScraped(item.Keyword)

	if len(candidates) == 0 {
		// not an error: the pagination for this keyword has run dry
		tracker.endOfPagination(item.Keyword)
		o.logf("  📭 %q page %d empty, keyword done", item.Keyword, item.Page)
		return nil
	}
	o.logf("  📦 %q page %d: %d candidates", item.Keyword, item.Page, len(candidates))

	admitted := 0
	for _, cand := range candidates {
		if ctx.Err() != nil {
			break
		}

		job := scraper.Resolve(ctx, o.site, sess, cand, listingURL)
		job.AgeBucket = filter.ParseAge(job.PostedText).String()

		if !filter.Admit(job, o.cfg.CutoffDays, o.cfg.Policy) {
			continue
		}
		admitted++

		inserted, err := o.jobs.Insert(ctx, job)
		if err != nil {
			coll.failure()
			continue
		}
		if inserted {
			coll.jobStored(job)
			o.logf("    ✅ %s - %s (%s)", job.Title, job.Company, job.ATSVendor)
		} else {
			coll.duplicate()
		}
	}

	tracker.recordAdmitted(item.Keyword, admitted)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
