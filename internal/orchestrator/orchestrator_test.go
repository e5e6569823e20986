package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobscout/internal/antibot"
	"go-jobscout/internal/browser"
	"go-jobscout/internal/browser/browsertest"
	"go-jobscout/internal/store"
)

// boardSite is a minimal site adapter for a fictional listing board.
type boardSite struct {
	signals antibot.Signals
}

func (boardSite) Name() string { return "TestBoard" }

func (boardSite) SearchURL(keyword string, page int) string {
	return fmt.Sprintf("https://jobs.example.com/search?q=%s&page=%d", url.QueryEscape(keyword), page)
}

func (boardSite) ContainerSelector() string { return "div.job-card" }

func (boardSite) JobLinkPattern() *regexp.Regexp { return regexp.MustCompile(`/job/`) }

func (boardSite) ExcludedLinkPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{regexp.MustCompile(`/reviews/`)}
}

func (boardSite) RoleKeywords() []string { return []string{"analyst", "engineer"} }

func (boardSite) FeaturedBadge() string { return "Featured Employer" }

func (s boardSite) Verification() antibot.Signals { return s.signals }

// textSignals skips marker selectors: the in-memory session serves the
// same elements for every selector, so detection in these tests runs on
// title and body text alone.
func textSignals() antibot.Signals {
	return antibot.Signals{
		TitleKeywords: []string{"just a moment"},
		BodyPhrases:   []string{"verify you are a human"},
	}
}

// jobCard scripts one qualifying listing container. The anchor href
// points straight at the employer side, so resolution takes the
// no-navigation href fallback and stays fast.
func jobCard(title, company, href string) *browsertest.Element {
	text := title + "\n" + company + "\nNew York, NY\nGreat role for a data person. 3 days ago"
	return browsertest.NewContainer(text, browsertest.NewAnchor(title+" opening", href))
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fastConfig(keywords []string, pages, workers int) Config {
	return Config{
		Keywords:           keywords,
		PagesPerKeyword:    pages,
		WorkerCount:        workers,
		CutoffDays:         30,
		MaxRetries:         0,
		EmptyPageThreshold: 2,
		RecoveryAttempts:   1,
		PageInterval:       time.Millisecond,
		PageJitterMinMs:    1,
		PageJitterMaxMs:    2,
	}
}

func TestRunStopsKeywordOnEmptyPage(t *testing.T) {
	site := boardSite{signals: textSignals()}
	keyword := "data analyst"

	// page 1 has three jobs, page 2 is an empty results page; pages 3-5
	// must never be rendered.
	factory := browsertest.NewFactory(func(s *browsertest.Session) {
		s.AddPage(site.SearchURL(keyword, 1), &browsertest.PageDef{
			Title: "data analyst jobs - page 1",
			Containers: []*browsertest.Element{
				jobCard("Data Analyst", "Acme Corp", "https://boards.greenhouse.io/acme/job/101"),
				jobCard("Junior BI Analyst", "Globex", "https://jobs.lever.co/globex/job/202"),
				jobCard("Reporting Analyst", "Initech", "https://careers.initech.com/job/303"),
			},
		})
		s.AddPage(site.SearchURL(keyword, 2), &browsertest.PageDef{
			Title: "data analyst jobs - page 2",
			Body:  "No more results.",
		})
	})

	jobs := openTestStore(t)
	o := New(fastConfig([]string{keyword}, 5, 1), site, factory, jobs, nil, t.Logf)

	stats, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.PagesScraped, "pages beyond the empty one must be skipped")
	assert.Equal(t, 3, stats.JobsFound)
	assert.Equal(t, 0, stats.DuplicatesSkipped)
	assert.Equal(t, 0, stats.ErrorsEncountered)
	assert.Equal(t, 1, stats.KeywordsProcessed)
	assert.Equal(t, 3, stats.PerKeyword[keyword])
	assert.Len(t, stats.Jobs, 3)

	sum, err := jobs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)

	require.Len(t, factory.Sessions, 1)
	sess := factory.Sessions[0]
	assert.True(t, sess.Closed, "worker session must be closed after the run")
	assert.Equal(t, 0, sess.OpenTabs(), "no tab may survive a run")
	for _, nav := range sess.NavCalls {
		assert.NotContains(t, nav, "page=3", "terminated keyword must not paginate further")
	}
}

func TestRunSkipsDuplicatesAcrossRuns(t *testing.T) {
	site := boardSite{signals: textSignals()}
	keyword := "data analyst"

	factory := browsertest.NewFactory(func(s *browsertest.Session) {
		s.AddPage(site.SearchURL(keyword, 1), &browsertest.PageDef{
			Title: "results",
			Containers: []*browsertest.Element{
				jobCard("Data Analyst", "Acme Corp", "https://boards.greenhouse.io/acme/job/101"),
				jobCard("Reporting Analyst", "Initech", "https://careers.initech.com/job/303"),
			},
		})
	})

	jobs := openTestStore(t)
	cfg := fastConfig([]string{keyword}, 1, 1)

	first, err := New(cfg, site, factory, jobs, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.JobsFound)
	assert.Equal(t, 0, first.DuplicatesSkipped)

	second, err := New(cfg, site, factory, jobs, nil, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.JobsFound)
	assert.Equal(t, 2, second.DuplicatesSkipped)

	sum, err := jobs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)
}

func TestRunFiltersBeforeStoring(t *testing.T) {
	site := boardSite{signals: textSignals()}
	keyword := "data analyst"

	stale := browsertest.NewContainer(
		"Data Analyst\nOldCo\nRemote\nPosted 2 months ago",
		browsertest.NewAnchor("Data Analyst opening", "https://careers.oldco.com/job/1"),
	)
	senior := jobCard("Senior Staff Analyst", "BigCo", "https://careers.bigco.com/job/2")
	fresh := jobCard("Data Analyst", "Acme Corp", "https://boards.greenhouse.io/acme/job/101")

	factory := browsertest.NewFactory(func(s *browsertest.Session) {
		s.AddPage(site.SearchURL(keyword, 1), &browsertest.PageDef{
			Title:      "results",
			Containers: []*browsertest.Element{stale, senior, fresh},
		})
	})

	jobs := openTestStore(t)
	stats, err := New(fastConfig([]string{keyword}, 1, 1), site, factory, jobs, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.JobsFound, "stale and senior listings must be filtered out")
	require.Len(t, stats.Jobs, 1)
	assert.Equal(t, "Acme Corp", stats.Jobs[0].Company)
}

func TestRunRecoversFromVerification(t *testing.T) {
	site := boardSite{signals: textSignals()}
	keyword := "data analyst"
	listingURL := site.SearchURL(keyword, 1)

	var sess *browsertest.Session
	factory := browsertest.NewFactory(func(s *browsertest.Session) {
		sess = s
		s.AddPage(listingURL, &browsertest.PageDef{
			Title: "Just a moment...",
			Body:  "Verify you are a human to continue.",
		})
	})

	// stand-in for the operator solving the challenge: swap the scripted
	// page for real results and hand back a clearance cookie
	recovery := func(ctx context.Context, challengeURL string) ([]browser.Cookie, error) {
		sess.AddPage(listingURL, &browsertest.PageDef{
			Title: "data analyst jobs",
			Containers: []*browsertest.Element{
				jobCard("Data Analyst", "Acme Corp", "https://boards.greenhouse.io/acme/job/101"),
			},
		})
		return []browser.Cookie{{Name: "cf_clearance", Value: "solved", Domain: ".jobs.example.com"}}, nil
	}

	jobs := openTestStore(t)
	stats, err := New(fastConfig([]string{keyword}, 1, 1), site, factory, jobs, recovery, t.Logf).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SuspectedCount)
	assert.Equal(t, 1, stats.RecoveredCount)
	assert.Equal(t, 0, stats.AbandonedWorkers)
	assert.Equal(t, 1, stats.JobsFound)

	cookies, err := sess.Cookies()
	require.NoError(t, err)
	require.Len(t, cookies, 1)
	assert.Equal(t, "cf_clearance", cookies[0].Name)
	assert.Contains(t, sess.Screenshots, "verification-TestBoard")
}

func TestRunAbandonsWorkerAfterFailedRecovery(t *testing.T) {
	site := boardSite{signals: textSignals()}
	keyword := "data analyst"

	factory := browsertest.NewFactory(func(s *browsertest.Session) {
		s.AddPage(site.SearchURL(keyword, 1), &browsertest.PageDef{
			Title: "Just a moment...",
			Body:  "Verify you are a human to continue.",
		})
	})

	recovery := func(ctx context.Context, challengeURL string) ([]browser.Cookie, error) {
		return nil, errors.New("challenge not solved")
	}

	cfg := fastConfig([]string{keyword}, 1, 1)
	cfg.RecoveryAttempts = 2

	jobs := openTestStore(t)
	stats, err := New(cfg, site, factory, jobs, recovery, t.Logf).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.SuspectedCount)
	assert.Equal(t, 0, stats.RecoveredCount)
	assert.Equal(t, 1, stats.AbandonedWorkers)
	assert.Equal(t, 0, stats.JobsFound)

	require.Len(t, factory.Sessions, 1)
	assert.True(t, factory.Sessions[0].Closed)
}

func TestRunMultipleKeywordsAndWorkers(t *testing.T) {
	site := boardSite{signals: textSignals()}
	kw1, kw2 := "data analyst", "data engineer"

	factory := browsertest.NewFactory(func(s *browsertest.Session) {
		s.AddPage(site.SearchURL(kw1, 1), &browsertest.PageDef{
			Title: "results",
			Containers: []*browsertest.Element{
				jobCard("Data Analyst", "Acme Corp", "https://boards.greenhouse.io/acme/job/101"),
			},
		})
		s.AddPage(site.SearchURL(kw2, 1), &browsertest.PageDef{
			Title: "results",
			Containers: []*browsertest.Element{
				jobCard("Data Engineer", "Globex", "https://jobs.lever.co/globex/job/202"),
			},
		})
	})

	jobs := openTestStore(t)
	stats, err := New(fastConfig([]string{kw1, kw2}, 1, 2), site, factory, jobs, nil, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.KeywordsProcessed)
	assert.Equal(t, 2, stats.PagesScraped)
	assert.Equal(t, 2, stats.JobsFound)
	assert.Equal(t, 1, stats.PerKeyword[kw1])
	assert.Equal(t, 1, stats.PerKeyword[kw2])
	assert.Len(t, factory.Sessions, 2)
}

func TestRunHonorsCancelledContext(t *testing.T) {
	site := boardSite{signals: textSignals()}
	factory := browsertest.NewFactory(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := openTestStore(t)
	stats, err := New(fastConfig([]string{"data analyst"}, 2, 1), site, factory, jobs, nil, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.JobsFound)
}
