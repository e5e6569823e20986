package orchestrator

import (
	"sync"
	"time"

	"go-jobscout/internal/antibot"
	"go-jobscout/internal/scraper"
)

// Stats is the aggregate result of one pipeline run, suitable for a
// CLI or dashboard to render.
type Stats struct {
	KeywordsProcessed int
	PagesScraped      int
	JobsFound         int
	DuplicatesSkipped int
	ErrorsEncountered int

	SuspectedCount   int
	RecoveredCount   int
	AbandonedWorkers int

	// PerKeyword counts newly stored jobs per search keyword.
	PerKeyword map[string]int
	// Jobs are the newly stored (admitted, non-duplicate) jobs.
	Jobs []scraper.ResolvedJob

	Elapsed time.Duration
}

// collector is the concurrent accumulator behind Stats.
type collector struct {
	mu       sync.Mutex
	stats    Stats
	keywords map[string]bool
}

func newCollector() *collector {
	return &collector{
		stats: Stats{
			PerKeyword: make(map[string]int),
		},
		keywords: make(map[string]bool),
	}
}

func (c *collector) pageScraped(keyword string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.PagesScraped++
	if !c.keywords[keyword] {
		c.keywords[keyword] = true
		c.stats.KeywordsProcessed++
	}
}

func (c *collector) jobStored(job scraper.ResolvedJob) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.JobsFound++
	c.stats.PerKeyword[job.SourceKeyword]++
	c.stats.Jobs = append(c.stats.Jobs, job)
}

func (c *collector) duplicate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.DuplicatesSkipped++
}

func (c *collector) failure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.ErrorsEncountered++
}

// onTransition feeds anti-bot state changes into the aggregate; wired
// as every machine's transition callback so no transition is silent.
func (c *collector) onTransition(from, to antibot.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch to {
	case antibot.StateSuspected:
		c.stats.SuspectedCount++
	case antibot.StateRecovered:
		c.stats.RecoveredCount++
	case antibot.StateAbandoned:
		c.stats.AbandonedWorkers++
	}
}

func (c *collector) snapshot(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Elapsed = elapsed
	s.PerKeyword = make(map[string]int, len(c.stats.PerKeyword))
	for k, v := range c.stats.PerKeyword {
		s.PerKeyword[k] = v
	}
	s.Jobs = append([]scraper.ResolvedJob(nil), c.stats.Jobs...)
	return s
}
