package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go-jobscout/internal/browser"
	"go-jobscout/internal/config"
	"go-jobscout/internal/orchestrator"
	"go-jobscout/internal/reporter"
	"go-jobscout/internal/scraper"
	"go-jobscout/internal/scraper/indeed"
	"go-jobscout/internal/scraper/linkedin"
	"go-jobscout/internal/store"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to run configuration")
	clearStore := flag.Bool("clear", false, "wipe the job store and exit (maintenance)")
	flag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	log.Printf("🔧 Config loaded. Site: %s, Keywords: %v", cfg.Site, cfg.Keywords)

	//open job store
	jobs, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("❌ Failed to open job store: %v", err)
	}
	defer jobs.Close()

	if *clearStore {
		count, err := jobs.ClearAll(context.Background())
		if err != nil {
			log.Fatalf("❌ Failed to clear store: %v", err)
		}
		log.Printf("🧹 Cleared %d stored jobs.", count)
		return
	}

	//pick site adapter
	site, err := pickSite(cfg.Site)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	//global stop signal: workers finish their current item and exit
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Println("🚀 Starting job discovery run...")

	//load cookies for this site
	cookieFile := filepath.Join(cfg.CookiesPath, fmt.Sprintf("cookies-%s.json", strings.ToLower(site.Name())))
	cookies, err := browser.LoadCookies(cookieFile)
	if err != nil {
		log.Printf("⚠️ Could not load %s cookies: %v. Starting cold.", site.Name(), err)
	} else {
		log.Printf("🍪 Loaded %s cookies (%d)", site.Name(), len(cookies))
	}

	//init browser manager
	mgr, err := browser.NewManager(ctx, browser.Options{
		Headless: !cfg.Headful,
		Cookies:  cookies,
		LogDir:   cfg.LogDir,
	})
	if err != nil {
		log.Fatalf("❌ Failed to init browser: %v", err)
	}
	defer mgr.Close()
	log.Println("✅ Browser initialized successfully!")

	//manual recovery: visible session for challenge solving, cookies
	//saved for the next run
	signals := site.Verification()
	recovery := func(rctx context.Context, challengeURL string) ([]browser.Cookie, error) {
		log.Println("🖐️ Manual verification needed — solving in visible browser...")
		fresh, err := mgr.SolveInteractively(rctx, challengeURL, func(title, body string) bool {
			return !signals.MatchesText(title, body)
		}, time.Duration(cfg.RecoveryTimeoutMin)*time.Minute)
		if err != nil {
			return nil, err
		}
		if err := browser.SaveCookies(cookieFile, fresh); err != nil {
			log.Printf("⚠️ Failed to save recovered cookies: %v", err)
		}
		return fresh, nil
	}

	//run the pipeline
	orch := orchestrator.New(orchestrator.Config{
		Keywords:           cfg.Keywords,
		PagesPerKeyword:    cfg.PagesPerKeyword,
		WorkerCount:        cfg.WorkerCount,
		CutoffDays:         cfg.CutoffDays,
		Policy:             cfg.Seniority,
		MaxRetries:         cfg.MaxRetries,
		EmptyPageThreshold: cfg.EmptyPageThreshold,
		RecoveryAttempts:   cfg.RecoveryAttempts,
		PageInterval:       time.Duration(cfg.PageIntervalMs) * time.Millisecond,
		PageJitterMinMs:    cfg.PageJitterMinMs,
		PageJitterMaxMs:    cfg.PageJitterMaxMs,
		KeywordSwitchDelay: time.Duration(cfg.KeywordSwitchDelayMs) * time.Millisecond,
	}, site, mgr, jobs, recovery, log.Printf)

	stats, runErr := orch.Run(ctx)
	if runErr != nil {
		log.Printf("⚠️ Run interrupted: %v", runErr)
	}

	printStats(stats)

	//push results to telegram if configured
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		sendReport(cfg, stats)
	}

	log.Println("🏁 Execution finished.")
}

func pickSite(name string) (scraper.SiteAdapter, error) {
	switch strings.ToLower(name) {
	case "indeed":
		return indeed.New(), nil
	case "linkedin":
		return linkedin.New(), nil
	}
	return nil, fmt.Errorf("unknown site %q (want indeed or linkedin)", name)
}

func printStats(stats orchestrator.Stats) {
	log.Printf("📊 Keywords processed: %d", stats.KeywordsProcessed)
	log.Printf("📊 Pages scraped: %d", stats.PagesScraped)
	log.Printf("📊 New jobs stored: %d", stats.JobsFound)
	log.Printf("📊 Duplicates skipped: %d", stats.DuplicatesSkipped)
	log.Printf("📊 Errors: %d", stats.ErrorsEncountered)
	if stats.SuspectedCount > 0 {
		log.Printf("🛡️ Verifications: %d suspected, %d recovered, %d workers abandoned",
			stats.SuspectedCount, stats.RecoveredCount, stats.AbandonedWorkers)
	}
	for kw, n := range stats.PerKeyword {
		log.Printf("   🔍 %q: %d new jobs", kw, n)
	}
	log.Printf("⏱ Elapsed: %s", stats.Elapsed.Round(time.Millisecond))
}

func sendReport(cfg *config.Config, stats orchestrator.Stats) {
	bot, err := reporter.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("⚠️ Failed to init Telegram bot: %v", err)
		return
	}

	for _, job := range stats.Jobs {
		if err := bot.SendJob(job); err != nil {
			log.Printf("⚠️ Failed to send job to Telegram: %v", err)
		}
		//1 second delay to avoid 429
		time.Sleep(1 * time.Second)
	}
	if err := bot.SendRunSummary(stats); err != nil {
		log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
	}
}
