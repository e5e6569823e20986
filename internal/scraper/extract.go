package scraper

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go-jobscout/internal/browser"
)

const maxSummaryLen = 300

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

var (
	salaryRegex = regexp.MustCompile(`\$[\d,]+(?:\s*-\s*\$[\d,]+)?(?:\s*(?:a|per)\s*(?:year|hour|month|week))?`)
	postedRegex = regexp.MustCompile(`(?i)(just posted|today|(?:posted|active|employer active)?\s*\d+\+?\s*(?:minute|hour|day|week|month|year)s?\s*ago)`)
)

// Extract parses the current results page into candidate records.
// It only reads from the page; an empty result means the pagination for
// this keyword has run dry, not that something failed.
func Extract(site SiteAdapter, sess browser.Session, keyword string, pageNum int) ([]CandidateRecord, error) {
	containers, err := sess.Find(site.ContainerSelector())
	if err != nil {
		return nil, err
	}

	var candidates []CandidateRecord
	for _, container := range containers {
		cand, ok := parseContainer(site, container)
		if !ok {
			continue
		}
		cand.SourceKeyword = keyword
		cand.SourcePage = pageNum
		candidates = append(candidates, cand)
	}
	return candidates, nil
}

// parseContainer turns one job-card element into a candidate. Precision
// over recall: anything ambiguous is dropped rather than stored dirty.
func parseContainer(site SiteAdapter, container browser.Element) (CandidateRecord, bool) {
	anchors, err := container.Anchors()
	if err != nil || len(anchors) == 0 {
		return CandidateRecord{}, false
	}

	qualified := false
	for _, a := range anchors {
		href, _ := a.Attribute("href")
		if href == "" {
			continue
		}
		for _, excl := range site.ExcludedLinkPatterns() {
			if excl.MatchString(href) {
				//review/ad container, never a job card
				return CandidateRecord{}, false
			}
		}
		if site.JobLinkPattern().MatchString(href) {
			qualified = true
		}
	}
	if !qualified {
		return CandidateRecord{}, false
	}

	text, err := container.Text()
	if err != nil {
		return CandidateRecord{}, false
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) < 2 {
		return CandidateRecord{}, false
	}

	cand := CandidateRecord{ListingHandle: container}

	// Line 0: title, possibly with an embedded salary range.
	title := lines[0]
	if salary := salaryRegex.FindString(title); salary != "" {
		cand.RawSalary = strings.TrimSpace(salary)
		title = strings.TrimSpace(strings.Replace(title, salary, "", 1))
	}
	cand.RawTitle = title

	// Line 1: company, minus the featured-employer badge.
	company := lines[1]
	if badge := site.FeaturedBadge(); badge != "" {
		company = strings.TrimSpace(strings.Replace(company, badge, "", 1))
	}
	cand.RawCompany = company

	if len(lines) > 2 {
		cand.RawLocation = lines[2]
	}

	if len(lines) > 3 {
		rest := lines[3:]
		for _, line := range rest {
			if m := postedRegex.FindString(line); m != "" {
				cand.PostedText = strings.TrimSpace(m)
				break
			}
		}
		cand.RawSummary = truncate(strings.Join(rest, " "), maxSummaryLen)
	}

	if cand.RawTitle == "" {
		return CandidateRecord{}, false
	}
	return cand, true
}
