package scraper

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go-jobscout/internal/browser"
)

const (
	// minAnchorTextLen is the visible-text threshold for the +10 score.
	minAnchorTextLen = 10

	// popupTimeout bounds the wait for a new tab or in-place navigation.
	popupTimeout = 8 * time.Second

	// settleTime is the fixed wait for client-side redirect chains to
	// finish before the popup URL is read. ATS pages bounce through
	// several redirects; reading too early captures an intermediate hop.
	settleTime = 3 * time.Second

	maxFieldLen = 300
)

var navKeywords = []string{"next", "more", "previous", "sign in", "save", "page"}

// placeholder hrefs that carry no destination.
func isPlaceholderHref(href string) bool {
	href = strings.TrimSpace(href)
	return href == "" || href == "#" || strings.HasPrefix(href, "javascript:")
}

// Resolve clicks through a candidate's listing link and captures the
// true employer-side application URL. The returned job always has a
// non-empty ApplyURL (listing URL fallback), and the session is always
// restored to listingURL with no extra tab left open, on every path.
func Resolve(ctx context.Context, site SiteAdapter, sess browser.Session, cand CandidateRecord, listingURL string) (job ResolvedJob) {
	job = ResolvedJob{
		Title:         clean(cand.RawTitle),
		Company:       clean(cand.RawCompany),
		Location:      clean(cand.RawLocation),
		Summary:       clean(cand.RawSummary),
		Salary:        clean(cand.RawSalary),
		PostedText:    cand.PostedText,
		SourceSite:    site.Name(),
		SourceKeyword: cand.SourceKeyword,
		ApplyURL:      listingURL,
	}

	// Cleanup guarantee: whatever happens below, control returns with
	// the session back on the listing page.
	defer func() {
		if sess.CurrentURL() != listingURL {
			restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sess.Navigate(restoreCtx, listingURL)
		}
		job.ATSVendor = ClassifyVendor(job.ApplyURL)
		job.Fingerprint = Fingerprint(job.Title, job.Company, job.ApplyURL)
	}()

	anchor, href := bestAnchor(site, cand.ListingHandle)
	if anchor == nil {
		return job
	}

	// Human-plausible pre-click. Reduces bot-detection noise, nothing
	// here is load-bearing.
	anchor.ScrollIntoView()
	anchor.Hover()
	browser.RandomDelay(100, 500)

	popup, err := sess.ExpectPopup(anchor.Click, popupTimeout)
	switch {
	case err == nil:
		// New tab observed. Let redirect chains settle, then read the
		// final URL and close the tab.
		defer popup.Close()
		select {
		case <-time.After(settleTime):
		case <-ctx.Done():
		}
		if final := popup.URL(); final != "" {
			job.ApplyURL = final
			job.Resolved = isExternal(final, listingURL)
		}

	case sess.CurrentURL() != listingURL && sess.CurrentURL() != "":
		// In-place navigation instead of a popup.
		current := sess.CurrentURL()
		job.ApplyURL = current
		job.Resolved = isExternal(current, listingURL)

	case !isPlaceholderHref(href):
		// No navigation observed at all; fall back to the raw href.
		job.ApplyURL = absoluteURL(href, listingURL)
	}

	return job
}

// bestAnchor scores every anchor in the container and returns the
// winner, or nil when nothing scores above zero.
func bestAnchor(site SiteAdapter, container browser.Element) (browser.Element, string) {
	if container == nil {
		return nil, ""
	}
	anchors, err := container.Anchors()
	if err != nil {
		return nil, ""
	}

	var best browser.Element
	bestHref := ""
	bestScore := 0
	for _, a := range anchors {
		text, _ := a.Text()
		href, _ := a.Attribute("href")
		score := scoreAnchor(site, text, href)
		if score > bestScore {
			best, bestHref, bestScore = a, href, score
		}
	}
	return best, bestHref
}

func scoreAnchor(site SiteAdapter, text, href string) int {
	score := 0
	lower := strings.ToLower(strings.TrimSpace(text))

	if len(lower) >= minAnchorTextLen {
		score += 10
	}
	if href != "" && site.JobLinkPattern().MatchString(href) {
		score += 20
	}
	for _, kw := range site.RoleKeywords() {
		if strings.Contains(lower, kw) {
			score += 5
			break
		}
	}
	for _, kw := range navKeywords {
		if strings.Contains(lower, kw) {
			score -= 10
			break
		}
	}
	return score
}

// isExternal reports whether raw points outside the listing site's
// domain, i.e. an actual employer-side destination.
func isExternal(raw, listingURL string) bool {
	a, err := url.Parse(raw)
	if err != nil || a.Host == "" {
		return false
	}
	b, err := url.Parse(listingURL)
	if err != nil {
		return false
	}
	return hostOf(a) != hostOf(b)
}

func hostOf(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// absoluteURL resolves href against the listing URL when it is relative.
func absoluteURL(href, listingURL string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(listingURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func clean(s string) string {
	return truncate(strings.Join(strings.Fields(s), " "), maxFieldLen)
}
