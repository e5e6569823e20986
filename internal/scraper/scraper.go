// Core types for the job discovery pipeline and the interface all
// site adapters must implement.

package scraper

import (
	"regexp"

	"go-jobscout/internal/antibot"
	"go-jobscout/internal/browser"
)

// CandidateRecord is the raw parse of one listing container. It is
// ephemeral: ListingHandle is only valid while the worker's page still
// shows the search results it came from.
type CandidateRecord struct {
	RawTitle    string
	RawCompany  string
	RawLocation string
	RawSalary   string
	RawSummary  string
	PostedText  string

	SourceKeyword string
	SourcePage    int

	ListingHandle browser.Element
}

// ResolvedJob is the immutable output of the URL resolver.
type ResolvedJob struct {
	Title    string
	Company  string
	Location string
	Summary  string
	Salary   string

	// ApplyURL is the employer-side application URL, or the listing URL
	// when resolution failed. Never empty.
	ApplyURL  string
	ATSVendor Vendor
	// Resolved is true only when an external URL distinct from the
	// listing domain was captured.
	Resolved bool

	PostedText string
	// AgeBucket is filled by the recency filter ("3 days", "unknown").
	AgeBucket string

	SourceSite    string
	SourceKeyword string

	// Fingerprint is the dedup key: hash of normalized title, company
	// and canonical apply URL.
	Fingerprint string
}

// SiteAdapter captures everything site-specific about one listing site
// so the orchestrator, extractor and resolver stay generic.
type SiteAdapter interface {
	Name() string

	// SearchURL builds the listing URL for a keyword and 1-based page.
	SearchURL(keyword string, page int) string

	// ContainerSelector matches the job-card containers on a results page.
	ContainerSelector() string

	// JobLinkPattern matches hrefs that lead to a job detail view.
	JobLinkPattern() *regexp.Regexp

	// ExcludedLinkPatterns match hrefs that disqualify a container
	// (employer review pages, ads).
	ExcludedLinkPatterns() []*regexp.Regexp

	// RoleKeywords bias anchor scoring toward job-title links.
	RoleKeywords() []string

	// FeaturedBadge is the badge token stripped from the company line.
	FeaturedBadge() string

	// Verification describes this site's anti-bot challenge pages.
	Verification() antibot.Signals
}
