package linkedin

import (
	"fmt"
	"net/url"
	"regexp"

	"go-jobscout/internal/antibot"
	"go-jobscout/internal/scraper"
)

const resultsPerPage = 25

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string {
	return "LinkedIn"
}

func (a *Adapter) SearchURL(keyword string, page int) string {
	start := (page - 1) * resultsPerPage
	// f_TPR=r2592000 keeps results within the last 30 days; the recency
	// filter narrows further from postedText.
	return fmt.Sprintf("https://www.linkedin.com/jobs/search/?keywords=%s&f_TPR=r2592000&sortBy=DD&start=%d",
		url.QueryEscape(keyword), start)
}

func (a *Adapter) ContainerSelector() string {
	return "li.jobs-search-results__list-item, div.base-card"
}

var jobLinkPattern = regexp.MustCompile(`/jobs/view/`)

func (a *Adapter) JobLinkPattern() *regexp.Regexp {
	return jobLinkPattern
}

var excludedLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/company/[^/]+/life`),
	regexp.MustCompile(`/learning/`),
	regexp.MustCompile(`/premium/`),
}

func (a *Adapter) ExcludedLinkPatterns() []*regexp.Regexp {
	return excludedLinkPatterns
}

func (a *Adapter) RoleKeywords() []string {
	return []string{"engineer", "developer", "analyst", "scientist", "designer", "consultant"}
}

func (a *Adapter) FeaturedBadge() string {
	return "Promoted"
}

func (a *Adapter) Verification() antibot.Signals {
	s := antibot.DefaultSignals()
	s.BodyPhrases = append(s.BodyPhrases, "let's do a quick security check")
	return s
}

var _ scraper.SiteAdapter = (*Adapter)(nil)
