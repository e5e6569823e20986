// Primary target site adapter. Indeed is aggressively bot-protected,
// so its verification signal set extends the shared defaults.

package indeed

import (
	"fmt"
	"net/url"
	"regexp"

	"go-jobscout/internal/antibot"
	"go-jobscout/internal/scraper"
)

const resultsPerPage = 10

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string {
	return "Indeed"
}

func (a *Adapter) SearchURL(keyword string, page int) string {
	start := (page - 1) * resultsPerPage
	return fmt.Sprintf("https://www.indeed.com/jobs?q=%s&sort=date&start=%d",
		url.QueryEscape(keyword), start)
}

func (a *Adapter) ContainerSelector() string {
	return "div.job_seen_beacon, div.cardOutline"
}

var jobLinkPattern = regexp.MustCompile(`(?:/rc/clk|/viewjob|/pagead/clk|[?&]jk=)`)

func (a *Adapter) JobLinkPattern() *regexp.Regexp {
	return jobLinkPattern
}

var excludedLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/cmp/[^/]+/reviews`),
	regexp.MustCompile(`/career-advice/`),
	regexp.MustCompile(`/promo/`),
	regexp.MustCompile(`/survey/`),
}

func (a *Adapter) ExcludedLinkPatterns() []*regexp.Regexp {
	return excludedLinkPatterns
}

func (a *Adapter) RoleKeywords() []string {
	return []string{"engineer", "developer", "analyst", "scientist", "designer", "administrator", "technician"}
}

func (a *Adapter) FeaturedBadge() string {
	return "Featured Employer"
}

func (a *Adapter) Verification() antibot.Signals {
	s := antibot.DefaultSignals()
	s.MarkerSelectors = append(s.MarkerSelectors, "#challenge-running", ".cf-turnstile")
	s.TitleKeywords = append(s.TitleKeywords, "additional verification required")
	s.BodyPhrases = append(s.BodyPhrases, "verify your identity", "prove you are not a robot")
	return s
}

// compile-time interface check
var _ scraper.SiteAdapter = (*Adapter)(nil)
