// Verification / CAPTCHA detection and the per-worker recovery state
// machine.

package antibot

import (
	"strings"

	"go-jobscout/internal/browser"
)

// Signals describes how a site's anti-bot challenge pages look.
// Adapters supply these; the detector stays generic.
type Signals struct {
	// MarkerSelectors are DOM selectors present on challenge pages.
	MarkerSelectors []string
	// TitleKeywords flag a challenge when found in the page title.
	TitleKeywords []string
	// BodyPhrases flag a challenge when found in the visible body text.
	BodyPhrases []string
}

// DefaultSignals covers the Cloudflare/recaptcha vocabulary shared by
// most protected listing sites.
func DefaultSignals() Signals {
	return Signals{
		MarkerSelectors: []string{".captcha", ".recaptcha", ".g-recaptcha", ".h-captcha", "[data-captcha]", "#challenge-stage"},
		TitleKeywords:   []string{"just a moment", "attention required", "cloudflare", "verification", "access denied"},
		BodyPhrases:     []string{"verify you are a human", "verify you're a human", "confirm you are not a robot", "unusual traffic", "security check"},
	}
}

// Detect reports whether the session's current page is a verification
// challenge rather than real content.
func (s Signals) Detect(sess browser.Session) bool {
	if s.MatchesText(sess.Title(), sess.BodyText()) {
		return true
	}
	for _, selector := range s.MarkerSelectors {
		if els, err := sess.Find(selector); err == nil && len(els) > 0 {
			return true
		}
	}
	return false
}

// MatchesText is the DOM-free half of Detect, for callers that only
// have the raw title and body (the manual-recovery poll).
func (s Signals) MatchesText(title, body string) bool {
	title = strings.ToLower(title)
	for _, kw := range s.TitleKeywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	body = strings.ToLower(body)
	for _, phrase := range s.BodyPhrases {
		if strings.Contains(body, phrase) {
			return true
		}
	}
	return false
}
