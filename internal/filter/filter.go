// Recency and relevance admission for resolved jobs. A heuristic
// classifier: false positives and negatives are expected, but the
// verdict is deterministic for a given title/summary/posted-text.

package filter

import "go-jobscout/internal/scraper"

// Admit decides whether a resolved job is worth storing.
//
// Recency: parsed age must fall within cutoffDays; unknown ages are
// admitted (optimistic bias).
//
// Seniority precedence: an entry-level signal in the title always wins;
// then a senior signal in the title rejects; then the same pair is
// checked against the summary. No signal either way admits.
func Admit(job scraper.ResolvedJob, cutoffDays int, policy Policy) bool {
	if !ParseAge(job.PostedText).Within(cutoffDays) {
		return false
	}

	if policy.EntryLevel(job.Title) {
		return true
	}
	if policy.TooSenior(job.Title) {
		return false
	}
	if policy.EntryLevel(job.Summary) {
		return true
	}
	if policy.TooSenior(job.Summary) {
		return false
	}
	return true
}
