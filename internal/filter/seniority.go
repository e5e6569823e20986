package filter

import (
	"regexp"
	"strings"
)

// experienceRegex catches "3+ years", "5 yrs", "10 years" style
// requirements that the keyword lists miss.
var experienceRegex = regexp.MustCompile(`(?i)\b([3-9]|\d{2,})\s*\+?\s*(years?|yrs?)\b`)

// Policy holds the seniority keyword sets. Both lists are heuristic and
// tunable; the precedence rules in Admit are the contract, the exact
// words are not.
type Policy struct {
	SeniorKeywords []string `yaml:"senior_keywords"`
	EntryKeywords  []string `yaml:"entry_keywords"`
}

func DefaultPolicy() Policy {
	return Policy{
		SeniorKeywords: []string{
			"senior", "sr.", "staff", "principal", "lead", "director",
			"manager", "architect", "head of", "vp ",
		},
		EntryKeywords: []string{
			"junior", "entry level", "entry-level", "intern", "graduate",
			"fresher", "trainee", "associate",
		},
	}
}

// TooSenior reports whether text signals a role above the target level.
func (p Policy) TooSenior(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range p.SeniorKeywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return experienceRegex.MatchString(lower)
}

// EntryLevel reports whether text carries an explicit entry-level signal.
func (p Policy) EntryLevel(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range p.EntryKeywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
