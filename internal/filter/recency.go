package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AgeBucket classifies how old a posting is based on its free-text
// "posted X ago" string.
type AgeBucket int

const (
	// AgeUnknown means the text was empty or unparseable. Absence of a
	// date is common and should not discard otherwise-valid postings,
	// so unknown ages are admitted.
	AgeUnknown AgeBucket = iota
	// AgeFresh covers minutes/hours old — always recent enough.
	AgeFresh
	// AgeDays carries an exact day count.
	AgeDays
	// AgeStale covers month/year tokens — never recent enough.
	AgeStale
)

// Age is the parsed recency of a posting.
type Age struct {
	Bucket AgeBucket
	Days   int
}

var (
	relativeRegex = regexp.MustCompile(`(?i)(\d+)\+?\s*(minute|hour|day|week|month|year)s?\s*ago`)
	freshRegex    = regexp.MustCompile(`(?i)\b(just posted|today)\b`)
)

// ParseAge interprets strings like "3 days ago", "2 weeks ago",
// "30+ minutes ago", "just posted". Deterministic: same input, same Age.
func ParseAge(postedText string) Age {
	text := strings.TrimSpace(postedText)
	if text == "" {
		return Age{Bucket: AgeUnknown}
	}
	if freshRegex.MatchString(text) {
		return Age{Bucket: AgeFresh}
	}

	m := relativeRegex.FindStringSubmatch(text)
	if m == nil {
		return Age{Bucket: AgeUnknown}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Age{Bucket: AgeUnknown}
	}

	switch strings.ToLower(m[2]) {
	case "minute", "hour":
		return Age{Bucket: AgeFresh}
	case "day":
		return Age{Bucket: AgeDays, Days: n}
	case "week":
		return Age{Bucket: AgeDays, Days: n * 7}
	default: // month, year
		return Age{Bucket: AgeStale}
	}
}

// Within reports whether the posting is recent enough for cutoffDays.
func (a Age) Within(cutoffDays int) bool {
	switch a.Bucket {
	case AgeFresh, AgeUnknown:
		return true
	case AgeStale:
		return false
	default:
		return a.Days <= cutoffDays
	}
}

func (a Age) String() string {
	switch a.Bucket {
	case AgeFresh:
		return "<1 day"
	case AgeDays:
		return fmt.Sprintf("%d days", a.Days)
	case AgeStale:
		return "stale"
	}
	return "unknown"
}
