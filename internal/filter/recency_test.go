package filter

import "testing"

func TestParseAgeWithin(t *testing.T) {
	tests := []struct {
		name       string
		postedText string
		cutoffDays int
		want       bool
	}{
		{name: "hours always fresh", postedText: "5 hours ago", cutoffDays: 1, want: true},
		{name: "minutes always fresh", postedText: "30 minutes ago", cutoffDays: 1, want: true},
		{name: "just posted", postedText: "Just posted", cutoffDays: 1, want: true},
		{name: "days at boundary", postedText: "14 days ago", cutoffDays: 14, want: true},
		{name: "days past boundary", postedText: "15 days ago", cutoffDays: 14, want: false},
		{name: "weeks within", postedText: "2 weeks ago", cutoffDays: 14, want: true},
		{name: "weeks beyond", postedText: "3 weeks ago", cutoffDays: 14, want: false},
		{name: "30 plus days", postedText: "30+ days ago", cutoffDays: 14, want: false},
		{name: "months never", postedText: "2 months ago", cutoffDays: 90, want: false},
		{name: "years never", postedText: "1 year ago", cutoffDays: 999, want: false},
		{name: "empty admits", postedText: "", cutoffDays: 1, want: true},
		{name: "garbage admits", postedText: "recently listed", cutoffDays: 1, want: true},
		{name: "prefixed text", postedText: "Employer Active 3 days ago", cutoffDays: 14, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAge(tt.postedText).Within(tt.cutoffDays)
			if got != tt.want {
				t.Errorf("ParseAge(%q).Within(%d) = %v, want %v", tt.postedText, tt.cutoffDays, got, tt.want)
			}
		})
	}
}

func TestParseAgeDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		a := ParseAge("6 days ago")
		if a.Bucket != AgeDays || a.Days != 6 {
			t.Fatalf("unstable parse on run %d: %+v", i, a)
		}
	}
}

func TestAgeString(t *testing.T) {
	if got := ParseAge("2 weeks ago").String(); got != "14 days" {
		t.Errorf("got %q, want %q", got, "14 days")
	}
	if got := ParseAge("").String(); got != "unknown" {
		t.Errorf("got %q, want %q", got, "unknown")
	}
}
