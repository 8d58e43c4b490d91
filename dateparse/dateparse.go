// Package dateparse normalizes the free-form publication dates returned by news
// search ("3 days ago", "Mar 4, 2024", ISO timestamps) into YYYY-MM-DD.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	anydate "github.com/araddon/dateparse"
)

// Layout is the canonical output format.
const Layout = "2006-01-02"

var relativePattern = regexp.MustCompile(`^(\d+)\s+(minute|min|hour|day|week|month|year)s?\s+ago`)

// maxRelativeAmount bounds N in "N units ago".
const maxRelativeAmount = 10000

// Normalize converts s to YYYY-MM-DD relative to now. Months count as 30 days
// and years as 365 days. Absolute dates without a zone are read in now's
// location. It returns false when s matches no known form.
func Normalize(s string, now time.Time) (string, bool) {
	t, ok := Parse(s, now)
	if !ok {
		return "", false
	}
	return t.Format(Layout), true
}

// Parse is Normalize without the formatting step.
func Parse(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if lower == "" || lower == "n/a" {
		return time.Time{}, false
	}

	switch lower {
	case "just now", "today", "now":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	if m := relativePattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n > maxRelativeAmount {
			return time.Time{}, false
		}
		return ago(now, n, m[2]), true
	}

	t, err := anydate.ParseIn(s, now.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func ago(now time.Time, n int, unit string) time.Time {
	switch unit {
	case "minute", "min":
		return now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour)
	case "day":
		return now.AddDate(0, 0, -n)
	case "week":
		return now.AddDate(0, 0, -7*n)
	case "month":
		return now.AddDate(0, 0, -30*n)
	default: // year
		return now.AddDate(0, 0, -365*n)
	}
}
