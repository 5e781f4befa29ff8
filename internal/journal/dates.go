package journal

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// CompareDates orders two YYYY-MM-DD date strings: negative when a is
// earlier, zero when equal, positive when later. Unparseable values fall
// back to lexicographic order, which agrees with chronological order for
// well-formed dates anyway.
func CompareDates(a, b string) int {
	ta, errA := time.Parse(dateLayout, strings.TrimSpace(a))
	tb, errB := time.Parse(dateLayout, strings.TrimSpace(b))
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	switch {
	case ta.Before(tb):
		return -1
	case ta.After(tb):
		return 1
	}
	return 0
}

// DaysToExpiration counts whole days from now to the expiration date,
// negative once expired. Time-of-day is ignored.
func DaysToExpiration(expDate string, now time.Time) (int, bool) {
	target, err := time.Parse(dateLayout, strings.TrimSpace(expDate))
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today).Hours() / 24), true
}

// ExpiringSoon reports whether the expiration date falls within the next
// warningDays days (inclusive, not yet expired).
func ExpiringSoon(expDate string, now time.Time, warningDays int) bool {
	days, ok := DaysToExpiration(expDate, now)
	if !ok {
		return false
	}
	return days >= 0 && days <= warningDays
}
