package view

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	// HeadlineLimit is the number of characters kept from a market headline.
	HeadlineLimit = 75
	// HeadlineEllipsis is appended to every market headline.
	HeadlineEllipsis = "....."
	// InvalidDate is shown for timestamps that do not parse.
	InvalidDate = "Invalid Date"

	// en-US short date and 12h time with two-digit fields.
	isoDisplayLayout = "01/02/06, 03:04 PM"
)

// TruncateHeadline keeps at most HeadlineLimit characters of s and appends
// HeadlineEllipsis.
func TruncateHeadline(s string) string {
	if utf8.RuneCountInString(s) > HeadlineLimit {
		s = string([]rune(s)[:HeadlineLimit])
	}
	return s + HeadlineEllipsis
}

// ShortTimeAgo renders the age of an epoch-seconds timestamp compactly,
// e.g. "now", "5m ago", "3h ago", "2d ago", "4w ago", "7mo ago", "1y ago".
// Timestamps in the future render as "now".
func ShortTimeAgo(epochSeconds int64, now time.Time) string {
	d := now.Sub(time.Unix(epochSeconds, 0))
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d/(7*24*time.Hour)))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo ago", int(d/(30*24*time.Hour)))
	default:
		return fmt.Sprintf("%dy ago", int(d/(365*24*time.Hour)))
	}
}

// FormatISODate renders an ISO-8601 timestamp as "MM/DD/YY, hh:mm AM" in loc.
// A nil loc means time.Local.
func FormatISODate(iso string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		t, err = parseZoneless(iso, loc)
		if err != nil {
			return InvalidDate
		}
	}
	return t.In(loc).Format(isoDisplayLayout)
}

// parseZoneless reads date-times without an offset as local to loc and
// date-only values as midnight UTC.
func parseZoneless(iso string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, iso, loc); err == nil {
			return t, nil
		}
	}
	return time.Parse("2006-01-02", iso)
}
