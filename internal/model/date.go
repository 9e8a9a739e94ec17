package model

import "time"

// DateLayout is the calendar-date form used everywhere: storage keys, API
// parameters, and JSON payloads. Lexicographic order on these strings equals
// chronological order, which the store's ORDER BY relies on.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as a YYYY-MM-DD string in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// PrevDay returns the calendar day before d. It does not know about trading
// calendars; weekends and holidays are handled by the lookup fallback bound.
func PrevDay(d string) (string, error) {
	t, err := ParseDate(d)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, -1)), nil
}
