package markethours

import "time"

// NYSE/Nasdaq full-day holidays, 2025–2026.
// Source: NYSE official holiday calendar.
var usHolidays = []struct {
	year  int
	month time.Month
	day   int
	name  string
}{
	{2025, time.January, 1, "New Year's Day"},
	{2025, time.January, 20, "Martin Luther King Jr. Day"},
	{2025, time.February, 17, "Washington's Birthday"},
	{2025, time.April, 18, "Good Friday"},
	{2025, time.May, 26, "Memorial Day"},
	{2025, time.June, 19, "Juneteenth"},
	{2025, time.July, 4, "Independence Day"},
	{2025, time.September, 1, "Labor Day"},
	{2025, time.November, 27, "Thanksgiving"},
	{2025, time.December, 25, "Christmas"},

	{2026, time.January, 1, "New Year's Day"},
	{2026, time.January, 19, "Martin Luther King Jr. Day"},
	{2026, time.February, 16, "Washington's Birthday"},
	{2026, time.April, 3, "Good Friday"},
	{2026, time.May, 25, "Memorial Day"},
	{2026, time.June, 19, "Juneteenth"},
	{2026, time.July, 3, "Independence Day (observed)"},
	{2026, time.September, 7, "Labor Day"},
	{2026, time.November, 26, "Thanksgiving"},
	{2026, time.December, 25, "Christmas"},
}

// pre-compute for fast lookup
var holidayNames map[string]string

func init() {
	holidayNames = make(map[string]string, len(usHolidays))
	for _, h := range usHolidays {
		holidayNames[dateKey(h.year, h.month, h.day)] = h.name
	}
}

// IsHoliday returns true if the date (in New York time) is a market holiday.
func IsHoliday(t time.Time) bool {
	return HolidayName(t) != ""
}

// HolidayName returns the holiday observed on the date (in New York time),
// or "" on a regular day.
func HolidayName(t time.Time) string {
	et := t.In(NewYork)
	return holidayNames[dateKey(et.Year(), et.Month(), et.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, NewYork).Format("2006-01-02")
}
