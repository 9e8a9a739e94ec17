// Package markethours knows the US equity trading calendar, used only to
// decide when the daily pipeline pass is worth running. The core lookup
// fallback stays calendar-free on purpose.
package markethours

import (
	"fmt"
	"time"
)

// NewYork is the US market timezone. Falls back to a fixed EST offset if the
// zone database is unavailable; DST drift is acceptable for scheduling.
var NewYork = mustLoadNewYork()

func mustLoadNewYork() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}

// Regular session hours in New York time.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

// IsMarketOpen returns true if t falls within regular NYSE/Nasdaq hours
// (9:30 AM – 4:00 PM ET, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	et := t.In(NewYork)
	if !IsTradingDay(et) {
		return false
	}
	hm := et.Hour()*60 + et.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon–Fri in New York time.
func IsWeekday(t time.Time) bool {
	wd := t.In(NewYork).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a market holiday.
func IsTradingDay(t time.Time) bool {
	et := t.In(NewYork)
	return IsWeekday(et) && !IsHoliday(et)
}

// TodayClose returns today's market close time (4:00 PM ET).
func TodayClose(t time.Time) time.Time {
	et := t.In(NewYork)
	return time.Date(et.Year(), et.Month(), et.Day(), CloseHour, CloseMinute, 0, 0, NewYork)
}

// PrevTradingDay returns the most recent trading day strictly before t.
func PrevTradingDay(t time.Time) time.Time {
	d := t.In(NewYork).AddDate(0, 0, -1)
	for i := 0; i < 10; i++ { // bounded: a week of holidays does not happen
		if IsTradingDay(d) {
			return d
		}
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// StatusString returns a human-readable market status for logs.
func StatusString(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("Market Open — closes %s ET", TodayClose(t).Format("15:04"))
	}
	if IsTradingDay(t) {
		return "Market Closed — trading day"
	}
	if name := HolidayName(t); name != "" {
		return "Market Closed — " + name
	}
	return "Market Closed — non-trading day"
}
