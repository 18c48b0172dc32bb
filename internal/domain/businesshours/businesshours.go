// Package businesshours computes elapsed hours between two instants with
// whole weekend days excluded. The policy is date-granular: Saturdays and
// Sundays contribute zero hours, weekday hours count around the clock (an
// interval evaluated at 2am on a Tuesday still accrues full hours). Intraday
// working-hour windows are deliberately not modeled.
package businesshours

import "time"

// IsBusinessDay reports whether t falls on a weekday.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()

	return wd != time.Saturday && wd != time.Sunday
}

// Elapsed returns the business hours contained in [start, end). Weekend
// calendar days are excluded entirely; partial first and last days are
// clamped to the fraction inside the interval. The result is zero when end
// does not lie after start, and is monotonic non-decreasing in end.
func Elapsed(start, end time.Time) float64 {
	if !end.After(start) {
		return 0
	}

	var total float64
	cur := start
	for cur.Before(end) {
		dayEnd := startOfNextDay(cur)
		if dayEnd.After(end) {
			dayEnd = end
		}
		if IsBusinessDay(cur) {
			total += dayEnd.Sub(cur).Hours()
		}
		cur = dayEnd
	}

	return total
}

// startOfNextDay returns midnight of the calendar day after t, in t's location.
func startOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
