package finance

import (
	"time"

	"cloud.google.com/go/civil"

	"pocketpilot/internal/models"
)

// Today returns the current UTC calendar date.
func Today() civil.Date {
	return civil.DateOf(time.Now().UTC())
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

// Midnight returns d at 00:00 UTC, the form dates are stored in.
func Midnight(d civil.Date) time.Time {
	return d.In(time.UTC)
}

// NextOccurrence advances d by one period of f. Month and year steps clamp
// to the last day of a shorter month: Jan 31 + 1 month is Feb 28 or 29.
func NextOccurrence(d civil.Date, f models.Frequency) civil.Date {
	switch f {
	case models.FrequencyWeekly:
		return d.AddDays(7)
	case models.FrequencyBiweekly:
		return d.AddDays(14)
	case models.FrequencyMonthly:
		return addMonths(d, 1)
	case models.FrequencyYearly:
		return addMonths(d, 12)
	}
	return d
}

// IsDue reports whether next is on or before today (UTC).
func IsDue(next civil.Date) bool {
	return IsDueOn(next, Today())
}

// IsDueOn reports whether next is on or before today.
func IsDueOn(next, today civil.Date) bool {
	return !next.After(today)
}

// OccurrencesBetween lists the occurrences starting at next that fall on or
// before until, capped at limit entries.
func OccurrencesBetween(next, until civil.Date, f models.Frequency, limit int) []civil.Date {
	var out []civil.Date
	for d := next; !d.After(until) && len(out) < limit; {
		out = append(out, d)
		n := NextOccurrence(d, f)
		if !n.After(d) {
			break
		}
		d = n
	}
	return out
}

// MonthsBetween counts whole calendar months from from to to; a trailing
// partial month does not count, except that landing on the last day of a
// shorter month completes it. It is negative when to precedes from.
func MonthsBetween(from, to civil.Date) int {
	if to.Before(from) {
		return -MonthsBetween(to, from)
	}
	months := (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
	if to.Day < from.Day && to.Day != daysIn(to.Year, to.Month) {
		months--
	}
	return months
}

// MonthStart returns the first day of d's month.
func MonthStart(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// MonthBounds returns the first day of d's month and the first day of the next.
func MonthBounds(d civil.Date) (civil.Date, civil.Date) {
	start := MonthStart(d)
	return start, addMonths(start, 1)
}

func addMonths(d civil.Date, n int) civil.Date {
	total := int(d.Month) - 1 + n
	year := d.Year + total/12
	month := total % 12
	if month < 0 {
		month += 12
		year--
	}
	m := time.Month(month + 1)
	day := d.Day
	if last := daysIn(year, m); day > last {
		day = last
	}
	return civil.Date{Year: year, Month: m, Day: day}
}

func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
