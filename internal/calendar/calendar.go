// Package calendar computes the U.S. equity market holiday calendar used to
// gate report runs.
package calendar

import "time"

// UnknownHoliday is returned by HolidayName for dates that are not holidays.
// Callers are expected to check IsHoliday first.
const UnknownHoliday = "unknown holiday"

// Holiday is a named market holiday on its observed date.
type Holiday struct {
	Name string
	Date time.Time
}

// HolidaysForYear returns the observed market holidays for a year.
// Fixed-date holidays falling on a Saturday are observed the preceding Friday
// and on a Sunday the following Monday. Good Friday is derived from Easter
// and is inherently a Friday, never shifted.
func HolidaysForYear(year int) []Holiday {
	return []Holiday{
		{"New Year's Day", observed(date(year, time.January, 1))},
		{"Martin Luther King Jr. Day", nthWeekday(year, time.January, time.Monday, 3)},
		{"Presidents Day", nthWeekday(year, time.February, time.Monday, 3)},
		{"Good Friday", EasterSunday(year).AddDate(0, 0, -2)},
		{"Memorial Day", lastWeekday(year, time.May, time.Monday)},
		{"Juneteenth", observed(date(year, time.June, 19))},
		{"Independence Day", observed(date(year, time.July, 4))},
		{"Labor Day", nthWeekday(year, time.September, time.Monday, 1)},
		{"Thanksgiving", nthWeekday(year, time.November, time.Thursday, 4)},
		{"Christmas", observed(date(year, time.December, 25))},
	}
}

// IsHoliday reports whether the date's local calendar day is an observed
// market holiday.
func IsHoliday(d time.Time) bool {
	return HolidayName(d) != UnknownHoliday
}

// HolidayName returns the holiday name for an observed holiday date, or
// UnknownHoliday when the date is not one.
func HolidayName(d time.Time) string {
	// Next year's New Year's Day can be observed on December 31, so a
	// late-December date must also be checked against year+1.
	for _, year := range []int{d.Year(), d.Year() + 1} {
		for _, h := range HolidaysForYear(year) {
			if sameDate(d, h.Date) {
				return h.Name
			}
		}
	}
	return UnknownHoliday
}

// EasterSunday computes Easter Sunday for a year using the Anonymous
// Gregorian algorithm.
func EasterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

// observed shifts a fixed holiday off the weekend: Saturday to the preceding
// Friday, Sunday to the following Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// nthWeekday returns the nth occurrence of a weekday in a month, scanning
// days in ascending order.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	count := 0
	for day := 1; day <= 31; day++ {
		d := date(year, month, day)
		if d.Month() != month {
			break
		}
		if d.Weekday() == weekday {
			count++
			if count == n {
				return d
			}
		}
	}
	return time.Time{}
}

// lastWeekday returns the last occurrence of a weekday in a month, scanning
// backward from the last day.
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	// Day 0 of the next month is the last day of this month.
	last := date(year, month+1, 0)
	for d := last; d.Month() == month; d = d.AddDate(0, 0, -1) {
		if d.Weekday() == weekday {
			return d
		}
	}
	return time.Time{}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
