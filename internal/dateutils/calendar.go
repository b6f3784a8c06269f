package dateutils

import (
	"fmt"
	"time"

	"fjacquet/sepa-export/internal/exporterror"
)

// maxShiftSteps bounds the search for a banking day so a lookup that
// rejects every date cannot loop forever.
const maxShiftSteps = 366

// NonBusinessDayLookup reports whether date is a configured non-business
// day (bank holiday). A nil lookup means no holidays.
type NonBusinessDayLookup func(date time.Time) bool

// IsBankingDay is false on weekends and on days matched by lookup.
func IsBankingDay(date time.Time, lookup NonBusinessDayLookup) bool {
	if IsWeekend(date) {
		return false
	}
	if lookup != nil && lookup(date) {
		return false
	}
	return true
}

// ShiftToValidSettlementDate adds shiftDays calendar days to date and
// then advances until a banking day is reached: Friday jumps to Monday,
// Saturday to Monday, any other day to the next day.
func ShiftToValidSettlementDate(date time.Time, shiftDays int, lookup NonBusinessDayLookup) (time.Time, error) {
	current := DateOnly(date).AddDate(0, 0, shiftDays)
	for steps := 0; !IsBankingDay(current, lookup); steps++ {
		if steps >= maxShiftSteps {
			return time.Time{}, &exporterror.ExportError{
				Kind:   exporterror.ErrNoBankingDay,
				Value:  ToISODate(date),
				Reason: fmt.Sprintf("no banking day within %d steps", maxShiftSteps),
			}
		}
		current = NextBusinessDay(current)
	}
	return current, nil
}

// CombineLookups matches a date when any of the lookups does.
func CombineLookups(lookups ...NonBusinessDayLookup) NonBusinessDayLookup {
	var active []NonBusinessDayLookup
	for _, l := range lookups {
		if l != nil {
			active = append(active, l)
		}
	}
	if len(active) == 0 {
		return nil
	}
	return func(date time.Time) bool {
		for _, l := range active {
			if l(date) {
				return true
			}
		}
		return false
	}
}

// HolidaySet is a lookup over explicit calendar dates.
type HolidaySet map[string]struct{}

// NewHolidaySet builds a set from dates, ignoring their clock part.
func NewHolidaySet(dates ...time.Time) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set[ToISODate(d)] = struct{}{}
	}
	return set
}

// Lookup adapts the set to a NonBusinessDayLookup.
func (s HolidaySet) Lookup() NonBusinessDayLookup {
	return func(date time.Time) bool {
		_, ok := s[ToISODate(date)]
		return ok
	}
}

// TargetClosingDays matches the fixed TARGET2 closing days: New Year,
// Good Friday, Easter Monday, 1 May, 25 and 26 December.
func TargetClosingDays(date time.Time) bool {
	_, m, d := date.Date()
	switch {
	case m == time.January && d == 1,
		m == time.May && d == 1,
		m == time.December && (d == 25 || d == 26):
		return true
	}
	easter := EasterSunday(date.Year())
	return SameDay(date, easter.AddDate(0, 0, -2)) || SameDay(date, easter.AddDate(0, 0, 1))
}

// EasterSunday computes the Gregorian Easter date (anonymous algorithm).
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
	day := ((h + l - 7*m + 114) % 31) + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
