// Package dateutils holds the date layouts of SEPA messages and the
// banking calendar used to pick execution and collection dates.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used in messages, filenames and user input.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02.01.2006"
	// DateLayoutMessageID formats group header message ids and
	// payment-information ids.
	DateLayoutMessageID = "2006-01-02 15:04:05"
	// DateLayoutCreation formats CreDtTm with millisecond precision.
	DateLayoutCreation = "2006-01-02T15:04:05.000Z"
	// DateLayoutFileStamp is used in artifact and archive entry names.
	DateLayoutFileStamp = "2006-01-02-15-04-05"
)

// ParseDate accepts ISO (YYYY-MM-DD) and European (DD.MM.YYYY) dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayoutISO, DateLayoutEuropean} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// ToEuropeanDate formats as DD.MM.YYYY; the zero time renders empty.
func ToEuropeanDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}
	return date.Format(DateLayoutEuropean)
}

// CreationTimestamp renders t in UTC for CreDtTm.
func CreationTimestamp(t time.Time) string {
	return t.UTC().Format(DateLayoutCreation)
}

// DateOnly drops the clock part, keeping the location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar dates, ignoring clock and location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsWeekend checks if a date falls on a weekend (Saturday or Sunday)
func IsWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// NextBusinessDay returns the next business day after a given date
// If the date is a Friday, it returns the following Monday
// If the date is a Saturday, it returns the following Monday
// Otherwise it returns the next day
func NextBusinessDay(date time.Time) time.Time {
	switch date.Weekday() {
	case time.Friday:
		return date.AddDate(0, 0, 3)
	case time.Saturday:
		return date.AddDate(0, 0, 2)
	default:
		return date.AddDate(0, 0, 1)
	}
}
