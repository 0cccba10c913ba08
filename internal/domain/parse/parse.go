// Package parse provides ordered first-success parser chains for the loose
// date, time, and duration formats seen in kiosk exports.
//
// Failure is a sentinel, never a raised fault: a chain that exhausts its
// parsers reports ok=false and the caller substitutes null for the field.
package parse

import (
	"strconv"
	"strings"
	"time"
)

// Layouts understood by the chains below.
const (
	LayoutISODate      = "2006-01-02"
	LayoutDayMonthYear = "02/01/2006"
	LayoutISOSeconds   = "2006-01-02T15:04:05"
	LayoutSpaceSeconds = "2006-01-02 15:04:05"
)

// Parser attempts to parse s. ok reports success.
type Parser[T any] func(s string) (T, bool)

// First combines parsers into a chain: each is tried in order and the first
// success wins.
func First[T any](parsers ...Parser[T]) Parser[T] {
	return func(s string) (T, bool) {
		for _, p := range parsers {
			if v, ok := p(s); ok {
				return v, true
			}
		}
		var zero T
		return zero, false
	}
}

// Layout returns a parser for a single time layout interpreted in loc.
func Layout(layout string, loc *time.Location) Parser[time.Time] {
	return func(s string) (time.Time, bool) {
		t, err := time.ParseInLocation(layout, s, loc)
		return t, err == nil
	}
}

// Zoned returns a parser for a layout that carries its own zone offset.
func Zoned(layout string) Parser[time.Time] {
	return func(s string) (time.Time, bool) {
		t, err := time.Parse(layout, s)
		return t, err == nil
	}
}

// Date is the calendar-date chain: ISO first, then day/month/year.
func Date(loc *time.Location) Parser[time.Time] {
	return First(
		Layout(LayoutISODate, loc),
		Layout(LayoutDayMonthYear, loc),
	)
}

// WallClock is the combined Date+Time chain, interpreted as wall-clock time
// in loc. Input is the raw Date and Time strings joined by a single space.
func WallClock(loc *time.Location) Parser[time.Time] {
	return First(
		Layout(LayoutSpaceSeconds, loc),
		Layout(LayoutDayMonthYear+" 15:04:05", loc),
	)
}

// Timestamp is the freshness-marker chain used for edit metadata. Zoned
// forms win over naive ones; naive forms are read in loc.
func Timestamp(loc *time.Location) Parser[time.Time] {
	return First(
		Zoned(time.RFC3339Nano),
		Zoned(time.RFC3339),
		Layout(LayoutISOSeconds, loc),
		Layout(LayoutSpaceSeconds, loc),
	)
}

// DurationSeconds parses an H:MM:SS duration into total whole seconds.
// Hours may exceed 24; minutes and seconds must be zero-padded two-digit
// values below 60.
func DurationSeconds(s string) (int64, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	h, ok := digits(parts[0], 1)
	if !ok {
		return 0, false
	}
	m, ok := digits(parts[1], 2)
	if !ok || m > 59 {
		return 0, false
	}
	sec, ok := digits(parts[2], 2)
	if !ok || sec > 59 {
		return 0, false
	}
	return h*3600 + m*60 + sec, true
}

// digits parses a non-negative integer of at least minLen digits.
func digits(s string, minLen int) (int64, bool) {
	if len(s) < minLen {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
