// Package datetime builds zone-aware time values and rejects any construction that
// does not yield a valid date-time.
//
// Every constructor mirrors a plain time primitive (ISO text, calendar fields, a
// layout, epoch milliseconds or an existing time.Time) and returns an
// *InvalidDateTimeError when the result is not usable.
package datetime

import (
	"fmt"
	"strings"
	"time"
)

// maxMillis bounds FromMillis to ±100,000,000 days around the epoch.
const maxMillis = 8.64e15

// Options controls how input without its own offset is interpreted.
type Options struct {
	// Zone names the zone of the result, see LoadZone. Empty means the system zone.
	Zone string
	// System is the zone "system" refers to. Nil means time.Local.
	System *time.Location
}

// ZoneOptions controls SetZone.
type ZoneOptions struct {
	// KeepLocalTime keeps the wall-clock fields and changes the instant.
	KeepLocalTime bool
	System        *time.Location
}

// Fields are the calendar units accepted by FromObject. A zero Month or Day means 1.
type Fields struct {
	Year        int
	Month       time.Month
	Day         int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
}

var isoLayoutsWithOffset = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"20060102T150405Z07:00",
	"20060102T150405.999999999Z07:00",
}

var isoLayoutsLocal = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
	"2006-01",
	"2006",
	"20060102T150405",
	"20060102T1504",
	"20060102",
}

func (o Options) location() (*time.Location, error) {
	loc, err := LoadZone(o.Zone, o.System)
	if err != nil {
		return nil, invalid(ReasonUnsupportedZone, fmt.Sprintf("the zone %q is not supported", o.Zone), err)
	}
	return loc, nil
}

// FromISO parses an ISO 8601 date or date-time. Text carrying an offset is
// converted to the requested zone; text without one is read in that zone.
func FromISO(text string, opts Options) (time.Time, error) {
	loc, err := opts.location()
	if err != nil {
		return time.Time{}, err
	}

	var lastErr, rangeErr error
	for _, layout := range isoLayoutsWithOffset {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t.In(loc), nil
		}
		lastErr = err
		if isRangeError(err) {
			rangeErr = err
		}
	}
	for _, layout := range isoLayoutsLocal {
		t, err := time.ParseInLocation(layout, text, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
		if isRangeError(err) {
			rangeErr = err
		}
	}

	if rangeErr != nil {
		return time.Time{}, invalid(ReasonOutOfRange, fmt.Sprintf("the input %q has a unit out of range", text), rangeErr)
	}
	return time.Time{}, invalid(ReasonUnparsable, fmt.Sprintf("the input %q can't be parsed as ISO 8601", text), lastErr)
}

// FromObject builds a date-time from calendar fields in the requested zone.
// Fields are range-checked instead of normalised, so February 30 is rejected.
func FromObject(f Fields, opts Options) (time.Time, error) {
	loc, err := opts.location()
	if err != nil {
		return time.Time{}, err
	}

	if f.Month == 0 {
		f.Month = time.January
	}
	if f.Day == 0 {
		f.Day = 1
	}

	checks := []struct {
		unit     string
		value    int
		min, max int
	}{
		{"month", int(f.Month), 1, 12},
		{"day", f.Day, 1, daysIn(f.Year, f.Month)},
		{"hour", f.Hour, 0, 23},
		{"minute", f.Minute, 0, 59},
		{"second", f.Second, 0, 59},
		{"millisecond", f.Millisecond, 0, 999},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return time.Time{}, invalid(ReasonOutOfRange,
				fmt.Sprintf("you specified %d (of type number) as a %s, which is invalid", c.value, c.unit), nil)
		}
	}

	return time.Date(f.Year, f.Month, f.Day, f.Hour, f.Minute, f.Second, f.Millisecond*int(time.Millisecond), loc), nil
}

// FromFormat parses text with a Go layout. Layouts without zone information are read
// in the requested zone; layouts with it are converted to that zone.
func FromFormat(text, layout string, opts Options) (time.Time, error) {
	loc, err := opts.location()
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.ParseInLocation(layout, text, loc)
	if err != nil {
		reason := ReasonUnparsable
		if isRangeError(err) {
			reason = ReasonOutOfRange
		}
		return time.Time{}, invalid(reason, fmt.Sprintf("the input %q can't be parsed as format %s", text, layout), err)
	}
	return t.In(loc), nil
}

// FromMillis converts epoch milliseconds to a date-time in the requested zone.
func FromMillis(ms int64, opts Options) (time.Time, error) {
	if ms > maxMillis || ms < -maxMillis {
		return time.Time{}, invalid(ReasonOutOfRange, fmt.Sprintf("%d milliseconds is outside the supported range", ms), nil)
	}
	loc, err := opts.location()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).In(loc), nil
}

// FromTime validates an existing value and expresses it in the requested zone.
func FromTime(t time.Time, opts Options) (time.Time, error) {
	if err := Validate(t); err != nil {
		return time.Time{}, err
	}
	loc, err := opts.location()
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}

// SetZone moves t to zone, either keeping the instant or, with KeepLocalTime, the wall clock.
func SetZone(t time.Time, zone string, opts ZoneOptions) (time.Time, error) {
	if err := Validate(t); err != nil {
		return time.Time{}, err
	}
	loc, err := LoadZone(zone, opts.System)
	if err != nil {
		return time.Time{}, invalid(ReasonUnsupportedZone, fmt.Sprintf("the zone %q is not supported", zone), err)
	}
	if opts.KeepLocalTime {
		return KeepLocal(t, loc), nil
	}
	return t.In(loc), nil
}

// Validate rejects the zero time, which stands for "no value" throughout this module.
func Validate(t time.Time) error {
	if t.IsZero() {
		return invalid(ReasonInvalidInput, "the time value is unset", nil)
	}
	return nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isRangeError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "out of range")
}
