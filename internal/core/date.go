// Package core holds the transaction domain model, the localized date
// grammar, and the summary/aggregation logic.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the calendar convention the ledger was designed
// around. Day-boundary math is anchored to this zone unless a caller
// injects another location.
const DefaultTimezone = "Asia/Taipei"

// localDatePattern matches the primary textual grammar, e.g. 2025年07月06日.
var localDatePattern = regexp.MustCompile(`^(\d+)年(\d+)月(\d+)日$`)

// Date is a calendar day without a time component.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseLocalDate converts a textual date into a Date. It accepts the
// localized grammar (YYYY年MM月DD日), ISO YYYY-MM-DD prefixes as stored
// by the remote collection, and a couple of generic layouts as a last
// resort. Out-of-range months or days are rejected with ErrInvalidDate;
// callers that must not fail substitute the current day themselves.
func ParseLocalDate(text string) (Date, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if m := localDatePattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return newDate(year, month, day)
	}

	// ISO prefix: "2025-07-06", "2025-07-06T12:00:00Z", ...
	if len(s) >= 10 {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
		}
	}

	for _, layout := range []string{"2006/01/02", "2006-1-2", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
		}
	}

	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, text)
}

func newDate(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > daysIn(year, month) {
		return Date{}, fmt.Errorf("%w: day %d", ErrInvalidDate, day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// FormatLocalDate renders the primary grammar with zero-padded month and day.
func FormatLocalDate(d Date) string {
	return fmt.Sprintf("%d年%02d月%02d日", d.Year, d.Month, d.Day)
}

func daysIn(year, month int) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Calendar fixes the timezone convention for day-boundary math. Instants
// are anchored to local noon so that converting a boundary across zones
// cannot shift it onto the neighbouring day.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar builds a calendar for the given location. A nil location
// falls back to the default timezone convention.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = defaultLocation()
	}
	return Calendar{loc: loc, now: time.Now}
}

// NewCalendarAt is NewCalendar with an injected clock, for tests.
func NewCalendarAt(loc *time.Location, now func() time.Time) Calendar {
	c := NewCalendar(loc)
	if now != nil {
		c.now = now
	}
	return c
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.FixedZone("UTC+8", 8*60*60)
	}
	return loc
}

// Location returns the calendar's timezone.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return defaultLocation()
	}
	return c.loc
}

// At returns the noon instant of the given calendar day.
func (c Calendar) At(d Date) time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 12, 0, 0, 0, c.Location())
}

// Today returns the current calendar day in the calendar's zone.
func (c Calendar) Today() Date {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	t := now().In(c.Location())
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// DayOf maps an instant onto its calendar day in the calendar's zone.
func (c Calendar) DayOf(t time.Time) Date {
	local := t.In(c.Location())
	return Date{Year: local.Year(), Month: int(local.Month()), Day: local.Day()}
}

// DaysInMonth returns the number of calendar days in year/month.
func (c Calendar) DaysInMonth(year, month int) int {
	return daysIn(year, month)
}

// MonthBounds returns the inclusive noon-anchored instants of the first
// and last day of the month.
func (c Calendar) MonthBounds(year, month int) (time.Time, time.Time) {
	first := c.At(Date{Year: year, Month: month, Day: 1})
	last := c.At(Date{Year: year, Month: month, Day: daysIn(year, month)})
	return first, last
}

// YearBounds returns the inclusive noon-anchored instants of Jan 1 and Dec 31.
func (c Calendar) YearBounds(year int) (time.Time, time.Time) {
	first := c.At(Date{Year: year, Month: 1, Day: 1})
	last := c.At(Date{Year: year, Month: 12, Day: 31})
	return first, last
}
