package model

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a lowercase day name ("monday" .. "sunday"), matching the
// representation used in time slot definitions and hall operating hours.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func WeekdayOf(t time.Time) Weekday {
	return Weekday(strings.ToLower(t.Weekday().String()))
}

func (w Weekday) Valid() bool {
	for _, d := range AllWeekdays {
		if w == d {
			return true
		}
	}
	return false
}

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// ParseClock parses a zero-padded "HH:MM" clock time into minutes since
// midnight. Unpadded input is rejected: overlap checks compare these
// strings lexicographically, so "9:00" would sort after "10:00".
func ParseClock(s string) (int, error) {
	if len(s) != len(clockLayout) || s[2] != ':' {
		return 0, fmt.Errorf("invalid clock time %q: must be zero-padded HH:MM", s)
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockRangeMinutes returns end-start in minutes. Both arguments must be
// valid "HH:MM" strings with start < end.
func ClockRangeMinutes(start, end string) (int, error) {
	s, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if e <= s {
		return 0, fmt.Errorf("end time %s must be after start time %s", end, start)
	}
	return e - s, nil
}

// ClockOverlaps reports whether [start1,end1) and [start2,end2) intersect.
// Zero-padded "HH:MM" strings compare correctly as plain strings.
func ClockOverlaps(start1, end1, start2, end2 string) bool {
	return start1 < end2 && end1 > start2
}

// DateOnly truncates t to midnight UTC so booking dates compare by day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
