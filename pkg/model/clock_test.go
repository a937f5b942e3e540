package model

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "morning", input: "09:30", want: 570},
		{name: "evening", input: "21:45", want: 1305},
		{name: "missing zero pad", input: "9:30", wantErr: true},
		{name: "out of range hour", input: "24:00", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for _, minutes := range []int{0, 30, 570, 1305, 1439} {
		s := FormatClock(minutes)
		got, err := ParseClock(s)
		if err != nil {
			t.Fatalf("FormatClock(%d) produced unparseable %q: %v", minutes, s, err)
		}
		if got != minutes {
			t.Errorf("round trip of %d gave %d", minutes, got)
		}
	}
}

func TestClockRangeMinutes(t *testing.T) {
	got, err := ClockRangeMinutes("18:00", "19:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 90 {
		t.Errorf("got %d, want 90", got)
	}

	if _, err := ClockRangeMinutes("19:00", "18:00"); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := ClockRangeMinutes("18:00", "18:00"); err == nil {
		t.Error("expected error for zero-length range")
	}
}

func TestClockOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{name: "identical", s1: "18:00", e1: "19:00", s2: "18:00", e2: "19:00", want: true},
		{name: "partial overlap", s1: "18:00", e1: "19:00", s2: "18:30", e2: "20:00", want: true},
		{name: "contained", s1: "18:00", e1: "21:00", s2: "19:00", e2: "20:00", want: true},
		{name: "back to back", s1: "18:00", e1: "19:00", s2: "19:00", e2: "20:00", want: false},
		{name: "disjoint", s1: "08:00", e1: "09:00", s2: "19:00", e2: "20:00", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClockOverlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("ClockOverlaps(%s-%s, %s-%s) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
		})
	}
}

func TestWeekdayOf(t *testing.T) {
	// 2025-06-02 is a Monday.
	d := time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	if got := WeekdayOf(d); got != Monday {
		t.Errorf("got %s, want monday", got)
	}
	if got := WeekdayOf(d.AddDate(0, 0, 5)); got != Saturday {
		t.Errorf("got %s, want saturday", got)
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	d := time.Date(2025, 6, 2, 23, 59, 0, 0, loc)
	got := DateOnly(d)
	if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
		t.Errorf("DateOnly did not truncate to UTC midnight: %v", got)
	}
	if got.Day() != 2 {
		t.Errorf("DateOnly changed the calendar day: %v", got)
	}
}
