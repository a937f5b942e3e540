package recurrence

import (
	"time"

	"hallbook/pkg/model"
)

// Occurrence is one concrete bookable window produced by expanding a time
// slot over a date range.
type Occurrence struct {
	SlotID    string
	HallID    string
	TeamID    string
	SlotType  string
	Date      time.Time
	StartTime string
	EndTime   string
}

// Expand materializes all occurrences of a slot inside [from, to]. Both
// bounds are inclusive and truncated to whole days. Inactive or suspended
// slots, excluded dates, and dates outside the slot's validity window
// produce nothing.
//
// Weekly slots occur on every matching weekday, biweekly on every second
// matching weekday counted from valid_from. Monthly slots occur on the
// same day of month as valid_from, clamped to the last day of shorter
// months. One-off slots occur exactly once, on valid_from.
func Expand(slot *model.TimeSlot, from, to time.Time) []Occurrence {
	if slot.Status != model.SlotStatusActive {
		return nil
	}

	start := model.DateOnly(from)
	end := model.DateOnly(to)
	if end.Before(start) {
		return nil
	}

	if validFrom := model.DateOnly(slot.ValidFrom); validFrom.After(start) {
		start = validFrom
	}
	if slot.ValidUntil != nil {
		if validUntil := model.DateOnly(*slot.ValidUntil); validUntil.Before(end) {
			end = validUntil
		}
	}

	if slot.RecurrenceType == model.RecurrenceOnce {
		date := model.DateOnly(slot.ValidFrom)
		if date.Before(start) || date.After(end) || slot.IsExcluded(date) {
			return nil
		}
		return emit(slot, date, nil)
	}

	var out []Occurrence
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		if !recursOn(slot, date) {
			continue
		}
		if slot.IsExcluded(date) {
			continue
		}
		out = emit(slot, date, out)
	}

	return out
}

// NextOccurrence returns the first occurrence on or after the given date,
// or nil when the slot never recurs again within the horizon.
func NextOccurrence(slot *model.TimeSlot, after time.Time, horizonDays int) *Occurrence {
	end := model.DateOnly(after).AddDate(0, 0, horizonDays)
	occs := Expand(slot, after, end)
	if len(occs) == 0 {
		return nil
	}
	return &occs[0]
}

func emit(slot *model.TimeSlot, date time.Time, out []Occurrence) []Occurrence {
	for _, seg := range segmentsOn(slot, date) {
		out = append(out, Occurrence{
			SlotID:    slot.ID,
			HallID:    slot.HallID,
			TeamID:    slot.TeamID,
			SlotType:  slot.SlotType,
			Date:      date,
			StartTime: seg.StartTime,
			EndTime:   seg.EndTime,
		})
	}
	return out
}

// segmentsOn resolves the bookable windows for a concrete date. Monthly
// and one-off slots land on whatever weekday the anchor dictates, so their
// standard window applies regardless of DayOfWeek.
func segmentsOn(slot *model.TimeSlot, date time.Time) []model.TimeSegment {
	if slot.UsesCustomTimes {
		return slot.CustomTimes[model.WeekdayOf(date)]
	}
	switch slot.RecurrenceType {
	case model.RecurrenceMonthly, model.RecurrenceOnce:
		if slot.StartTime != "" && slot.EndTime != "" {
			return []model.TimeSegment{{StartTime: slot.StartTime, EndTime: slot.EndTime}}
		}
		return nil
	default:
		return slot.SegmentsForDay(model.WeekdayOf(date))
	}
}

func recursOn(slot *model.TimeSlot, date time.Time) bool {
	anchor := model.DateOnly(slot.ValidFrom)

	switch slot.RecurrenceType {
	case model.RecurrenceWeekly:
		return len(segmentsOn(slot, date)) > 0
	case model.RecurrenceBiweekly:
		return len(segmentsOn(slot, date)) > 0 && weeksBetween(anchor, date)%2 == 0
	case model.RecurrenceMonthly:
		return date.Day() == clampDay(anchor.Day(), date)
	default:
		return false
	}
}

// weeksBetween counts whole calendar weeks (Monday-anchored) between two
// dates, so biweekly slots stay aligned regardless of which weekday the
// validity window opens on.
func weeksBetween(a, b time.Time) int {
	wa := startOfWeek(a)
	wb := startOfWeek(b)
	days := int(wb.Sub(wa).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days / 7
}

func startOfWeek(t time.Time) time.Time {
	d := model.DateOnly(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// clampDay pins a day-of-month to the length of the date's month, so a
// slot anchored on the 31st still recurs in 30-day months.
func clampDay(day int, in time.Time) int {
	last := time.Date(in.Year(), in.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
