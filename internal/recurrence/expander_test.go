package recurrence

import (
	"testing"
	"time"

	"hallbook/pkg/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weeklySlot() *model.TimeSlot {
	return &model.TimeSlot{
		ID:             "slot-1",
		HallID:         "hall-1",
		TeamID:         "team-1",
		Title:          "U16 Training",
		DayOfWeek:      model.Tuesday,
		StartTime:      "18:00",
		EndTime:        "19:30",
		RecurrenceType: model.RecurrenceWeekly,
		ValidFrom:      date(2025, 6, 1),
		Status:         model.SlotStatusActive,
		SlotType:       model.SlotTypeTraining,
	}
}

func TestExpand_Weekly(t *testing.T) {
	slot := weeklySlot()

	// June 2025 Tuesdays: 3, 10, 17, 24.
	occs := Expand(slot, date(2025, 6, 1), date(2025, 6, 30))

	if len(occs) != 4 {
		t.Fatalf("expected 4 occurrences, got %d", len(occs))
	}

	wantDays := []int{3, 10, 17, 24}
	for i, occ := range occs {
		if occ.Date.Day() != wantDays[i] {
			t.Errorf("occurrence %d: expected day %d, got %d", i, wantDays[i], occ.Date.Day())
		}
		if occ.StartTime != "18:00" || occ.EndTime != "19:30" {
			t.Errorf("occurrence %d: wrong window %s-%s", i, occ.StartTime, occ.EndTime)
		}
	}
}

func TestExpand_RespectsValidityWindow(t *testing.T) {
	slot := weeklySlot()
	until := date(2025, 6, 15)
	slot.ValidUntil = &until

	occs := Expand(slot, date(2025, 5, 1), date(2025, 7, 31))

	// Only Tuesdays between 2025-06-01 and 2025-06-15: 3rd and 10th.
	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences, got %d", len(occs))
	}
	if occs[0].Date.Day() != 3 || occs[1].Date.Day() != 10 {
		t.Errorf("got days %d and %d, want 3 and 10", occs[0].Date.Day(), occs[1].Date.Day())
	}
}

func TestExpand_SkipsExcludedDates(t *testing.T) {
	slot := weeklySlot()
	slot.ExcludedDates = []string{"2025-06-10", "2025-06-24"}

	occs := Expand(slot, date(2025, 6, 1), date(2025, 6, 30))

	if len(occs) != 2 {
		t.Fatalf("expected 2 occurrences after exclusions, got %d", len(occs))
	}
	if occs[0].Date.Day() != 3 || occs[1].Date.Day() != 17 {
		t.Errorf("got days %d and %d, want 3 and 17", occs[0].Date.Day(), occs[1].Date.Day())
	}
}

func TestExpand_Biweekly(t *testing.T) {
	slot := weeklySlot()
	slot.RecurrenceType = model.RecurrenceBiweekly
	slot.ValidFrom = date(2025, 6, 3) // a Tuesday

	occs := Expand(slot, date(2025, 6, 1), date(2025, 7, 15))

	// Every second Tuesday from June 3rd: 3, 17, 1 (July), 15 (July).
	wantDates := []string{"2025-06-03", "2025-06-17", "2025-07-01", "2025-07-15"}
	if len(occs) != len(wantDates) {
		t.Fatalf("expected %d occurrences, got %d", len(wantDates), len(occs))
	}
	for i, occ := range occs {
		if got := model.FormatDate(occ.Date); got != wantDates[i] {
			t.Errorf("occurrence %d: got %s, want %s", i, got, wantDates[i])
		}
	}
}

func TestExpand_Monthly(t *testing.T) {
	slot := weeklySlot()
	slot.RecurrenceType = model.RecurrenceMonthly
	slot.ValidFrom = date(2025, 6, 10)

	occs := Expand(slot, date(2025, 6, 1), date(2025, 8, 31))

	// Same day of month each month.
	wantDates := []string{"2025-06-10", "2025-07-10", "2025-08-10"}
	if len(occs) != len(wantDates) {
		t.Fatalf("expected %d occurrences, got %d", len(wantDates), len(occs))
	}
	for i, occ := range occs {
		if got := model.FormatDate(occ.Date); got != wantDates[i] {
			t.Errorf("occurrence %d: got %s, want %s", i, got, wantDates[i])
		}
	}
}

func TestExpand_MonthlyClampsShortMonths(t *testing.T) {
	slot := weeklySlot()
	slot.RecurrenceType = model.RecurrenceMonthly
	slot.ValidFrom = date(2025, 1, 31)

	occs := Expand(slot, date(2025, 1, 1), date(2025, 4, 30))

	// The 31st clamps to the last day of February and April.
	wantDates := []string{"2025-01-31", "2025-02-28", "2025-03-31", "2025-04-30"}
	if len(occs) != len(wantDates) {
		t.Fatalf("expected %d occurrences, got %d", len(wantDates), len(occs))
	}
	for i, occ := range occs {
		if got := model.FormatDate(occ.Date); got != wantDates[i] {
			t.Errorf("occurrence %d: got %s, want %s", i, got, wantDates[i])
		}
	}
}

func TestExpand_Once(t *testing.T) {
	slot := weeklySlot()
	slot.RecurrenceType = model.RecurrenceOnce
	slot.ValidFrom = date(2025, 6, 5)

	occs := Expand(slot, date(2025, 6, 1), date(2025, 8, 31))

	if len(occs) != 1 {
		t.Fatalf("expected a single occurrence, got %d", len(occs))
	}
	if got := model.FormatDate(occs[0].Date); got != "2025-06-05" {
		t.Errorf("got %s, want 2025-06-05", got)
	}

	// Outside the requested range nothing is produced.
	if occs := Expand(slot, date(2025, 7, 1), date(2025, 8, 31)); len(occs) != 0 {
		t.Errorf("one-off slot outside range must not expand, got %d", len(occs))
	}
}

func TestExpand_CustomTimes(t *testing.T) {
	slot := weeklySlot()
	slot.DayOfWeek = ""
	slot.StartTime = ""
	slot.EndTime = ""
	slot.UsesCustomTimes = true
	slot.CustomTimes = map[model.Weekday][]model.TimeSegment{
		model.Monday: {{StartTime: "17:00", EndTime: "18:30"}},
		model.Friday: {
			{StartTime: "16:00", EndTime: "17:30"},
			{StartTime: "19:00", EndTime: "20:30"},
		},
	}

	// Week of 2025-06-02 (Mon) .. 2025-06-08 (Sun).
	occs := Expand(slot, date(2025, 6, 2), date(2025, 6, 8))

	if len(occs) != 3 {
		t.Fatalf("expected 3 occurrences (1 Monday + 2 Friday segments), got %d", len(occs))
	}
	if occs[0].StartTime != "17:00" {
		t.Errorf("Monday segment: got %s", occs[0].StartTime)
	}
	if occs[1].StartTime != "16:00" || occs[2].StartTime != "19:00" {
		t.Errorf("Friday segments: got %s and %s", occs[1].StartTime, occs[2].StartTime)
	}
}

func TestExpand_InactiveSlotYieldsNothing(t *testing.T) {
	slot := weeklySlot()
	slot.Status = model.SlotStatusSuspended

	if occs := Expand(slot, date(2025, 6, 1), date(2025, 6, 30)); len(occs) != 0 {
		t.Errorf("suspended slot must not expand, got %d occurrences", len(occs))
	}
}

func TestNextOccurrence(t *testing.T) {
	slot := weeklySlot()

	occ := NextOccurrence(slot, date(2025, 6, 4), 30)
	if occ == nil {
		t.Fatal("expected an occurrence")
	}
	if got := model.FormatDate(occ.Date); got != "2025-06-10" {
		t.Errorf("got %s, want 2025-06-10", got)
	}

	until := date(2025, 6, 5)
	slot.ValidUntil = &until
	if occ := NextOccurrence(slot, date(2025, 6, 6), 30); occ != nil {
		t.Errorf("expected nil after validity window, got %v", occ.Date)
	}
}
