package ledger

import (
	"testing"
	"time"

	"hallbook/pkg/model"
)

var testDate = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

func testLedger() *Ledger {
	hall := &model.Hall{
		ID:                       "hall-1",
		CourtCount:               2,
		SupportsParallelBookings: true,
	}
	courts := []*model.Court{
		{ID: "court-1", HallID: "hall-1", CourtNumber: 1, IsMainCourt: true},
		{ID: "court-2", HallID: "hall-1", CourtNumber: 2},
	}
	return New(hall, courts)
}

func confirmed(id, start, end string, courts []string, pct float64) *model.Booking {
	b := &model.Booking{
		ID:          id,
		HallID:      "hall-1",
		BookingDate: testDate,
		StartTime:   start,
		EndTime:     end,
		Status:      model.BookingConfirmed,
		CourtIDs:    courts,
	}
	if pct > 0 && pct < 100 {
		b.IsPartialCourt = true
		b.CourtPercentage = pct
	}
	return b
}

func TestOccupiedRanges_WholeHallCoversEveryCourt(t *testing.T) {
	l := testLedger()

	ranges := l.OccupiedRanges(testDate, []*model.Booking{
		confirmed("b1", "18:00", "19:30", nil, 0),
	})

	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges (one per court), got %d", len(ranges))
	}
	for _, r := range ranges {
		if r.Percentage != 100 {
			t.Errorf("whole-hall booking must occupy 100%%, got %v", r.Percentage)
		}
	}
	if ranges[0].CourtID != "court-1" || ranges[1].CourtID != "court-2" {
		t.Errorf("ranges not ordered by court: %s, %s", ranges[0].CourtID, ranges[1].CourtID)
	}
}

func TestOccupiedRanges_IgnoresNonHoldingBookings(t *testing.T) {
	l := testLedger()

	pending := confirmed("b1", "18:00", "19:30", nil, 0)
	pending.Status = model.BookingPending
	cancelled := confirmed("b2", "10:00", "11:00", nil, 0)
	cancelled.Status = model.BookingCancelled

	if ranges := l.OccupiedRanges(testDate, []*model.Booking{pending, cancelled}); len(ranges) != 0 {
		t.Errorf("pending and cancelled bookings must not occupy capacity, got %d ranges", len(ranges))
	}
}

func TestFitsWithin_PartialShares(t *testing.T) {
	l := testLedger()

	existing := []*model.Booking{
		confirmed("b1", "18:00", "19:30", []string{"court-1"}, 60),
	}
	candidate := confirmed("", "18:30", "20:00", []string{"court-1"}, 40)

	if !l.FitsWithin(candidate, l.Overlapping(candidate, existing), true) {
		t.Error("60 + 40 must fit within 100")
	}
}

func TestFitsWithin_RejectsOverBudget(t *testing.T) {
	l := testLedger()

	existing := []*model.Booking{
		confirmed("b1", "18:00", "19:30", []string{"court-1"}, 60),
		confirmed("b2", "18:00", "19:00", []string{"court-1"}, 40),
	}
	candidate := confirmed("", "18:30", "20:00", []string{"court-1"}, 10)

	if l.FitsWithin(candidate, l.Overlapping(candidate, existing), true) {
		t.Error("60 + 40 + 10 exceeds 100 and must not fit")
	}
}

func TestFitsWithin_BudgetRecoversAfterRangeEnds(t *testing.T) {
	l := testLedger()

	// b2 ends at 18:00, before the candidate starts.
	existing := []*model.Booking{
		confirmed("b1", "17:00", "19:30", []string{"court-1"}, 60),
		confirmed("b2", "17:00", "18:00", []string{"court-1"}, 40),
	}
	candidate := confirmed("", "18:00", "19:30", []string{"court-1"}, 40)

	if !l.FitsWithin(candidate, l.Overlapping(candidate, existing), true) {
		t.Error("capacity freed before the candidate window must be available again")
	}
}

func TestFitsWithin_SharingDisallowed(t *testing.T) {
	l := testLedger()

	existing := []*model.Booking{
		confirmed("b1", "18:00", "19:30", []string{"court-1"}, 30),
	}
	candidate := confirmed("", "18:30", "20:00", []string{"court-1"}, 30)

	if l.FitsWithin(candidate, l.Overlapping(candidate, existing), false) {
		t.Error("any overlap is a conflict when sharing is off")
	}
}

func TestFitsWithin_WholeHallCandidateNeverShares(t *testing.T) {
	l := testLedger()

	existing := []*model.Booking{
		confirmed("b1", "18:00", "19:30", []string{"court-2"}, 20),
	}
	candidate := confirmed("", "18:30", "20:00", nil, 0)

	if l.FitsWithin(candidate, l.Overlapping(candidate, existing), true) {
		t.Error("a whole-hall candidate cannot share with any overlapping booking")
	}
}

func TestOverlapping_DisjointCourtsDoNotContest(t *testing.T) {
	l := testLedger()

	existing := []*model.Booking{
		confirmed("b1", "18:00", "19:30", []string{"court-2"}, 0),
	}
	candidate := confirmed("", "18:30", "20:00", []string{"court-1"}, 0)

	if got := l.Overlapping(candidate, existing); len(got) != 0 {
		t.Errorf("bookings on disjoint courts must not overlap, got %d", len(got))
	}
}

func TestOverlapping_BackToBackIsNotOverlap(t *testing.T) {
	l := testLedger()

	existing := []*model.Booking{
		confirmed("b1", "17:00", "18:00", []string{"court-1"}, 0),
	}
	candidate := confirmed("", "18:00", "19:00", []string{"court-1"}, 0)

	if got := l.Overlapping(candidate, existing); len(got) != 0 {
		t.Errorf("touching windows must not overlap, got %d", len(got))
	}
}

func TestFreeWindows(t *testing.T) {
	l := testLedger()

	bookings := []*model.Booking{
		confirmed("b1", "10:00", "12:00", []string{"court-1"}, 0),
		confirmed("b2", "18:00", "20:00", []string{"court-1"}, 0),
	}

	windows := l.FreeWindows(testDate, bookings, "08:00", "22:00")

	var court1 []FreeWindow
	for _, w := range windows {
		if w.CourtID == "court-1" {
			court1 = append(court1, w)
		}
	}

	want := []FreeWindow{
		{CourtID: "court-1", StartTime: "08:00", EndTime: "10:00"},
		{CourtID: "court-1", StartTime: "12:00", EndTime: "18:00"},
		{CourtID: "court-1", StartTime: "20:00", EndTime: "22:00"},
	}
	if len(court1) != len(want) {
		t.Fatalf("expected %d windows on court-1, got %d: %+v", len(want), len(court1), court1)
	}
	for i, w := range court1 {
		if w != want[i] {
			t.Errorf("window %d: got %+v, want %+v", i, w, want[i])
		}
	}

	// court-2 is fully free.
	var court2 []FreeWindow
	for _, w := range windows {
		if w.CourtID == "court-2" {
			court2 = append(court2, w)
		}
	}
	if len(court2) != 1 || court2[0].StartTime != "08:00" || court2[0].EndTime != "22:00" {
		t.Errorf("court-2 must be free all day, got %+v", court2)
	}
}
