package conflict

import (
	"testing"
	"time"

	"hallbook/internal/ledger"
	"hallbook/pkg/model"
)

var testDate = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

func singleHallResolver() (*Resolver, Capabilities) {
	hall := &model.Hall{ID: "hall-1", CourtCount: 1}
	courts := []*model.Court{{ID: "court-1", HallID: "hall-1", CourtNumber: 1, IsMainCourt: true}}
	return NewResolver(ledger.New(hall, courts)), Capabilities{MainCourtID: "court-1"}
}

func parallelHallResolver() (*Resolver, Capabilities) {
	hall := &model.Hall{ID: "hall-1", CourtCount: 3, SupportsParallelBookings: true}
	courts := []*model.Court{
		{ID: "court-1", HallID: "hall-1", CourtNumber: 1, IsMainCourt: true},
		{ID: "court-2", HallID: "hall-1", CourtNumber: 2},
		{ID: "court-3", HallID: "hall-1", CourtNumber: 3},
	}
	return NewResolver(ledger.New(hall, courts)), Capabilities{AllowsSharing: true, MainCourtID: "court-1"}
}

func booking(id, start, end string, priority int, courts []string, createdAt time.Time) *model.Booking {
	return &model.Booking{
		ID:          id,
		HallID:      "hall-1",
		BookingDate: testDate,
		StartTime:   start,
		EndTime:     end,
		Priority:    priority,
		Status:      model.BookingConfirmed,
		CourtIDs:    courts,
		CreatedAt:   createdAt,
	}
}

func TestEvaluate_AdmitWhenFree(t *testing.T) {
	r, caps := singleHallResolver()

	candidate := booking("", "18:00", "19:30", 0, nil, time.Now())
	d := r.Evaluate(candidate, nil, caps)

	if d.Outcome != OutcomeAdmit {
		t.Errorf("empty hall must admit, got %v (%s)", d.Outcome, d.Reason)
	}
}

func TestEvaluate_GamePreemptsTraining(t *testing.T) {
	r, caps := singleHallResolver()

	training := booking("b1", "18:00", "19:30", 0, nil, time.Now())
	game := booking("", "18:30", "20:00", 10, nil, time.Now())

	d := r.Evaluate(game, []*model.Booking{training}, caps)

	if d.Outcome != OutcomePreempt {
		t.Fatalf("higher priority must preempt, got %v (%s)", d.Outcome, d.Reason)
	}
	if len(d.Victims) != 1 || d.Victims[0].ID != "b1" {
		t.Errorf("expected b1 as the victim, got %+v", d.Victims)
	}
}

func TestEvaluate_EqualPriorityRejects(t *testing.T) {
	r, caps := singleHallResolver()

	existing := booking("b1", "18:00", "19:30", 10, nil, time.Now())
	candidate := booking("", "18:30", "20:00", 10, nil, time.Now())

	d := r.Evaluate(candidate, []*model.Booking{existing}, caps)

	if d.Outcome != OutcomeReject {
		t.Errorf("equal priority must never preempt, got %v", d.Outcome)
	}
}

func TestEvaluate_LowerPriorityRejects(t *testing.T) {
	r, caps := singleHallResolver()

	existing := booking("b1", "18:00", "19:30", 10, nil, time.Now())
	candidate := booking("", "18:30", "20:00", 0, nil, time.Now())

	d := r.Evaluate(candidate, []*model.Booking{existing}, caps)

	if d.Outcome != OutcomeReject {
		t.Errorf("lower priority must reject, got %v", d.Outcome)
	}
}

func TestEvaluate_MixedPrioritiesNeedFullOutrank(t *testing.T) {
	r, caps := singleHallResolver()

	low := booking("b1", "18:00", "19:00", 0, nil, time.Now())
	high := booking("b2", "19:00", "20:00", 20, nil, time.Now())
	candidate := booking("", "18:30", "19:30", 10, nil, time.Now())

	d := r.Evaluate(candidate, []*model.Booking{low, high}, caps)

	if d.Outcome != OutcomeReject {
		t.Errorf("candidate must outrank every conflicting booking, got %v", d.Outcome)
	}
}

func TestEvaluate_VictimOrdering(t *testing.T) {
	r, caps := singleHallResolver()

	older := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

	v1 := booking("b1", "18:00", "19:00", 5, nil, newer)
	v2 := booking("b2", "18:30", "19:30", 0, nil, newer)
	v3 := booking("b3", "19:00", "20:00", 0, nil, older)
	candidate := booking("", "18:00", "20:00", 10, nil, time.Now())

	d := r.Evaluate(candidate, []*model.Booking{v1, v2, v3}, caps)

	if d.Outcome != OutcomePreempt {
		t.Fatalf("expected preempt, got %v", d.Outcome)
	}
	gotOrder := []string{d.Victims[0].ID, d.Victims[1].ID, d.Victims[2].ID}
	wantOrder := []string{"b3", "b2", "b1"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("victim order: got %v, want %v", gotOrder, wantOrder)
		}
	}
}

func TestEvaluate_ParallelCourtsAdmit(t *testing.T) {
	r, caps := parallelHallResolver()

	existing := booking("b1", "18:00", "19:30", 0, []string{"court-2"}, time.Now())
	candidate := booking("", "18:00", "19:30", 0, []string{"court-3"}, time.Now())

	d := r.Evaluate(candidate, []*model.Booking{existing}, caps)

	if d.Outcome != OutcomeAdmit {
		t.Errorf("disjoint courts in a parallel hall must admit, got %v (%s)", d.Outcome, d.Reason)
	}
}

func TestEvaluate_MainCourtDisablesSharing(t *testing.T) {
	r, caps := parallelHallResolver()

	existing := booking("b1", "18:00", "19:30", 0, []string{"court-1"}, time.Now())
	existing.IsPartialCourt = true
	existing.CourtPercentage = 50

	candidate := booking("", "18:00", "19:30", 0, []string{"court-1"}, time.Now())
	candidate.IsPartialCourt = true
	candidate.CourtPercentage = 50

	d := r.Evaluate(candidate, []*model.Booking{existing}, caps)

	if d.Outcome != OutcomeReject {
		t.Errorf("main court overlap must not share even at 50+50, got %v", d.Outcome)
	}
}

func TestEvaluate_SideCourtsShareWithinBudget(t *testing.T) {
	r, caps := parallelHallResolver()

	existing := booking("b1", "18:00", "19:30", 0, []string{"court-2"}, time.Now())
	existing.IsPartialCourt = true
	existing.CourtPercentage = 50

	candidate := booking("", "18:00", "19:30", 0, []string{"court-2"}, time.Now())
	candidate.IsPartialCourt = true
	candidate.CourtPercentage = 50

	d := r.Evaluate(candidate, []*model.Booking{existing}, caps)

	if d.Outcome != OutcomeAdmit {
		t.Errorf("side court at 50+50 must share, got %v (%s)", d.Outcome, d.Reason)
	}
}

func TestEvaluate_GameBufferWidensWindow(t *testing.T) {
	r, caps := singleHallResolver()
	caps.GameBufferMin = 30

	// Training ends at 18:00, game starts at 18:15. The 30 minute setup
	// buffer makes them contest the hall.
	training := booking("b1", "17:00", "18:00", 0, nil, time.Now())
	game := booking("", "18:15", "19:45", 10, nil, time.Now())
	game.GameID = "507f1f77bcf86cd799439099"

	d := r.Evaluate(game, []*model.Booking{training}, caps)

	if d.Outcome != OutcomePreempt {
		t.Errorf("game buffer must widen the contested window, got %v", d.Outcome)
	}
}
