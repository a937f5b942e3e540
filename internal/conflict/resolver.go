// Package conflict decides what happens when a candidate booking contests
// capacity already held by others: admit, reject, or preempt.
package conflict

import (
	"sort"

	"hallbook/internal/ledger"
	"hallbook/pkg/model"
)

type Outcome int

const (
	OutcomeAdmit Outcome = iota
	OutcomeReject
	OutcomePreempt
)

// Decision is the resolver verdict. Victims is populated only for
// OutcomePreempt, ordered lowest priority first with ties broken by
// earliest creation, so the oldest lowest-priority booking yields first.
type Decision struct {
	Outcome Outcome
	Reason  string
	Victims []*model.Booking
}

// Capabilities carries the hall facts the resolver needs. MainCourtID is
// the ID of court 1; an overlap touching the main court disables sharing
// because the dividing curtains cannot isolate it.
type Capabilities struct {
	AllowsSharing bool
	MainCourtID   string
	GameBufferMin int
}

type Resolver struct {
	ledger *ledger.Ledger
}

func NewResolver(l *ledger.Ledger) *Resolver {
	return &Resolver{ledger: l}
}

// Evaluate runs the admission decision for a candidate against the
// holding bookings of its date. Game bookings claim a setup buffer on
// both sides of their window before overlap detection.
func (r *Resolver) Evaluate(candidate *model.Booking, holding []*model.Booking, caps Capabilities) Decision {
	probe := candidate
	if candidate.IsGameBooking() && caps.GameBufferMin > 0 {
		probe = buffered(candidate, caps.GameBufferMin)
	}

	overlapping := r.ledger.Overlapping(probe, holding)
	if len(overlapping) == 0 {
		return Decision{Outcome: OutcomeAdmit}
	}

	sharing := caps.AllowsSharing
	if sharing && mainCourtContested(probe, overlapping, caps.MainCourtID) {
		sharing = false
	}

	if r.ledger.FitsWithin(probe, overlapping, sharing) {
		return Decision{Outcome: OutcomeAdmit}
	}

	if outranksAll(candidate, overlapping) {
		return Decision{Outcome: OutcomePreempt, Victims: sortVictims(overlapping)}
	}

	return Decision{
		Outcome: OutcomeReject,
		Reason:  "capacity exceeded by existing bookings",
	}
}

// outranksAll reports whether the candidate's priority is strictly above
// every conflicting booking's. Equal priority never preempts.
func outranksAll(candidate *model.Booking, conflicting []*model.Booking) bool {
	for _, b := range conflicting {
		if candidate.Priority <= b.Priority {
			return false
		}
	}
	return true
}

func mainCourtContested(candidate *model.Booking, overlapping []*model.Booking, mainCourtID string) bool {
	if mainCourtID == "" {
		return false
	}
	if bookingTouchesCourt(candidate, mainCourtID) {
		return true
	}
	for _, b := range overlapping {
		if bookingTouchesCourt(b, mainCourtID) {
			return true
		}
	}
	return false
}

func bookingTouchesCourt(b *model.Booking, courtID string) bool {
	if b.IsWholeHall() {
		return true
	}
	for _, id := range b.CourtIDs {
		if id == courtID {
			return true
		}
	}
	return false
}

func sortVictims(victims []*model.Booking) []*model.Booking {
	out := make([]*model.Booking, len(victims))
	copy(out, victims)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// buffered widens a booking's window by the given minutes on both sides,
// clamped to the day, for overlap probing only.
func buffered(b *model.Booking, minutes int) *model.Booking {
	start, err := model.ParseClock(b.StartTime)
	if err != nil {
		return b
	}
	end, err := model.ParseClock(b.EndTime)
	if err != nil {
		return b
	}

	start -= minutes
	if start < 0 {
		start = 0
	}
	end += minutes
	if end > 23*60+59 {
		end = 23*60 + 59
	}

	probe := *b
	probe.StartTime = model.FormatClock(start)
	probe.EndTime = model.FormatClock(end)
	return &probe
}
