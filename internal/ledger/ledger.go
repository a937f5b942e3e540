// Package ledger derives per-court occupancy from the set of bookings
// holding capacity on a date. It is pure: callers load the bookings and
// court roster, the ledger only does the interval math.
package ledger

import (
	"sort"
	"time"

	"hallbook/pkg/model"
)

// OccupiedRange is one allocated window on a single court.
type OccupiedRange struct {
	CourtID    string  `json:"court_id"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Percentage float64 `json:"percentage"`
	BookingID  string  `json:"booking_id"`
}

// FreeWindow is a gap on a court where no capacity is allocated at all.
type FreeWindow struct {
	CourtID   string `json:"court_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Ledger scopes occupancy math to one hall and its court roster.
type Ledger struct {
	hall   *model.Hall
	courts []*model.Court
}

func New(hall *model.Hall, courts []*model.Court) *Ledger {
	return &Ledger{hall: hall, courts: courts}
}

// OccupiedRanges expands the holding bookings of a date into per-court
// ranges, ordered by court then start time. A whole-hall booking occupies
// every court at 100 percent.
func (l *Ledger) OccupiedRanges(date time.Time, bookings []*model.Booking) []OccupiedRange {
	day := model.DateOnly(date)

	var out []OccupiedRange
	for _, b := range bookings {
		if !b.Holds() || !model.DateOnly(b.BookingDate).Equal(day) {
			continue
		}
		for _, courtID := range l.courtScope(b) {
			out = append(out, OccupiedRange{
				CourtID:    courtID,
				StartTime:  b.StartTime,
				EndTime:    b.EndTime,
				Percentage: b.EffectivePercentage(),
				BookingID:  b.ID,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CourtID != out[j].CourtID {
			return out[i].CourtID < out[j].CourtID
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// Overlapping returns the holding bookings that contest the candidate's
// courts and time window on the same date.
func (l *Ledger) Overlapping(candidate *model.Booking, bookings []*model.Booking) []*model.Booking {
	var out []*model.Booking
	for _, b := range bookings {
		if b.ID != "" && b.ID == candidate.ID {
			continue
		}
		if !b.Holds() {
			continue
		}
		if !candidate.OverlapsWith(b) {
			continue
		}
		if !candidate.SharesCourtsWith(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// FitsWithin reports whether the candidate can be admitted next to the
// overlapping bookings without breaching capacity. When sharing is off any
// overlap is a breach; otherwise the percentage sum per court must stay at
// or below 100 at every boundary instant inside the candidate's window.
func (l *Ledger) FitsWithin(candidate *model.Booking, overlapping []*model.Booking, allowSharing bool) bool {
	if len(overlapping) == 0 {
		return true
	}
	if !allowSharing {
		return false
	}
	if candidate.IsWholeHall() {
		return false
	}

	for _, courtID := range candidate.CourtIDs {
		if !l.fitsOnCourt(courtID, candidate, overlapping) {
			return false
		}
	}
	return true
}

func (l *Ledger) fitsOnCourt(courtID string, candidate *model.Booking, overlapping []*model.Booking) bool {
	var ranges []OccupiedRange
	for _, b := range overlapping {
		if !occupiesCourt(b, courtID) {
			continue
		}
		if !model.ClockOverlaps(b.StartTime, b.EndTime, candidate.StartTime, candidate.EndTime) {
			continue
		}
		ranges = append(ranges, OccupiedRange{
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
			Percentage: b.EffectivePercentage(),
		})
	}
	if len(ranges) == 0 {
		return true
	}

	budget := 100 - candidate.EffectivePercentage()
	for _, instant := range boundaries(candidate, ranges) {
		var sum float64
		for _, r := range ranges {
			if r.StartTime <= instant && instant < r.EndTime {
				sum += r.Percentage
			}
		}
		if sum > budget {
			return false
		}
	}
	return true
}

// FreeWindows returns the fully unallocated gaps per court between opening
// and closing time.
func (l *Ledger) FreeWindows(date time.Time, bookings []*model.Booking, opening, closing string) []FreeWindow {
	occupied := l.OccupiedRanges(date, bookings)
	byCourt := make(map[string][]OccupiedRange)
	for _, r := range occupied {
		byCourt[r.CourtID] = append(byCourt[r.CourtID], r)
	}

	var out []FreeWindow
	for _, court := range l.courts {
		cursor := opening
		for _, r := range byCourt[court.ID] {
			if r.EndTime <= cursor {
				continue
			}
			if r.StartTime > cursor {
				out = append(out, FreeWindow{CourtID: court.ID, StartTime: cursor, EndTime: minClock(r.StartTime, closing)})
			}
			cursor = maxClock(cursor, r.EndTime)
			if cursor >= closing {
				break
			}
		}
		if cursor < closing {
			out = append(out, FreeWindow{CourtID: court.ID, StartTime: cursor, EndTime: closing})
		}
	}
	return out
}

// courtScope lists the court IDs a booking occupies.
func (l *Ledger) courtScope(b *model.Booking) []string {
	if !b.IsWholeHall() {
		return b.CourtIDs
	}
	ids := make([]string, 0, len(l.courts))
	for _, c := range l.courts {
		ids = append(ids, c.ID)
	}
	return ids
}

// boundaries collects the sweep instants inside the candidate's window:
// its own start plus every range edge falling strictly inside it.
func boundaries(candidate *model.Booking, ranges []OccupiedRange) []string {
	instants := []string{candidate.StartTime}
	for _, r := range ranges {
		if r.StartTime > candidate.StartTime && r.StartTime < candidate.EndTime {
			instants = append(instants, r.StartTime)
		}
		if r.EndTime > candidate.StartTime && r.EndTime < candidate.EndTime {
			instants = append(instants, r.EndTime)
		}
	}
	sort.Strings(instants)
	return instants
}

func occupiesCourt(b *model.Booking, courtID string) bool {
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

func minClock(a, b string) string {
	if a < b {
		return a
	}
	return b
}

func maxClock(a, b string) string {
	if a > b {
		return a
	}
	return b
}
