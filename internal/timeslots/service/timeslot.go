package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingrepo "hallbook/internal/bookings/repository"
	bookingservice "hallbook/internal/bookings/service"
	"hallbook/internal/recurrence"
	sloterrors "hallbook/internal/timeslots/errors"
	"hallbook/internal/timeslots/repository"
	"hallbook/internal/timeslots/validator"
	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"
)

type TimeSlotService interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	GetByID(ctx context.Context, id string) (*model.TimeSlot, error)
	List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.TimeSlot, int64, error)
	Update(ctx context.Context, id string, update *model.TimeSlotUpdate) (*model.TimeSlot, error)
	Delete(ctx context.Context, id string) error
	Assign(ctx context.Context, assignment *model.TimeSlotTeamAssignment) error
	Unassign(ctx context.Context, slotID, teamID string) error
	Assignments(ctx context.Context, slotID string) ([]*model.TimeSlotTeamAssignment, error)
	Occurrences(ctx context.Context, id string, from, to time.Time) ([]recurrence.Occurrence, error)
	MaterializeBookings(ctx context.Context, id string, from, to time.Time) (int, error)
}

type timeSlotService struct {
	repo        repository.TimeSlotRepository
	bookingRepo bookingrepo.BookingRepository
	bookings    bookingservice.BookingService
	validator   *validator.TimeSlotValidator
	cfg         *config.Config
}

func NewTimeSlotService(
	repo repository.TimeSlotRepository,
	bookingRepo bookingrepo.BookingRepository,
	bookings bookingservice.BookingService,
	validator *validator.TimeSlotValidator,
	cfg *config.Config,
) TimeSlotService {
	return &timeSlotService{
		repo:        repo,
		bookingRepo: bookingRepo,
		bookings:    bookings,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *timeSlotService) Create(ctx context.Context, slot *model.TimeSlot) error {
	s.applyDefaults(slot)
	s.sanitize(slot)
	if err := s.validate(slot); err != nil {
		return err
	}

	if err := s.checkCollisions(ctx, slot); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, slot); err != nil {
		return apperrors.Internal("Failed to create time slot", err)
	}

	s.cfg.Log.Info("Time slot created",
		"id", slot.ID,
		"hall_id", slot.HallID,
		"title", slot.Title,
		"recurrence", slot.RecurrenceType,
	)
	return nil
}

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Time slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Time slot", id)
		}
		if errors.Is(err, sloterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid time slot ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve time slot", err)
	}

	return slot, nil
}

func (s *timeSlotService) List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.TimeSlot, int64, error) {
	var count int64
	var slots []*model.TimeSlot
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count time slots", "error", errCount)
			errCount = apperrors.Internal("Failed to count time slots", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		slots, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list time slots", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve time slots", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return slots, count, nil
}

func (s *timeSlotService) Update(ctx context.Context, id string, update *model.TimeSlotUpdate) (*model.TimeSlot, error) {
	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(slot, update)
	s.sanitize(slot)
	if err := s.validate(slot); err != nil {
		return nil, err
	}

	if err := s.checkCollisions(ctx, slot); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, slot); err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Time slot", id)
		}
		return nil, apperrors.Internal("Failed to update time slot", err)
	}

	s.cfg.Log.Info("Time slot updated", "id", id)
	return slot, nil
}

func (s *timeSlotService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Time slot ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Time slot", id)
		}
		if errors.Is(err, sloterrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid time slot ID format")
		}
		return apperrors.Internal("Failed to delete time slot", err)
	}

	s.cfg.Log.Info("Time slot deleted", "id", id)
	return nil
}

// Assign links a team to a shared slot. The (slot, team) pair is unique.
func (s *timeSlotService) Assign(ctx context.Context, assignment *model.TimeSlotTeamAssignment) error {
	slot, err := s.GetByID(ctx, assignment.TimeSlotID)
	if err != nil {
		return err
	}
	if slot.Status != model.SlotStatusActive {
		return apperrors.Conflict("Teams can only be assigned to active time slots")
	}

	assignment.Priority = sanitizer.NormalizePriority(assignment.Priority)
	if err := s.validator.ValidateAssignment(assignment); err != nil {
		s.cfg.Log.Warn("Slot assignment validation failed", "error", err)
		return apperrors.Validation("Slot assignment validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.CreateAssignment(ctx, assignment); err != nil {
		if errors.Is(err, sloterrors.ErrAssignmentExists) {
			return apperrors.Conflict("Team is already assigned to this time slot")
		}
		return apperrors.Internal("Failed to assign team to time slot", err)
	}

	s.cfg.Log.Info("Team assigned to time slot",
		"slot_id", assignment.TimeSlotID,
		"team_id", assignment.TeamID,
	)
	return nil
}

func (s *timeSlotService) Unassign(ctx context.Context, slotID, teamID string) error {
	if slotID == "" || teamID == "" {
		return apperrors.InvalidInput("Slot ID and team ID are required")
	}

	if err := s.repo.DeleteAssignment(ctx, slotID, teamID); err != nil {
		if errors.Is(err, sloterrors.ErrAssignmentMissing) {
			return apperrors.NotFound("Slot assignment")
		}
		return apperrors.Internal("Failed to unassign team from time slot", err)
	}

	s.cfg.Log.Info("Team unassigned from time slot", "slot_id", slotID, "team_id", teamID)
	return nil
}

func (s *timeSlotService) Assignments(ctx context.Context, slotID string) ([]*model.TimeSlotTeamAssignment, error) {
	if _, err := s.GetByID(ctx, slotID); err != nil {
		return nil, err
	}

	assignments, err := s.repo.FindAssignments(ctx, slotID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve slot assignments", err)
	}
	return assignments, nil
}

// Occurrences previews the concrete dates a slot expands to. The range is
// capped at the configured expansion horizon.
func (s *timeSlotService) Occurrences(ctx context.Context, id string, from, to time.Time) ([]recurrence.Occurrence, error) {
	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	to = s.clampHorizon(from, to)
	return recurrence.Expand(slot, from, to), nil
}

// MaterializeBookings turns every occurrence in [from, to] into a
// confirmed booking via regular admission. Dates that already carry a
// live booking for the slot are skipped, so the sweep is idempotent.
// Occurrences the hall cannot fit are logged and skipped.
func (s *timeSlotService) MaterializeBookings(ctx context.Context, id string, from, to time.Time) (int, error) {
	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if slot.Status != model.SlotStatusActive {
		return 0, apperrors.Conflict("Only active time slots can be materialized")
	}

	teams, err := s.bookingTeams(ctx, slot)
	if err != nil {
		return 0, err
	}
	if len(teams) == 0 {
		return 0, apperrors.Conflict("Time slot has no team and no assignments to book for")
	}

	to = s.clampHorizon(from, to)
	created := 0
	for _, occ := range recurrence.Expand(slot, from, to) {
		exists, err := s.bookingRepo.ExistsForSlotAndDate(ctx, slot.ID, occ.Date)
		if err != nil {
			return created, apperrors.Internal("Failed to check existing slot bookings", err)
		}
		if exists {
			continue
		}

		for _, team := range teams {
			booking := s.buildBooking(slot, occ, team)
			if err := s.bookings.Admit(ctx, booking); err != nil {
				s.cfg.Log.Warn("Occurrence could not be materialized",
					"slot_id", slot.ID,
					"team_id", team.TeamID,
					"date", model.FormatDate(occ.Date),
					"error", err,
				)
				continue
			}
			created++
		}
	}

	if created > 0 {
		s.cfg.Log.Info("Time slot materialized",
			"slot_id", slot.ID,
			"bookings", created,
			"from", model.FormatDate(from),
			"to", model.FormatDate(to),
		)
	}
	return created, nil
}

// --- Helpers ---

// bookingTeam is one team a materialized occurrence books for, with its
// optional dedicated court and priority override.
type bookingTeam struct {
	TeamID   string
	CourtID  string
	Priority int
}

func (s *timeSlotService) bookingTeams(ctx context.Context, slot *model.TimeSlot) ([]bookingTeam, error) {
	if slot.TeamID != "" {
		return []bookingTeam{{TeamID: slot.TeamID}}, nil
	}

	assignments, err := s.repo.FindAssignments(ctx, slot.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve slot assignments", err)
	}

	teams := make([]bookingTeam, 0, len(assignments))
	for _, a := range assignments {
		teams = append(teams, bookingTeam{
			TeamID:   a.TeamID,
			CourtID:  a.CourtID,
			Priority: a.Priority,
		})
	}
	return teams, nil
}

func (s *timeSlotService) buildBooking(slot *model.TimeSlot, occ recurrence.Occurrence, team bookingTeam) *model.Booking {
	priority := team.Priority
	if priority == 0 && slot.SlotType == model.SlotTypeGame {
		priority = s.cfg.GamePriority
	}

	booking := &model.Booking{
		HallID:      slot.HallID,
		TimeSlotID:  slot.ID,
		TeamID:      team.TeamID,
		BookingDate: occ.Date,
		StartTime:   occ.StartTime,
		EndTime:     occ.EndTime,
		Priority:    priority,
		BookingType: model.BookingTypeRegular,
	}
	if team.CourtID != "" {
		booking.CourtIDs = []string{team.CourtID}
	}
	return booking
}

func (s *timeSlotService) clampHorizon(from, to time.Time) time.Time {
	horizon := model.DateOnly(from).AddDate(0, 0, s.cfg.ExpansionHorizonDays)
	if to.After(horizon) {
		return horizon
	}
	return to
}

func (s *timeSlotService) applyDefaults(slot *model.TimeSlot) {
	if slot.Status == "" {
		slot.Status = model.SlotStatusActive
	}
	if slot.SlotType == "" {
		slot.SlotType = model.SlotTypeTraining
	}
	slot.ValidFrom = model.DateOnly(slot.ValidFrom)
	if slot.ValidUntil != nil {
		until := model.DateOnly(*slot.ValidUntil)
		slot.ValidUntil = &until
	}
}

func (s *timeSlotService) sanitize(slot *model.TimeSlot) {
	slot.Title = sanitizer.TrimAndNormalize(slot.Title)
}

func (s *timeSlotService) validate(slot *model.TimeSlot) error {
	if err := s.validator.Validate(slot); err != nil {
		s.cfg.Log.Warn("Time slot validation failed", "error", err)
		return apperrors.Validation("Time slot validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// checkCollisions rejects a weekly or biweekly slot whose windows overlap
// another active slot of the hall, unless both sides allow parallel
// bookings. Monthly and one-off slots are resolved at admission time
// instead.
func (s *timeSlotService) checkCollisions(ctx context.Context, slot *model.TimeSlot) error {
	if !isWeeklyShape(slot) {
		return nil
	}

	existing, err := s.repo.FindActiveByHall(ctx, slot.HallID)
	if err != nil {
		return apperrors.Internal("Failed to check hall time slots", err)
	}

	for _, other := range existing {
		if other.ID == slot.ID || !isWeeklyShape(other) {
			continue
		}
		if slot.SupportsParallelBookings && other.SupportsParallelBookings {
			continue
		}
		if day := collidingDay(slot, other); day != "" {
			return apperrors.Conflict("Time slot overlaps an existing slot on " + string(day))
		}
	}
	return nil
}

func isWeeklyShape(slot *model.TimeSlot) bool {
	return slot.RecurrenceType == model.RecurrenceWeekly || slot.RecurrenceType == model.RecurrenceBiweekly
}

func collidingDay(a, b *model.TimeSlot) model.Weekday {
	for _, day := range model.AllWeekdays {
		for _, sa := range a.SegmentsForDay(day) {
			for _, sb := range b.SegmentsForDay(day) {
				if model.ClockOverlaps(sa.StartTime, sa.EndTime, sb.StartTime, sb.EndTime) {
					return day
				}
			}
		}
	}
	return ""
}

func applyUpdate(slot *model.TimeSlot, update *model.TimeSlotUpdate) {
	if update.Title != "" {
		slot.Title = update.Title
	}
	if update.TeamID != nil {
		slot.TeamID = *update.TeamID
	}
	if update.DayOfWeek != "" {
		slot.DayOfWeek = update.DayOfWeek
	}
	if update.StartTime != "" {
		slot.StartTime = update.StartTime
	}
	if update.EndTime != "" {
		slot.EndTime = update.EndTime
	}
	if update.CustomTimes != nil {
		slot.CustomTimes = *update.CustomTimes
		slot.UsesCustomTimes = len(*update.CustomTimes) > 0
	}
	if update.Status != "" {
		slot.Status = update.Status
	}
	if update.ValidUntil != nil {
		until := model.DateOnly(*update.ValidUntil)
		slot.ValidUntil = &until
	}
	if update.ExcludedDates != nil {
		slot.ExcludedDates = *update.ExcludedDates
	}
}
