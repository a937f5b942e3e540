package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/internal/bookings/repository"
	"hallbook/internal/bookings/validator"
	catalogservice "hallbook/internal/catalog/service"
	"hallbook/internal/conflict"
	"hallbook/internal/events"
	"hallbook/internal/ledger"
	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"
	"hallbook/pkg/sealer"
)

const sweepBatchSize = 500

type BookingService interface {
	Admit(ctx context.Context, booking *model.Booking) error
	Confirm(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id, reason string) error
	CancelByToken(ctx context.Context, token string) error
	CancellationToken(booking *model.Booking) (string, error)
	Complete(ctx context.Context, id string) error
	NoShow(ctx context.Context, id string) error
	Release(ctx context.Context, id, reason, releasedBy string) error
	Substitute(ctx context.Context, id, substituteTeamID string) (*model.Booking, error)
	Availability(ctx context.Context, hallID string, date time.Time) ([]ledger.FreeWindow, error)
	ExpireStalePending(ctx context.Context) (int, error)
	CompleteElapsed(ctx context.Context) (int, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	catalog   catalogservice.CatalogService
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	catalog catalogservice.CatalogService,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		catalog:   catalog,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Admit runs the full admission sequence for a candidate booking. A
// candidate submitted with status "pending" is staged: it is persisted
// without holding capacity and without preempting anyone, to be confirmed
// later via Confirm. All other candidates come out "confirmed" or not at
// all.
func (s *bookingService) Admit(ctx context.Context, booking *model.Booking) error {
	staged := booking.Status == model.BookingPending

	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	hall, courts, err := s.catalog.GetHallWithCourts(ctx, booking.HallID)
	if err != nil {
		return err
	}
	if !hall.IsActive {
		return apperrors.Conflict("Hall is not active")
	}
	if err := s.verifyCourtMembership(booking, courts); err != nil {
		return err
	}
	if err := s.validator.ValidateAgainstHall(booking, hall); err != nil {
		s.cfg.Log.Warn("Booking rejected by hall rules", "hall_id", hall.ID, "error", err)
		return apperrors.Validation("Booking violates hall rules", map[string]any{"error": err.Error()})
	}

	lockID, err := s.acquireSlotLock(ctx, booking.HallID, booking.BookingDate)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var victims []*model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		holding, err := s.repo.FindHoldingByHallAndDate(sessCtx, booking.HallID, booking.BookingDate)
		if err != nil {
			return apperrors.Internal("Failed to load holding bookings", err)
		}

		decision := s.resolve(booking, holding, hall, courts)
		switch decision.Outcome {
		case conflict.OutcomeReject:
			return apperrors.CapacityExceeded("Booking conflicts with existing bookings", map[string]any{
				"hall_id": booking.HallID,
				"date":    model.FormatDate(booking.BookingDate),
				"reason":  decision.Reason,
			})
		case conflict.OutcomePreempt:
			if !staged {
				if err := s.releaseVictims(sessCtx, decision.Victims); err != nil {
					return err
				}
				victims = decision.Victims
			}
		}

		if staged {
			booking.Status = model.BookingPending
		} else {
			now := time.Now().UTC()
			booking.Status = model.BookingConfirmed
			booking.ConfirmedAt = &now
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to admit booking",
			"hall_id", booking.HallID,
			"date", model.FormatDate(booking.BookingDate),
			"error", err,
		)
		return err
	}

	for _, victim := range victims {
		s.publisher.BookingEvent(ctx, events.BookingReleased, victim, model.ReleaseReasonPreempted)
	}
	if booking.Status == model.BookingConfirmed {
		s.publisher.BookingEvent(ctx, events.BookingConfirmed, booking, "")
	}

	s.cfg.Log.Info("Booking admitted",
		"id", booking.ID,
		"hall_id", booking.HallID,
		"date", model.FormatDate(booking.BookingDate),
		"window", booking.StartTime+"-"+booking.EndTime,
		"status", booking.Status,
		"preempted", len(victims),
	)
	return nil
}

// Confirm promotes a staged pending booking. The admission sequence runs
// again under the lock because capacity may have been claimed since the
// booking was staged.
func (s *bookingService) Confirm(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status == model.BookingConfirmed {
		return nil
	}
	if booking.Status != model.BookingPending {
		return apperrors.Conflict("Only pending bookings can be confirmed")
	}

	hall, courts, err := s.catalog.GetHallWithCourts(ctx, booking.HallID)
	if err != nil {
		return err
	}

	lockID, err := s.acquireSlotLock(ctx, booking.HallID, booking.BookingDate)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var victims []*model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		holding, err := s.repo.FindHoldingByHallAndDate(sessCtx, booking.HallID, booking.BookingDate)
		if err != nil {
			return apperrors.Internal("Failed to load holding bookings", err)
		}

		decision := s.resolve(booking, holding, hall, courts)
		switch decision.Outcome {
		case conflict.OutcomeReject:
			return apperrors.CapacityExceeded("Booking conflicts with existing bookings", map[string]any{
				"hall_id": booking.HallID,
				"date":    model.FormatDate(booking.BookingDate),
				"reason":  decision.Reason,
			})
		case conflict.OutcomePreempt:
			if err := s.releaseVictims(sessCtx, decision.Victims); err != nil {
				return err
			}
			victims = decision.Victims
		}

		now := time.Now().UTC()
		booking.Status = model.BookingConfirmed
		booking.ConfirmedAt = &now
		if err := s.repo.UpdateStatus(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to confirm booking", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, victim := range victims {
		s.publisher.BookingEvent(ctx, events.BookingReleased, victim, model.ReleaseReasonPreempted)
	}
	s.publisher.BookingEvent(ctx, events.BookingConfirmed, booking, "")

	s.cfg.Log.Info("Booking confirmed", "id", booking.ID, "preempted", len(victims))
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Cancel is idempotent: cancelling an already-cancelled booking is a
// no-op success so retried calls converge.
func (s *bookingService) Cancel(ctx context.Context, id, reason string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if booking.Status == model.BookingCancelled {
		return nil
	}
	if !booking.CanBeCancelled() {
		return apperrors.Conflict("Only pending or confirmed bookings can be cancelled")
	}

	now := time.Now().UTC()
	booking.Status = model.BookingCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = sanitizer.NormalizeNotes(reason)

	if err := s.repo.UpdateStatus(ctx, booking); err != nil {
		return apperrors.Internal("Failed to cancel booking", err)
	}

	s.publisher.BookingEvent(ctx, events.BookingCancelled, booking, booking.CancellationReason)
	s.cfg.Log.Info("Booking cancelled", "id", id, "reason", booking.CancellationReason)
	return nil
}

// CancelByToken cancels through an opaque self-service link. The token
// binds the booking to its team so a leaked link cannot cancel someone
// else's booking after a substitution.
func (s *bookingService) CancelByToken(ctx context.Context, token string) error {
	bookingID, teamID, err := sealer.ParseOpaqueToken(token)
	if err != nil {
		return apperrors.InvalidInput("Invalid cancellation token")
	}

	booking, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.TeamID != teamID {
		return apperrors.Forbidden("Cancellation token does not match the booking")
	}

	return s.Cancel(ctx, bookingID, "cancelled via self-service link")
}

func (s *bookingService) CancellationToken(booking *model.Booking) (string, error) {
	token, err := sealer.CreateOpaqueToken(booking.ID, booking.TeamID)
	if err != nil {
		return "", apperrors.Internal("Failed to create cancellation token", err)
	}
	return token, nil
}

func (s *bookingService) Complete(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.BookingCompleted, events.BookingCompleted, "")
}

func (s *bookingService) NoShow(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.BookingNoShow, events.BookingNoShow, "")
}

// Release frees a confirmed booking's capacity without cancelling it,
// recording who let it go and why.
func (s *bookingService) Release(ctx context.Context, id, reason, releasedBy string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status == model.BookingReleased {
		return nil
	}
	if booking.Status != model.BookingConfirmed {
		return apperrors.Conflict("Only confirmed bookings can be released")
	}

	now := time.Now().UTC()
	booking.Status = model.BookingReleased
	booking.ReleaseReason = sanitizer.NormalizeNotes(reason)
	booking.ReleasedAt = &now
	booking.ReleasedBy = releasedBy

	if err := s.repo.UpdateStatus(ctx, booking); err != nil {
		return apperrors.Internal("Failed to release booking", err)
	}

	s.publisher.BookingEvent(ctx, events.BookingReleased, booking, booking.ReleaseReason)
	s.cfg.Log.Info("Booking released", "id", id, "reason", booking.ReleaseReason, "by", releasedBy)
	return nil
}

// Substitute hands a confirmed booking's window to another team. The
// original booking transitions to "substituted" and a replacement booking
// takes over the identical window, so hall capacity is unchanged.
func (s *bookingService) Substitute(ctx context.Context, id, substituteTeamID string) (*model.Booking, error) {
	if substituteTeamID == "" {
		return nil, apperrors.InvalidInput("Substitute team ID cannot be empty")
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != model.BookingConfirmed {
		return nil, apperrors.Conflict("Only confirmed bookings can be substituted")
	}
	if booking.TeamID == substituteTeamID {
		return nil, apperrors.InvalidInput("Substitute team must differ from the booking team")
	}

	now := time.Now().UTC()
	replacement := &model.Booking{
		HallID:          booking.HallID,
		TimeSlotID:      booking.TimeSlotID,
		TeamID:          substituteTeamID,
		OriginalTeamID:  booking.TeamID,
		BookingDate:     booking.BookingDate,
		StartTime:       booking.StartTime,
		EndTime:         booking.EndTime,
		DurationMin:     booking.DurationMin,
		Priority:        booking.Priority,
		Status:          model.BookingConfirmed,
		BookingType:     model.BookingTypeSubstitute,
		CourtIDs:        booking.CourtIDs,
		IsPartialCourt:  booking.IsPartialCourt,
		CourtPercentage: booking.CourtPercentage,
		ConfirmedAt:     &now,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking.Status = model.BookingSubstituted
		booking.SubstituteTeamID = substituteTeamID
		if err := s.repo.UpdateStatus(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to mark booking substituted", err)
		}
		if err := s.repo.Create(sessCtx, replacement); err != nil {
			return apperrors.Internal("Failed to create substitute booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.BookingEvent(ctx, events.BookingSubstituted, booking, "")
	s.publisher.BookingEvent(ctx, events.BookingConfirmed, replacement, "")

	s.cfg.Log.Info("Booking substituted",
		"id", id,
		"replacement_id", replacement.ID,
		"substitute_team_id", substituteTeamID,
	)
	return replacement, nil
}

// Availability lists the fully free windows of a hall on a date, per
// court. Side-effect-free, runs outside any lock.
func (s *bookingService) Availability(ctx context.Context, hallID string, date time.Time) ([]ledger.FreeWindow, error) {
	hall, courts, err := s.catalog.GetHallWithCourts(ctx, hallID)
	if err != nil {
		return nil, err
	}

	holding, err := s.repo.FindHoldingByHallAndDate(ctx, hallID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to load bookings", err)
	}

	opening := hall.OpeningTime
	if opening == "" {
		opening = s.cfg.DefaultOpeningTime
	}
	closing := hall.ClosingTime
	if closing == "" {
		closing = s.cfg.DefaultClosingTime
	}

	return ledger.New(hall, courts).FreeWindows(date, holding, opening, closing), nil
}

// ExpireStalePending transitions pending bookings past their deadline to
// expired. Pending bookings hold no capacity, so there is nothing to
// release and no admission lock to contend with.
func (s *bookingService) ExpireStalePending(ctx context.Context) (int, error) {
	deadline := time.Now().UTC().Add(-s.cfg.PendingBookingTTL)

	stale, err := s.repo.FindStalePending(ctx, deadline, sweepBatchSize)
	if err != nil {
		return 0, apperrors.Internal("Failed to find stale pending bookings", err)
	}

	expired := 0
	for _, booking := range stale {
		booking.Status = model.BookingExpired
		if err := s.repo.UpdateStatus(ctx, booking); err != nil {
			s.cfg.Log.Error("Failed to expire pending booking", "id", booking.ID, "error", err)
			continue
		}
		s.publisher.BookingEvent(ctx, events.BookingExpired, booking, "pending confirmation deadline passed")
		expired++
	}

	if expired > 0 {
		s.cfg.Log.Info("Expired stale pending bookings", "count", expired)
	}
	return expired, nil
}

// CompleteElapsed transitions confirmed bookings whose date has passed to
// completed.
func (s *bookingService) CompleteElapsed(ctx context.Context) (int, error) {
	elapsed, err := s.repo.FindElapsedConfirmed(ctx, time.Now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, apperrors.Internal("Failed to find elapsed bookings", err)
	}

	completed := 0
	for _, booking := range elapsed {
		booking.Status = model.BookingCompleted
		if err := s.repo.UpdateStatus(ctx, booking); err != nil {
			s.cfg.Log.Error("Failed to complete booking", "id", booking.ID, "error", err)
			continue
		}
		s.publisher.BookingEvent(ctx, events.BookingCompleted, booking, "")
		completed++
	}

	if completed > 0 {
		s.cfg.Log.Info("Completed elapsed bookings", "count", completed)
	}
	return completed, nil
}

// --- Helpers ---

func (s *bookingService) transition(ctx context.Context, id, toStatus, eventType, reason string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if booking.Status == toStatus {
		return nil
	}
	if booking.Status != model.BookingConfirmed {
		return apperrors.Conflict("Only confirmed bookings can transition to " + toStatus)
	}

	booking.Status = toStatus
	if err := s.repo.UpdateStatus(ctx, booking); err != nil {
		return apperrors.Internal("Failed to update booking status", err)
	}

	s.publisher.BookingEvent(ctx, eventType, booking, reason)
	s.cfg.Log.Info("Booking transitioned", "id", id, "status", toStatus)
	return nil
}

func (s *bookingService) resolve(candidate *model.Booking, holding []*model.Booking, hall *model.Hall, courts []*model.Court) conflict.Decision {
	resolver := conflict.NewResolver(ledger.New(hall, courts))
	caps := conflict.Capabilities{
		AllowsSharing: hall.AllowsSharing(),
		MainCourtID:   mainCourtID(courts),
		GameBufferMin: s.cfg.GameBufferMin,
	}
	return resolver.Evaluate(candidate, holding, caps)
}

func (s *bookingService) releaseVictims(ctx context.Context, victims []*model.Booking) error {
	now := time.Now().UTC()
	for _, victim := range victims {
		victim.Status = model.BookingReleased
		victim.ReleaseReason = model.ReleaseReasonPreempted
		victim.ReleasedAt = &now
		victim.ReleasedBy = "scheduler"
		if err := s.repo.UpdateStatus(ctx, victim); err != nil {
			return apperrors.Internal("Failed to release preempted booking", err)
		}
	}
	return nil
}

func (s *bookingService) verifyCourtMembership(booking *model.Booking, courts []*model.Court) error {
	if booking.IsWholeHall() {
		return nil
	}
	known := make(map[string]bool, len(courts))
	for _, c := range courts {
		known[c.ID] = true
	}
	for _, id := range booking.CourtIDs {
		if !known[id] {
			return apperrors.InvalidInput("Court " + id + " does not belong to hall " + booking.HallID)
		}
	}
	return nil
}

func mainCourtID(courts []*model.Court) string {
	for _, c := range courts {
		if c.IsMainCourt {
			return c.ID
		}
	}
	return ""
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.BookingConfirmed
	}
	if b.BookingType == "" {
		b.BookingType = model.BookingTypeRegular
	}
	if b.Priority == 0 {
		if b.IsGameBooking() {
			b.Priority = s.cfg.GamePriority
		} else {
			b.Priority = s.cfg.TrainingPriority
		}
	}
	if b.DurationMin == 0 {
		if d, err := model.ClockRangeMinutes(b.StartTime, b.EndTime); err == nil {
			b.DurationMin = d
		}
	}
	b.BookingDate = model.DateOnly(b.BookingDate)
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.BookingNotes = sanitizer.NormalizeNotes(b.BookingNotes)
	b.CourtIDs = sanitizer.NormalizeIDs(b.CourtIDs)
	b.Priority = sanitizer.NormalizePriority(b.Priority)
	if b.IsPartialCourt {
		b.CourtPercentage = sanitizer.NormalizePercentage(b.CourtPercentage)
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) acquireSlotLock(ctx context.Context, hallID string, date time.Time) (string, error) {
	lock := model.NewSlotLock(hallID, date, s.cfg.SlotLockTTL)

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.ResourceBusy(hallID, model.FormatDate(date))
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lock.ID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
