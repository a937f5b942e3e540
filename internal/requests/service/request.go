package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingservice "hallbook/internal/bookings/service"
	"hallbook/internal/events"
	requesterrors "hallbook/internal/requests/errors"
	"hallbook/internal/requests/repository"
	"hallbook/internal/requests/validator"
	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"
)

const sweepBatchSize = 500

const autoReviewer = "auto-approval"

type RequestService interface {
	Submit(ctx context.Context, request *model.BookingRequest) error
	GetByID(ctx context.Context, id string) (*model.BookingRequest, error)
	List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.BookingRequest, int64, error)
	Approve(ctx context.Context, id, reviewedBy, notes string) (*model.Booking, error)
	Reject(ctx context.Context, id, reviewedBy, reason string) error
	Cancel(ctx context.Context, id string) error
	ExpireStale(ctx context.Context) (int, error)
}

type requestService struct {
	repo      repository.RequestRepository
	bookings  bookingservice.BookingService
	validator *validator.RequestValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewRequestService(
	repo repository.RequestRepository,
	bookings bookingservice.BookingService,
	validator *validator.RequestValidator,
	publisher events.Publisher,
	cfg *config.Config,
) RequestService {
	return &requestService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Submit records a booking request and, when its approval conditions all
// hold, approves it immediately. A request holds no hall capacity while
// pending.
func (s *requestService) Submit(ctx context.Context, request *model.BookingRequest) error {
	s.applyDefaults(request)
	s.sanitize(request)
	if err := s.validate(request); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return apperrors.Internal("Failed to create booking request", err)
	}

	s.publisher.RequestEvent(ctx, events.RequestSubmitted, request, "")
	s.cfg.Log.Info("Booking request submitted",
		"id", request.ID,
		"hall_id", request.HallID,
		"team_id", request.RequestingTeamID,
		"date", model.FormatDate(request.RequestedDate),
	)

	if s.conditionsHold(ctx, request) {
		if _, err := s.Approve(ctx, request.ID, autoReviewer, ""); err != nil {
			// The request is already rejected or left pending; submission
			// itself succeeded.
			s.cfg.Log.Info("Auto-approval did not go through",
				"id", request.ID,
				"error", err,
			)
		}
	}

	return nil
}

func (s *requestService) GetByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Request ID cannot be empty")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, requesterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking request", id)
		}
		if errors.Is(err, requesterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid request ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking request", err)
	}

	return request, nil
}

func (s *requestService) List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.BookingRequest, int64, error) {
	var count int64
	var requests []*model.BookingRequest
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count booking requests", "error", errCount)
			errCount = apperrors.Internal("Failed to count booking requests", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		requests, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list booking requests", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve booking requests", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return requests, count, nil
}

// Approve builds a candidate booking from the request and delegates to
// booking admission. A capacity rejection is copied back onto the request
// as a rejection; other admission failures leave the request pending.
func (s *requestService) Approve(ctx context.Context, id, reviewedBy, notes string) (*model.Booking, error) {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if request.IsExpired(now) {
		s.markExpired(ctx, request)
		return nil, apperrors.RequestExpired(request.ID)
	}
	if !request.CanBeReviewed(now) {
		return nil, apperrors.Conflict("Only pending requests can be reviewed")
	}

	booking := s.buildCandidate(request)
	if err := s.bookings.Admit(ctx, booking); err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr != nil && appErr.Code == apperrors.CodeCapacityExceeded {
			s.rejectWith(ctx, request, reviewedBy, appErr.Message)
			return nil, err
		}
		return nil, err
	}

	request.Status = model.RequestApproved
	request.AutoApproved = reviewedBy == autoReviewer
	request.ReviewedBy = reviewedBy
	request.ReviewedAt = &now
	request.ReviewNotes = sanitizer.NormalizeNotes(notes)
	request.BookingID = booking.ID
	if err := s.repo.Update(ctx, request); err != nil {
		// Give the capacity back, or a retried Approve collides with its
		// own booking and flips the request to rejected.
		if cancelErr := s.bookings.Cancel(ctx, booking.ID, "request approval failed"); cancelErr != nil {
			s.cfg.Log.Error("Failed to cancel booking after approval failure",
				"request_id", request.ID,
				"booking_id", booking.ID,
				"error", cancelErr,
			)
		}
		return nil, apperrors.Internal("Failed to update booking request", err)
	}

	s.publisher.RequestEvent(ctx, events.RequestApproved, request, "")
	s.cfg.Log.Info("Booking request approved",
		"id", request.ID,
		"booking_id", booking.ID,
		"reviewed_by", reviewedBy,
	)
	return booking, nil
}

func (s *requestService) Reject(ctx context.Context, id, reviewedBy, reason string) error {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if request.IsExpired(now) {
		s.markExpired(ctx, request)
		return apperrors.RequestExpired(request.ID)
	}
	if !request.CanBeReviewed(now) {
		return apperrors.Conflict("Only pending requests can be reviewed")
	}

	s.rejectWith(ctx, request, reviewedBy, reason)
	return nil
}

func (s *requestService) Cancel(ctx context.Context, id string) error {
	request, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if request.Status == model.RequestCancelled {
		return nil
	}
	if request.Status != model.RequestPending {
		return apperrors.Conflict("Only pending requests can be cancelled")
	}

	request.Status = model.RequestCancelled
	if err := s.repo.Update(ctx, request); err != nil {
		return apperrors.Internal("Failed to cancel booking request", err)
	}

	s.publisher.RequestEvent(ctx, events.RequestCancelled, request, "")
	s.cfg.Log.Info("Booking request cancelled", "id", id)
	return nil
}

// ExpireStale transitions pending requests past expires_at to expired.
// Pure timeout, no resource side effect.
func (s *requestService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.repo.FindExpiredPending(ctx, time.Now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, apperrors.Internal("Failed to find expired requests", err)
	}

	expired := 0
	for _, request := range stale {
		request.Status = model.RequestExpired
		if err := s.repo.Update(ctx, request); err != nil {
			s.cfg.Log.Error("Failed to expire booking request", "id", request.ID, "error", err)
			continue
		}
		s.publisher.RequestEvent(ctx, events.RequestExpired, request, "review window elapsed")
		expired++
	}

	if expired > 0 {
		s.cfg.Log.Info("Expired stale booking requests", "count", expired)
	}
	return expired, nil
}

// --- Helpers ---

func (s *requestService) applyDefaults(r *model.BookingRequest) {
	r.Status = model.RequestPending
	if r.ExpiresAt.IsZero() {
		r.ExpiresAt = time.Now().UTC().Add(s.cfg.RequestExpiryWindow)
	}
	r.RequestedDate = model.DateOnly(r.RequestedDate)
}

func (s *requestService) sanitize(r *model.BookingRequest) {
	r.Purpose = sanitizer.TrimAndNormalize(r.Purpose)
	r.Message = sanitizer.NormalizeNotes(r.Message)
	r.Priority = sanitizer.NormalizePriority(r.Priority)
}

func (s *requestService) validate(request *model.BookingRequest) error {
	if err := s.validator.Validate(request); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return apperrors.Validation("Booking request validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// conditionsHold evaluates the auto-approval conditions at submission
// time. A request without conditions always requires a human reviewer.
func (s *requestService) conditionsHold(ctx context.Context, r *model.BookingRequest) bool {
	cond := r.ApprovalConditions
	if cond == nil {
		return false
	}

	now := time.Now().UTC()
	if cond.MinLeadTimeHours > 0 {
		start, err := model.ParseClock(r.StartTime)
		if err != nil {
			return false
		}
		startsAt := r.RequestedDate.Add(time.Duration(start) * time.Minute)
		if startsAt.Sub(now) < time.Duration(cond.MinLeadTimeHours)*time.Hour {
			return false
		}
	}

	if cond.MaxDurationMin > 0 {
		duration, err := model.ClockRangeMinutes(r.StartTime, r.EndTime)
		if err != nil || duration > cond.MaxDurationMin {
			return false
		}
	}

	if cond.RequireAvailability && !s.windowIsFree(ctx, r) {
		return false
	}

	return true
}

// windowIsFree reports whether some court has the whole requested window
// unallocated.
func (s *requestService) windowIsFree(ctx context.Context, r *model.BookingRequest) bool {
	windows, err := s.bookings.Availability(ctx, r.HallID, r.RequestedDate)
	if err != nil {
		s.cfg.Log.Warn("Availability check failed during auto-approval",
			"request_id", r.ID,
			"error", err,
		)
		return false
	}

	for _, w := range windows {
		if w.StartTime <= r.StartTime && w.EndTime >= r.EndTime {
			return true
		}
	}
	return false
}

func (s *requestService) buildCandidate(r *model.BookingRequest) *model.Booking {
	bookingType := model.BookingTypeAdhoc
	if r.ReleasedBookingID != "" {
		bookingType = model.BookingTypeSubstitute
	}

	return &model.Booking{
		HallID:       r.HallID,
		TeamID:       r.RequestingTeamID,
		BookingDate:  r.RequestedDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Priority:     r.Priority,
		BookingType:  bookingType,
		BookingNotes: r.Purpose,
	}
}

func (s *requestService) rejectWith(ctx context.Context, request *model.BookingRequest, reviewedBy, reason string) {
	now := time.Now().UTC()
	request.Status = model.RequestRejected
	request.ReviewedBy = reviewedBy
	request.ReviewedAt = &now
	request.RejectionReason = sanitizer.NormalizeNotes(reason)

	if err := s.repo.Update(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to mark booking request rejected", "id", request.ID, "error", err)
		return
	}

	s.publisher.RequestEvent(ctx, events.RequestRejected, request, request.RejectionReason)
	s.cfg.Log.Info("Booking request rejected",
		"id", request.ID,
		"reviewed_by", reviewedBy,
		"reason", request.RejectionReason,
	)
}

func (s *requestService) markExpired(ctx context.Context, request *model.BookingRequest) {
	request.Status = model.RequestExpired
	if err := s.repo.Update(ctx, request); err != nil {
		s.cfg.Log.Error("Failed to mark booking request expired", "id", request.ID, "error", err)
		return
	}
	s.publisher.RequestEvent(ctx, events.RequestExpired, request, "review window elapsed")
}
