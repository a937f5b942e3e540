package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"hallbook/internal/bookings/repository"
	"hallbook/internal/events"
	"hallbook/internal/ledger"
	requesterrors "hallbook/internal/requests/errors"
	requestrepo "hallbook/internal/requests/repository"
	"hallbook/internal/requests/validator"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

const (
	testHallID = "656e1f77bcf86cd799439011"
	testTeamID = "656e1f77bcf86cd799439031"
)

// Mock repository for testing
type mockRequestRepository struct {
	createFunc      func(ctx context.Context, request *model.BookingRequest) error
	findByIDFunc    func(ctx context.Context, id string) (*model.BookingRequest, error)
	findAllFunc     func(ctx context.Context, filter requestrepo.SearchFilter, limit int, offset int64) ([]*model.BookingRequest, error)
	countFunc       func(ctx context.Context, filter requestrepo.SearchFilter) (int64, error)
	updateFunc      func(ctx context.Context, request *model.BookingRequest) error
	expiredFunc     func(ctx context.Context, now time.Time, limit int) ([]*model.BookingRequest, error)
}

func (m *mockRequestRepository) Create(ctx context.Context, request *model.BookingRequest) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, request)
	}
	request.ID = "656e1f77bcf86cd799439099"
	return nil
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, requesterrors.ErrNotFound
}

func (m *mockRequestRepository) FindAll(ctx context.Context, filter requestrepo.SearchFilter, limit int, offset int64) ([]*model.BookingRequest, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.BookingRequest{}, nil
}

func (m *mockRequestRepository) Count(ctx context.Context, filter requestrepo.SearchFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockRequestRepository) Update(ctx context.Context, request *model.BookingRequest) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, request)
	}
	return nil
}

func (m *mockRequestRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.BookingRequest, error) {
	if m.expiredFunc != nil {
		return m.expiredFunc(ctx, now, limit)
	}
	return []*model.BookingRequest{}, nil
}

func (m *mockRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

// Mock booking service for testing
type mockBookingService struct {
	admitFunc        func(ctx context.Context, booking *model.Booking) error
	cancelFunc       func(ctx context.Context, id, reason string) error
	availabilityFunc func(ctx context.Context, hallID string, date time.Time) ([]ledger.FreeWindow, error)
}

func (m *mockBookingService) Admit(ctx context.Context, booking *model.Booking) error {
	if m.admitFunc != nil {
		return m.admitFunc(ctx, booking)
	}
	booking.ID = "656e1f77bcf86cd799439061"
	booking.Status = model.BookingConfirmed
	return nil
}

func (m *mockBookingService) Confirm(ctx context.Context, id string) error { return nil }

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	return nil, apperrors.NotFoundWithID("Booking", id)
}

func (m *mockBookingService) List(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	return nil, 0, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id, reason string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, reason)
	}
	return nil
}

func (m *mockBookingService) CancelByToken(ctx context.Context, token string) error { return nil }

func (m *mockBookingService) CancellationToken(booking *model.Booking) (string, error) {
	return "", nil
}

func (m *mockBookingService) Complete(ctx context.Context, id string) error { return nil }

func (m *mockBookingService) NoShow(ctx context.Context, id string) error { return nil }

func (m *mockBookingService) Release(ctx context.Context, id, reason, releasedBy string) error {
	return nil
}

func (m *mockBookingService) Substitute(ctx context.Context, id, substituteTeamID string) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Availability(ctx context.Context, hallID string, date time.Time) ([]ledger.FreeWindow, error) {
	if m.availabilityFunc != nil {
		return m.availabilityFunc(ctx, hallID, date)
	}
	return nil, nil
}

func (m *mockBookingService) ExpireStalePending(ctx context.Context) (int, error) { return 0, nil }

func (m *mockBookingService) CompleteElapsed(ctx context.Context) (int, error) { return 0, nil }

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:                 log,
		ReadTimeout:         5 * time.Second,
		WriteTimeout:        5 * time.Second,
		RequestExpiryWindow: 48 * time.Hour,
	}
}

func newTestService(repo *mockRequestRepository, bookings *mockBookingService, cfg *config.Config) RequestService {
	return &requestService{
		repo:      repo,
		bookings:  bookings,
		validator: validator.NewRequestValidator(cfg.Log),
		publisher: events.NoopPublisher{},
		cfg:       cfg,
	}
}

func pendingRequest() *model.BookingRequest {
	return &model.BookingRequest{
		HallID:           testHallID,
		RequestingTeamID: testTeamID,
		RequestedDate:    time.Now().UTC().AddDate(0, 0, 7),
		StartTime:        "18:00",
		EndTime:          "19:30",
		Purpose:          "Extra practice",
	}
}

func TestSubmit_StaysPendingWithoutConditions(t *testing.T) {
	cfg := testConfig()

	admitted := 0
	bookings := &mockBookingService{
		admitFunc: func(ctx context.Context, booking *model.Booking) error {
			admitted++
			return nil
		},
	}
	svc := newTestService(&mockRequestRepository{}, bookings, cfg)

	request := pendingRequest()
	if err := svc.Submit(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if request.Status != model.RequestPending {
		t.Errorf("expected pending, got %s", request.Status)
	}
	if request.ExpiresAt.IsZero() {
		t.Error("ExpiresAt must default from the expiry window")
	}
	if admitted != 0 {
		t.Errorf("no conditions means no auto-approval, got %d admissions", admitted)
	}
}

func TestSubmit_AutoApproves(t *testing.T) {
	cfg := testConfig()

	stored := pendingRequest()
	stored.ID = "656e1f77bcf86cd799439099"
	stored.Status = model.RequestPending
	stored.ExpiresAt = time.Now().UTC().Add(48 * time.Hour)

	var updated *model.BookingRequest
	repo := &mockRequestRepository{
		createFunc: func(ctx context.Context, request *model.BookingRequest) error {
			request.ID = stored.ID
			return nil
		},
		findByIDFunc: func(ctx context.Context, id string) (*model.BookingRequest, error) {
			return stored, nil
		},
		updateFunc: func(ctx context.Context, request *model.BookingRequest) error {
			updated = request
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingService{}, cfg)

	request := pendingRequest()
	request.ApprovalConditions = &model.ApprovalConditions{
		MinLeadTimeHours: 24,
		MaxDurationMin:   120,
	}

	if err := svc.Submit(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated == nil {
		t.Fatal("expected the request to be updated by auto-approval")
	}
	if updated.Status != model.RequestApproved {
		t.Errorf("expected approved, got %s", updated.Status)
	}
	if !updated.AutoApproved {
		t.Error("auto-approved request must be flagged")
	}
	if updated.BookingID == "" {
		t.Error("approval must link the created booking")
	}
}

func TestApprove_CapacityRejectionCopiedBack(t *testing.T) {
	cfg := testConfig()

	stored := pendingRequest()
	stored.ID = "656e1f77bcf86cd799439099"
	stored.Status = model.RequestPending
	stored.ExpiresAt = time.Now().UTC().Add(time.Hour)

	var updated *model.BookingRequest
	repo := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.BookingRequest, error) {
			return stored, nil
		},
		updateFunc: func(ctx context.Context, request *model.BookingRequest) error {
			updated = request
			return nil
		},
	}
	bookings := &mockBookingService{
		admitFunc: func(ctx context.Context, booking *model.Booking) error {
			return apperrors.CapacityExceeded("Booking conflicts with existing bookings", nil)
		},
	}
	svc := newTestService(repo, bookings, cfg)

	_, err := svc.Approve(context.Background(), stored.ID, "coordinator", "")
	if err == nil {
		t.Fatal("expected capacity exceeded error")
	}

	if updated == nil || updated.Status != model.RequestRejected {
		t.Fatalf("request must be rejected after a capacity failure, got %+v", updated)
	}
	if updated.RejectionReason == "" {
		t.Error("rejection reason must be copied from the admission failure")
	}
}

func TestApprove_UpdateFailureReleasesBooking(t *testing.T) {
	cfg := testConfig()

	stored := pendingRequest()
	stored.ID = "656e1f77bcf86cd799439099"
	stored.Status = model.RequestPending
	stored.ExpiresAt = time.Now().UTC().Add(time.Hour)

	repo := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.BookingRequest, error) {
			return stored, nil
		},
		updateFunc: func(ctx context.Context, request *model.BookingRequest) error {
			return errors.New("write conflict")
		},
	}
	var cancelled string
	bookings := &mockBookingService{
		cancelFunc: func(ctx context.Context, id, reason string) error {
			cancelled = id
			return nil
		},
	}
	svc := newTestService(repo, bookings, cfg)

	_, err := svc.Approve(context.Background(), stored.ID, "coordinator", "")
	if err == nil {
		t.Fatal("expected error when the request update fails")
	}

	// The admitted booking must be cancelled, or a retried Approve
	// collides with it and wrongly rejects the request.
	if cancelled != "656e1f77bcf86cd799439061" {
		t.Errorf("expected the admitted booking to be cancelled, got %q", cancelled)
	}
}

func TestApprove_ExpiredRequest(t *testing.T) {
	cfg := testConfig()

	stored := pendingRequest()
	stored.ID = "656e1f77bcf86cd799439099"
	stored.Status = model.RequestPending
	stored.ExpiresAt = time.Now().UTC().Add(-time.Hour)

	var updated *model.BookingRequest
	repo := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.BookingRequest, error) {
			return stored, nil
		},
		updateFunc: func(ctx context.Context, request *model.BookingRequest) error {
			updated = request
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingService{}, cfg)

	_, err := svc.Approve(context.Background(), stored.ID, "coordinator", "")
	if err == nil {
		t.Fatal("expected request expired error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeRequestExpired {
		t.Errorf("expected REQUEST_EXPIRED, got %v", err)
	}
	if updated == nil || updated.Status != model.RequestExpired {
		t.Errorf("acting on an expired request must mark it expired, got %+v", updated)
	}
}

func TestCancel_OnlyPending(t *testing.T) {
	cfg := testConfig()

	stored := pendingRequest()
	stored.ID = "656e1f77bcf86cd799439099"
	stored.Status = model.RequestApproved

	repo := &mockRequestRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.BookingRequest, error) {
			return stored, nil
		},
	}
	svc := newTestService(repo, &mockBookingService{}, cfg)

	err := svc.Cancel(context.Background(), stored.ID)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestExpireStale(t *testing.T) {
	cfg := testConfig()

	r1 := pendingRequest()
	r1.ID = "656e1f77bcf86cd799439098"
	r1.Status = model.RequestPending
	r2 := pendingRequest()
	r2.ID = "656e1f77bcf86cd799439099"
	r2.Status = model.RequestPending

	var expired []*model.BookingRequest
	repo := &mockRequestRepository{
		expiredFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.BookingRequest, error) {
			return []*model.BookingRequest{r1, r2}, nil
		},
		updateFunc: func(ctx context.Context, request *model.BookingRequest) error {
			expired = append(expired, request)
			return nil
		},
	}
	svc := newTestService(repo, &mockBookingService{}, cfg)

	count, err := svc.ExpireStale(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 expired, got %d", count)
	}
	for _, r := range expired {
		if r.Status != model.RequestExpired {
			t.Errorf("request %s must be expired, got %s", r.ID, r.Status)
		}
	}
}
