package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/internal/bookings/repository"
	"hallbook/internal/bookings/validator"
	"hallbook/internal/events"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

const (
	testHallID  = "656e1f77bcf86cd799439011"
	testCourtID = "656e1f77bcf86cd799439021"
	testTeamID  = "656e1f77bcf86cd799439031"
	testGameID  = "656e1f77bcf86cd799439041"
)

var testDate = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

// Mock repositories for testing
type mockBookingRepository struct {
	createFunc       func(ctx context.Context, booking *model.Booking) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	findAllFunc      func(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Booking, error)
	countFunc        func(ctx context.Context, filter repository.SearchFilter) (int64, error)
	updateFunc       func(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	updateStatusFunc func(ctx context.Context, booking *model.Booking) error
	findHoldingFunc  func(ctx context.Context, hallID string, date time.Time) ([]*model.Booking, error)
	existsFunc       func(ctx context.Context, slotID string, date time.Time) (bool, error)
	stalePendingFunc func(ctx context.Context, deadline time.Time, limit int) ([]*model.Booking, error)
	elapsedFunc      func(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "656e1f77bcf86cd799439099"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, filter repository.SearchFilter, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context, filter repository.SearchFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, booking)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, booking *model.Booking) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindHoldingByHallAndDate(ctx context.Context, hallID string, date time.Time) ([]*model.Booking, error) {
	if m.findHoldingFunc != nil {
		return m.findHoldingFunc(ctx, hallID, date)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) ExistsForSlotAndDate(ctx context.Context, slotID string, date time.Time) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, slotID, date)
	}
	return false, nil
}

func (m *mockBookingRepository) FindStalePending(ctx context.Context, deadline time.Time, limit int) ([]*model.Booking, error) {
	if m.stalePendingFunc != nil {
		return m.stalePendingFunc(ctx, deadline, limit)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindElapsedConfirmed(ctx context.Context, before time.Time, limit int) ([]*model.Booking, error) {
	if m.elapsedFunc != nil {
		return m.elapsedFunc(ctx, before, limit)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	return nil
}

type mockCatalogService struct {
	hall   *model.Hall
	courts []*model.Court
}

func (m *mockCatalogService) CreateHall(ctx context.Context, hall *model.Hall) error { return nil }

func (m *mockCatalogService) GetHall(ctx context.Context, id string) (*model.Hall, error) {
	return m.hall, nil
}

func (m *mockCatalogService) GetHallWithCourts(ctx context.Context, id string) (*model.Hall, []*model.Court, error) {
	return m.hall, m.courts, nil
}

func (m *mockCatalogService) ListHalls(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, int64, error) {
	return []*model.Hall{m.hall}, 1, nil
}

func (m *mockCatalogService) UpdateHall(ctx context.Context, id string, hall *model.Hall) error {
	return nil
}

func (m *mockCatalogService) DeactivateHall(ctx context.Context, id string) error { return nil }

func (m *mockCatalogService) ListCourts(ctx context.Context, hallID string) ([]*model.Court, error) {
	return m.courts, nil
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:               log,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		SlotLockTTL:       30 * time.Second,
		PendingBookingTTL: 30 * time.Minute,
		GamePriority:      10,
		TrainingPriority:  0,
		GameBufferMin:     30,
	}
}

func singleHallCatalog() *mockCatalogService {
	return &mockCatalogService{
		hall: &model.Hall{
			ID:          testHallID,
			CourtCount:  1,
			IsActive:    true,
			OpeningTime: "08:00",
			ClosingTime: "22:00",
		},
		courts: []*model.Court{
			{ID: testCourtID, HallID: testHallID, CourtNumber: 1, IsMainCourt: true},
		},
	}
}

func newTestService(repo *mockBookingRepository, locks *mockSlotLockRepository, catalog *mockCatalogService, cfg *config.Config) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  locks,
		catalog:   catalog,
		validator: validator.NewBookingValidator(cfg.Log),
		publisher: events.NoopPublisher{},
		cfg:       cfg,
	}
}

func candidateBooking() *model.Booking {
	return &model.Booking{
		HallID:      testHallID,
		TeamID:      testTeamID,
		BookingDate: testDate,
		StartTime:   "18:00",
		EndTime:     "19:30",
	}
}

func confirmedTraining(id string) *model.Booking {
	return &model.Booking{
		ID:          id,
		HallID:      testHallID,
		TeamID:      testTeamID,
		BookingDate: testDate,
		StartTime:   "18:00",
		EndTime:     "19:30",
		Priority:    0,
		Status:      model.BookingConfirmed,
		BookingType: model.BookingTypeRegular,
		CreatedAt:   time.Now().Add(-24 * time.Hour),
	}
}

func TestAdmit_ConfirmsWhenFree(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	booking := candidateBooking()
	if err := svc.Admit(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", booking.Status)
	}
	if booking.ConfirmedAt == nil {
		t.Error("ConfirmedAt must be set on admission")
	}
	if booking.DurationMin != 90 {
		t.Errorf("expected duration 90, got %d", booking.DurationMin)
	}
}

func TestAdmit_GamePreemptsTraining(t *testing.T) {
	cfg := testConfig()

	victim := confirmedTraining("656e1f77bcf86cd799439051")
	var released []*model.Booking
	repo := &mockBookingRepository{
		findHoldingFunc: func(ctx context.Context, hallID string, date time.Time) ([]*model.Booking, error) {
			return []*model.Booking{victim}, nil
		},
		updateStatusFunc: func(ctx context.Context, booking *model.Booking) error {
			released = append(released, booking)
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	game := candidateBooking()
	game.GameID = testGameID
	game.StartTime = "18:30"
	game.EndTime = "20:00"

	if err := svc.Admit(context.Background(), game); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if game.Priority != cfg.GamePriority {
		t.Errorf("game booking must default to game priority, got %d", game.Priority)
	}
	if game.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", game.Status)
	}
	if len(released) != 1 {
		t.Fatalf("expected 1 preempted booking, got %d", len(released))
	}
	if released[0].Status != model.BookingReleased {
		t.Errorf("victim must be released, got %s", released[0].Status)
	}
	if released[0].ReleaseReason != model.ReleaseReasonPreempted {
		t.Errorf("wrong release reason: %s", released[0].ReleaseReason)
	}
}

func TestAdmit_EqualPriorityRejected(t *testing.T) {
	cfg := testConfig()

	existing := confirmedTraining("656e1f77bcf86cd799439051")
	existing.Priority = 10
	repo := &mockBookingRepository{
		findHoldingFunc: func(ctx context.Context, hallID string, date time.Time) ([]*model.Booking, error) {
			return []*model.Booking{existing}, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	candidate := candidateBooking()
	candidate.Priority = 10

	err := svc.Admit(context.Background(), candidate)
	if err == nil {
		t.Fatal("expected capacity exceeded error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeCapacityExceeded {
		t.Errorf("expected CAPACITY_EXCEEDED, got %v", err)
	}
}

func TestAdmit_SlotLockBusy(t *testing.T) {
	cfg := testConfig()

	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, mongo.WriteException{
				WriteErrors: []mongo.WriteError{{Code: 11000}},
			}
		},
	}
	svc := newTestService(&mockBookingRepository{}, locks, singleHallCatalog(), cfg)

	err := svc.Admit(context.Background(), candidateBooking())
	if err == nil {
		t.Fatal("expected resource busy error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeResourceBusy {
		t.Errorf("expected RESOURCE_BUSY, got %v", err)
	}
}

func TestAdmit_StagedPendingHoldsNoCapacityAndPreemptsNobody(t *testing.T) {
	cfg := testConfig()

	victim := confirmedTraining("656e1f77bcf86cd799439051")
	var statusUpdates int
	repo := &mockBookingRepository{
		findHoldingFunc: func(ctx context.Context, hallID string, date time.Time) ([]*model.Booking, error) {
			return []*model.Booking{victim}, nil
		},
		updateStatusFunc: func(ctx context.Context, booking *model.Booking) error {
			statusUpdates++
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	staged := candidateBooking()
	staged.Status = model.BookingPending
	staged.GameID = testGameID

	if err := svc.Admit(context.Background(), staged); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if staged.Status != model.BookingPending {
		t.Errorf("staged booking must stay pending, got %s", staged.Status)
	}
	if statusUpdates != 0 {
		t.Errorf("staged admission must not preempt, got %d status updates", statusUpdates)
	}
}

func TestAdmit_RejectsUnknownCourt(t *testing.T) {
	cfg := testConfig()
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	candidate := candidateBooking()
	candidate.CourtIDs = []string{"656e1f77bcf86cd799439777"}

	err := svc.Admit(context.Background(), candidate)
	if err == nil {
		t.Fatal("expected invalid input error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestAdmit_RejectsMisalignedStart(t *testing.T) {
	cfg := testConfig()
	catalog := singleHallCatalog()
	catalog.hall.BookingIncrementMin = 30
	svc := newTestService(&mockBookingRepository{}, &mockSlotLockRepository{}, catalog, cfg)

	candidate := candidateBooking()
	candidate.StartTime = "18:10"
	candidate.EndTime = "19:40"

	err := svc.Admit(context.Background(), candidate)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestCancel_Idempotent(t *testing.T) {
	cfg := testConfig()

	cancelled := confirmedTraining("656e1f77bcf86cd799439051")
	cancelled.Status = model.BookingCancelled

	var statusUpdates int
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return cancelled, nil
		},
		updateStatusFunc: func(ctx context.Context, booking *model.Booking) error {
			statusUpdates++
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	if err := svc.Cancel(context.Background(), cancelled.ID, "again"); err != nil {
		t.Fatalf("cancelling a cancelled booking must succeed, got %v", err)
	}
	if statusUpdates != 0 {
		t.Errorf("idempotent cancel must not write, got %d updates", statusUpdates)
	}
}

func TestCancel_CompletedConflicts(t *testing.T) {
	cfg := testConfig()

	completed := confirmedTraining("656e1f77bcf86cd799439051")
	completed.Status = model.BookingCompleted

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return completed, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	err := svc.Cancel(context.Background(), completed.ID, "too late")
	if err == nil {
		t.Fatal("expected conflict error")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestNoShow_RequiresConfirmed(t *testing.T) {
	cfg := testConfig()

	pending := confirmedTraining("656e1f77bcf86cd799439051")
	pending.Status = model.BookingPending

	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return pending, nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	if err := svc.NoShow(context.Background(), pending.ID); err == nil {
		t.Fatal("no-show on a pending booking must fail")
	}
}

func TestSubstitute_SwapsTeams(t *testing.T) {
	cfg := testConfig()

	original := confirmedTraining("656e1f77bcf86cd799439051")
	var created *model.Booking
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return original, nil
		},
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = "656e1f77bcf86cd799439061"
			created = booking
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	substituteTeam := "656e1f77bcf86cd799439032"
	replacement, err := svc.Substitute(context.Background(), original.ID, substituteTeam)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if original.Status != model.BookingSubstituted {
		t.Errorf("original must be substituted, got %s", original.Status)
	}
	if created == nil || created.TeamID != substituteTeam {
		t.Fatalf("replacement must carry the substitute team, got %+v", created)
	}
	if replacement.OriginalTeamID != testTeamID {
		t.Errorf("replacement must record the original team, got %s", replacement.OriginalTeamID)
	}
	if replacement.BookingType != model.BookingTypeSubstitute {
		t.Errorf("replacement must be a substitute booking, got %s", replacement.BookingType)
	}
	if replacement.StartTime != original.StartTime || replacement.EndTime != original.EndTime {
		t.Error("replacement must keep the identical window")
	}
}

func TestExpireStalePending(t *testing.T) {
	cfg := testConfig()

	stale1 := confirmedTraining("656e1f77bcf86cd799439051")
	stale1.Status = model.BookingPending
	stale2 := confirmedTraining("656e1f77bcf86cd799439052")
	stale2.Status = model.BookingPending

	var expired []*model.Booking
	repo := &mockBookingRepository{
		stalePendingFunc: func(ctx context.Context, deadline time.Time, limit int) ([]*model.Booking, error) {
			return []*model.Booking{stale1, stale2}, nil
		},
		updateStatusFunc: func(ctx context.Context, booking *model.Booking) error {
			expired = append(expired, booking)
			return nil
		},
	}
	svc := newTestService(repo, &mockSlotLockRepository{}, singleHallCatalog(), cfg)

	count, err := svc.ExpireStalePending(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 expired, got %d", count)
	}
	for _, b := range expired {
		if b.Status != model.BookingExpired {
			t.Errorf("booking %s must be expired, got %s", b.ID, b.Status)
		}
	}
}
