package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "hallbook/internal/catalog/errors"
	"hallbook/internal/catalog/validator"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

// Mock repository for testing
type mockHallRepository struct {
	createFunc         func(ctx context.Context, hall *model.Hall) error
	findByIDFunc       func(ctx context.Context, id string) (*model.Hall, error)
	findAllFunc        func(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, error)
	countFunc          func(ctx context.Context, clubID string) (int64, error)
	updateFunc         func(ctx context.Context, id string, hall *model.Hall) (*mongo.UpdateResult, error)
	setActiveFunc      func(ctx context.Context, id string, active bool) error
	createCourtFunc    func(ctx context.Context, court *model.Court) error
	findCourtByIDFunc  func(ctx context.Context, id string) (*model.Court, error)
	findCourtsFunc     func(ctx context.Context, hallID string) ([]*model.Court, error)
}

func (m *mockHallRepository) Create(ctx context.Context, hall *model.Hall) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, hall)
	}
	hall.ID = "656e1f77bcf86cd799439011"
	return nil
}

func (m *mockHallRepository) FindByID(ctx context.Context, id string) (*model.Hall, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, catalogerrors.ErrHallNotFound
}

func (m *mockHallRepository) FindAll(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, clubID, limit, offset)
	}
	return []*model.Hall{}, nil
}

func (m *mockHallRepository) Count(ctx context.Context, clubID string) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, clubID)
	}
	return 0, nil
}

func (m *mockHallRepository) Update(ctx context.Context, id string, hall *model.Hall) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, hall)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockHallRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.setActiveFunc != nil {
		return m.setActiveFunc(ctx, id, active)
	}
	return nil
}

func (m *mockHallRepository) CreateCourt(ctx context.Context, court *model.Court) error {
	if m.createCourtFunc != nil {
		return m.createCourtFunc(ctx, court)
	}
	return nil
}

func (m *mockHallRepository) FindCourtByID(ctx context.Context, id string) (*model.Court, error) {
	if m.findCourtByIDFunc != nil {
		return m.findCourtByIDFunc(ctx, id)
	}
	return nil, catalogerrors.ErrCourtNotFound
}

func (m *mockHallRepository) FindCourtsByHall(ctx context.Context, hallID string) ([]*model.Court, error) {
	if m.findCourtsFunc != nil {
		return m.findCourtsFunc(ctx, hallID)
	}
	return []*model.Court{}, nil
}

func (m *mockHallRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})

	return &config.Config{
		Log:                          log,
		ReadTimeout:                  5 * time.Second,
		WriteTimeout:                 5 * time.Second,
		DefaultMinBookingDurationMin: 30,
		DefaultBookingIncrementMin:   30,
		DefaultOpeningTime:           "08:00",
		DefaultClosingTime:           "22:00",
	}
}

func TestCreateHall_SeedsCourts(t *testing.T) {
	cfg := testConfig()

	var createdCourts []*model.Court
	mockRepo := &mockHallRepository{
		createCourtFunc: func(ctx context.Context, court *model.Court) error {
			createdCourts = append(createdCourts, court)
			return nil
		},
	}

	svc := &catalogService{
		repo:      mockRepo,
		validator: validator.NewHallValidator(cfg.Log),
		cfg:       cfg,
	}

	hall := &model.Hall{
		ClubID:   "507f1f77bcf86cd799439011",
		Name:     "Sporthalle Nord",
		HallType: model.HallTypeTriple,
	}

	if err := svc.CreateHall(context.Background(), hall); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hall.CourtCount != 3 {
		t.Errorf("expected court_count 3 for triple hall, got %d", hall.CourtCount)
	}
	if len(createdCourts) != 3 {
		t.Fatalf("expected 3 courts created, got %d", len(createdCourts))
	}
	if !createdCourts[0].IsMainCourt {
		t.Error("court 1 must be the main court")
	}
	if createdCourts[1].IsMainCourt || createdCourts[2].IsMainCourt {
		t.Error("only court 1 may be the main court")
	}
	if hall.MinBookingDurationMin != 30 || hall.BookingIncrementMin != 30 {
		t.Errorf("expected booking defaults of 30 minutes, got %d/%d",
			hall.MinBookingDurationMin, hall.BookingIncrementMin)
	}
	if !hall.IsActive {
		t.Error("new halls must be active")
	}
}

func TestCreateHall_RejectsMismatchedCourtCount(t *testing.T) {
	cfg := testConfig()

	svc := &catalogService{
		repo:      &mockHallRepository{},
		validator: validator.NewHallValidator(cfg.Log),
		cfg:       cfg,
	}

	hall := &model.Hall{
		ClubID:     "507f1f77bcf86cd799439011",
		Name:       "Kleine Halle",
		HallType:   model.HallTypeSingle,
		CourtCount: 4,
	}

	err := svc.CreateHall(context.Background(), hall)
	if err == nil {
		t.Fatal("expected validation error for single hall with 4 courts")
	}

	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetHall_NotFound(t *testing.T) {
	cfg := testConfig()

	svc := &catalogService{
		repo:      &mockHallRepository{},
		validator: validator.NewHallValidator(cfg.Log),
		cfg:       cfg,
	}

	_, err := svc.GetHall(context.Background(), "507f1f77bcf86cd799439011")
	if err == nil {
		t.Fatal("expected not found error")
	}

	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateHall_PreservesCourtCount(t *testing.T) {
	cfg := testConfig()

	existing := &model.Hall{
		ID:         "656e1f77bcf86cd799439011",
		ClubID:     "507f1f77bcf86cd799439011",
		Name:       "Sporthalle Nord",
		HallType:   model.HallTypeDouble,
		CourtCount: 2,
		IsActive:   true,
	}

	var updated *model.Hall
	mockRepo := &mockHallRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Hall, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, hall *model.Hall) (*mongo.UpdateResult, error) {
			updated = hall
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}

	svc := &catalogService{
		repo:      mockRepo,
		validator: validator.NewHallValidator(cfg.Log),
		cfg:       cfg,
	}

	patch := &model.Hall{
		Name:        "Sporthalle Nord Renoviert",
		HallType:    model.HallTypeDouble,
		CourtCount:  7,
		IsActive:    true,
		OpeningTime: "07:00",
		ClosingTime: "23:00",
	}

	if err := svc.UpdateHall(context.Background(), existing.ID, patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.CourtCount != 2 {
		t.Errorf("court count must stay fixed at 2, got %d", updated.CourtCount)
	}
	if updated.ClubID != existing.ClubID {
		t.Errorf("club must stay fixed, got %s", updated.ClubID)
	}
}
