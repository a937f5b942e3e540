package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	catalogerrors "hallbook/internal/catalog/errors"
	"hallbook/internal/catalog/repository"
	"hallbook/internal/catalog/validator"
	"hallbook/pkg/config"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"
)

type CatalogService interface {
	CreateHall(ctx context.Context, hall *model.Hall) error
	GetHall(ctx context.Context, id string) (*model.Hall, error)
	GetHallWithCourts(ctx context.Context, id string) (*model.Hall, []*model.Court, error)
	ListHalls(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, int64, error)
	UpdateHall(ctx context.Context, id string, hall *model.Hall) error
	DeactivateHall(ctx context.Context, id string) error
	ListCourts(ctx context.Context, hallID string) ([]*model.Court, error)
}

type catalogService struct {
	repo      repository.HallRepository
	validator *validator.HallValidator
	cfg       *config.Config
}

func NewCatalogService(
	repo repository.HallRepository,
	validator *validator.HallValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

// CreateHall persists a hall and seeds one court record per court. Court 1
// is the main court; when it is booked the whole hall is treated as
// occupied.
func (s *catalogService) CreateHall(ctx context.Context, hall *model.Hall) error {
	s.applyDefaults(hall)
	s.sanitize(hall)
	if err := s.validate(hall); err != nil {
		return err
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, hall); err != nil {
			return apperrors.Internal("Failed to create hall", err)
		}

		for i := 1; i <= hall.CourtCount; i++ {
			court := &model.Court{
				HallID:      hall.ID,
				Name:        fmt.Sprintf("%s - Court %d", hall.Name, i),
				CourtNumber: i,
				IsMainCourt: i == 1,
				SortOrder:   i,
				HourlyRate:  hall.HourlyRate,
				IsActive:    true,
			}
			if err := s.validator.ValidateCourt(court); err != nil {
				return apperrors.Validation("Court validation failed", map[string]any{"error": err.Error()})
			}
			if err := s.repo.CreateCourt(sessCtx, court); err != nil {
				return apperrors.Internal("Failed to create court", err)
			}
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create hall", "error", err)
		return err
	}

	s.cfg.Log.Info("Hall created successfully",
		"id", hall.ID,
		"club_id", hall.ClubID,
		"hall_type", hall.HallType,
		"court_count", hall.CourtCount,
	)
	return nil
}

func (s *catalogService) GetHall(ctx context.Context, id string) (*model.Hall, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Hall ID cannot be empty")
	}

	hall, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrHallNotFound) {
			return nil, apperrors.NotFoundWithID("Hall", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid hall ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve hall", err)
	}

	return hall, nil
}

func (s *catalogService) GetHallWithCourts(ctx context.Context, id string) (*model.Hall, []*model.Court, error) {
	hall, err := s.GetHall(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	courts, err := s.repo.FindCourtsByHall(ctx, hall.ID)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to retrieve courts", err)
	}

	return hall, courts, nil
}

func (s *catalogService) ListHalls(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, int64, error) {
	var count int64
	var halls []*model.Hall
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, clubID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count halls", "error", errCount)
			errCount = apperrors.Internal("Failed to count halls", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		halls, errFind = s.repo.FindAll(ctx, clubID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list halls", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve halls", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return halls, count, nil
}

func (s *catalogService) UpdateHall(ctx context.Context, id string, hall *model.Hall) error {
	if id == "" {
		return apperrors.InvalidInput("Hall ID cannot be empty")
	}

	existing, err := s.GetHall(ctx, id)
	if err != nil {
		return err
	}

	// Court count is fixed after creation; court records would drift.
	hall.CourtCount = existing.CourtCount
	hall.ClubID = existing.ClubID

	s.sanitize(hall)
	if err := s.validate(hall); err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, id, hall); err != nil {
		if errors.Is(err, catalogerrors.ErrHallNotFound) {
			return apperrors.NotFoundWithID("Hall", id)
		}
		return apperrors.Internal("Failed to update hall", err)
	}

	s.cfg.Log.Info("Hall updated successfully", "id", id)
	return nil
}

func (s *catalogService) DeactivateHall(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Hall ID cannot be empty")
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, catalogerrors.ErrHallNotFound) {
			return apperrors.NotFoundWithID("Hall", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid hall ID format")
		}
		return apperrors.Internal("Failed to deactivate hall", err)
	}

	s.cfg.Log.Info("Hall deactivated", "id", id)
	return nil
}

func (s *catalogService) ListCourts(ctx context.Context, hallID string) ([]*model.Court, error) {
	if hallID == "" {
		return nil, apperrors.InvalidInput("Hall ID cannot be empty")
	}

	courts, err := s.repo.FindCourtsByHall(ctx, hallID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve courts", err)
	}

	return courts, nil
}

// --- Helpers ---

func (s *catalogService) applyDefaults(h *model.Hall) {
	if h.HallType == "" {
		h.HallType = model.HallTypeSingle
	}
	if h.CourtCount == 0 {
		switch h.HallType {
		case model.HallTypeSingle:
			h.CourtCount = 1
		case model.HallTypeDouble:
			h.CourtCount = 2
		case model.HallTypeTriple:
			h.CourtCount = 3
		default:
			h.CourtCount = 1
		}
	}
	if h.MinBookingDurationMin == 0 {
		h.MinBookingDurationMin = s.cfg.DefaultMinBookingDurationMin
	}
	if h.BookingIncrementMin == 0 {
		h.BookingIncrementMin = s.cfg.DefaultBookingIncrementMin
	}
	if h.OpeningTime == "" {
		h.OpeningTime = s.cfg.DefaultOpeningTime
	}
	if h.ClosingTime == "" {
		h.ClosingTime = s.cfg.DefaultClosingTime
	}
	h.IsActive = true
}

func (s *catalogService) sanitize(h *model.Hall) {
	h.Name = sanitizer.NormalizeName(h.Name)
	h.ContactPhone = sanitizer.NormalizePhone(h.ContactPhone)
}

func (s *catalogService) validate(hall *model.Hall) error {
	if err := s.validator.Validate(hall); err != nil {
		s.cfg.Log.Warn("Hall validation failed", "error", err)
		return apperrors.Validation("Hall validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}
