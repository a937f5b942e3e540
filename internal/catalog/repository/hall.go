package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	catalogerrors "hallbook/internal/catalog/errors"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	"hallbook/pkg/model"
)

const (
	HallCollectionName  = "Halls"
	CourtCollectionName = "Courts"
)

type HallRepository interface {
	Create(ctx context.Context, hall *model.Hall) error
	FindByID(ctx context.Context, id string) (*model.Hall, error)
	FindAll(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, error)
	Count(ctx context.Context, clubID string) (int64, error)
	Update(ctx context.Context, id string, hall *model.Hall) (*mongo.UpdateResult, error)
	SetActive(ctx context.Context, id string, active bool) error
	CreateCourt(ctx context.Context, court *model.Court) error
	FindCourtByID(ctx context.Context, id string) (*model.Court, error)
	FindCourtsByHall(ctx context.Context, hallID string) ([]*model.Court, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoHallRepository struct {
	cfg       *config.Config
	db        *mongo.Database
	halls     *mongo.Collection
	courts    *mongo.Collection
	txManager mongotx.TransactionManager
}

func NewMongoHallRepository(cfg *config.Config) HallRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHallRepository{
		cfg:       cfg,
		db:        db,
		halls:     db.Collection(HallCollectionName),
		courts:    db.Collection(CourtCollectionName),
		txManager: mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoHallRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoHallRepository) Create(ctx context.Context, hall *model.Hall) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	hall.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.halls.InsertOne(ctx, hall)
	if err != nil {
		return fmt.Errorf("failed to create hall: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		hall.ID = oid.Hex()
	}
	return nil
}

func (r *mongoHallRepository) FindByID(ctx context.Context, id string) (*model.Hall, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var hall model.Hall
	err = r.halls.FindOne(ctx, bson.M{"_id": objectID}).Decode(&hall)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrHallNotFound
		}
		return nil, fmt.Errorf("failed to find hall: %w", err)
	}

	return &hall, nil
}

func (r *mongoHallRepository) FindAll(ctx context.Context, clubID string, limit int, offset int64) ([]*model.Hall, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if clubID != "" {
		filter["club_id"] = clubID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.halls.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find halls: %w", err)
	}
	defer cursor.Close(ctx)

	var halls []*model.Hall
	if err = cursor.All(ctx, &halls); err != nil {
		return nil, fmt.Errorf("failed to decode halls: %w", err)
	}

	return halls, nil
}

func (r *mongoHallRepository) Count(ctx context.Context, clubID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if clubID != "" {
		filter["club_id"] = clubID
	}

	count, err := r.halls.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count halls: %w", err)
	}

	return count, nil
}

func (r *mongoHallRepository) Update(ctx context.Context, id string, hall *model.Hall) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":                       hall.Name,
			"hall_type":                  hall.HallType,
			"court_count":                hall.CourtCount,
			"supports_parallel_bookings": hall.SupportsParallelBookings,
			"min_booking_duration_min":   hall.MinBookingDurationMin,
			"booking_increment_min":      hall.BookingIncrementMin,
			"opening_time":               hall.OpeningTime,
			"closing_time":               hall.ClosingTime,
			"capacity":                   hall.Capacity,
			"contact_phone":              hall.ContactPhone,
			"hourly_rate":                hall.HourlyRate,
			"fallback_hall_id":           hall.FallbackHallID,
			"fallback_day_of_week":       hall.FallbackDayOfWeek,
			"fallback_start_time":        hall.FallbackStartTime,
			"fallback_end_time":          hall.FallbackEndTime,
			"is_active":                  hall.IsActive,
		},
	}

	result, err := r.halls.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update hall: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, catalogerrors.ErrHallNotFound
	}

	return result, nil
}

func (r *mongoHallRepository) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	result, err := r.halls.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"is_active": active}})
	if err != nil {
		return fmt.Errorf("failed to update hall active flag: %w", err)
	}

	if result.MatchedCount == 0 {
		return catalogerrors.ErrHallNotFound
	}

	return nil
}

func (r *mongoHallRepository) CreateCourt(ctx context.Context, court *model.Court) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	court.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.courts.InsertOne(ctx, court)
	if err != nil {
		return fmt.Errorf("failed to create court: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		court.ID = oid.Hex()
	}
	return nil
}

func (r *mongoHallRepository) FindCourtByID(ctx context.Context, id string) (*model.Court, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var court model.Court
	err = r.courts.FindOne(ctx, bson.M{"_id": objectID}).Decode(&court)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to find court: %w", err)
	}

	return &court, nil
}

func (r *mongoHallRepository) FindCourtsByHall(ctx context.Context, hallID string) ([]*model.Court, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "court_number", Value: 1}})

	cursor, err := r.courts.Find(ctx, bson.M{"hall_id": hallID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find courts: %w", err)
	}
	defer cursor.Close(ctx)

	var courts []*model.Court
	if err = cursor.All(ctx, &courts); err != nil {
		return nil, fmt.Errorf("failed to decode courts: %w", err)
	}

	return courts, nil
}

func (r *mongoHallRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
