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

	requesterrors "hallbook/internal/requests/errors"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	"hallbook/pkg/model"
)

const CollectionName = "Booking_requests"

type mongoRequestRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type RequestRepository interface {
	Create(ctx context.Context, request *model.BookingRequest) error
	FindByID(ctx context.Context, id string) (*model.BookingRequest, error)
	FindAll(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.BookingRequest, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	Update(ctx context.Context, request *model.BookingRequest) error
	FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.BookingRequest, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

// SearchFilter narrows request listings. Zero values are ignored.
type SearchFilter struct {
	HallID string
	TeamID string
	Status string
}

func NewMongoRequestRepository(cfg *config.Config) RequestRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRequestRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoRequestRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoRequestRepository) Create(ctx context.Context, request *model.BookingRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	request.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, request)
	if err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		request.ID = oid.Hex()
	}
	return nil
}

func (r *mongoRequestRepository) FindByID(ctx context.Context, id string) (*model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", requesterrors.ErrInvalidID, id)
	}

	var request model.BookingRequest
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&request)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, requesterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking request: %w", err)
	}

	return &request, nil
}

func (r *mongoRequestRepository) FindAll(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.BookingRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode booking requests: %w", err)
	}

	return requests, nil
}

func (r *mongoRequestRepository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count booking requests: %w", err)
	}

	return count, nil
}

// Update persists the mutable review state of a request.
func (r *mongoRequestRepository) Update(ctx context.Context, request *model.BookingRequest) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(request.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", requesterrors.ErrInvalidID, request.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"status":           request.Status,
			"auto_approved":    request.AutoApproved,
			"reviewed_by":      request.ReviewedBy,
			"reviewed_at":      request.ReviewedAt,
			"review_notes":     request.ReviewNotes,
			"rejection_reason": request.RejectionReason,
			"booking_id":       request.BookingID,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking request: %w", err)
	}
	if result.MatchedCount == 0 {
		return requesterrors.ErrNotFound
	}
	return nil
}

func (r *mongoRequestRepository) FindExpiredPending(ctx context.Context, now time.Time, limit int) ([]*model.BookingRequest, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.RequestPending,
		"expires_at": bson.M{"$lt": now},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "expires_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find expired requests: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []*model.BookingRequest
	if err = cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode expired requests: %w", err)
	}

	return requests, nil
}

func buildSearchFilter(f SearchFilter) bson.M {
	filter := bson.M{}
	if f.HallID != "" {
		filter["hall_id"] = f.HallID
	}
	if f.TeamID != "" {
		filter["requesting_team_id"] = f.TeamID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *mongoRequestRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
