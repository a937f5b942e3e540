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

	sloterrors "hallbook/internal/timeslots/errors"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	"hallbook/pkg/model"
)

const (
	CollectionName           = "Time_slots"
	AssignmentCollectionName = "Time_slot_assignments"
)

type mongoTimeSlotRepository struct {
	cfg         *config.Config
	db          *mongo.Database
	collection  *mongo.Collection
	assignments *mongo.Collection
	txManager   mongotx.TransactionManager
}

type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	FindByID(ctx context.Context, id string) (*model.TimeSlot, error)
	FindAll(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.TimeSlot, error)
	Count(ctx context.Context, filter SearchFilter) (int64, error)
	FindActiveByHall(ctx context.Context, hallID string) ([]*model.TimeSlot, error)
	Update(ctx context.Context, slot *model.TimeSlot) error
	Delete(ctx context.Context, id string) error
	CreateAssignment(ctx context.Context, assignment *model.TimeSlotTeamAssignment) error
	DeleteAssignment(ctx context.Context, slotID, teamID string) error
	FindAssignments(ctx context.Context, slotID string) ([]*model.TimeSlotTeamAssignment, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

// SearchFilter narrows slot listings. Zero values are ignored.
type SearchFilter struct {
	HallID   string
	TeamID   string
	Status   string
	SlotType string
}

func NewMongoTimeSlotRepository(cfg *config.Config) TimeSlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTimeSlotRepository{
		cfg:         cfg,
		db:          db,
		collection:  db.Collection(CollectionName),
		assignments: db.Collection(AssignmentCollectionName),
		txManager:   mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoTimeSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoTimeSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to create time slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTimeSlotRepository) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, id)
	}

	var slot model.TimeSlot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find time slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoTimeSlotRepository) FindAll(ctx context.Context, filter SearchFilter, limit int, offset int64) ([]*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildSearchFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find time slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode time slots: %w", err)
	}

	return slots, nil
}

func (r *mongoTimeSlotRepository) Count(ctx context.Context, filter SearchFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count time slots: %w", err)
	}

	return count, nil
}

// FindActiveByHall returns every active slot of a hall, for overlap checks
// against new or updated slots.
func (r *mongoTimeSlotRepository) FindActiveByHall(ctx context.Context, hallID string) ([]*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"hall_id": hallID,
		"status":  model.SlotStatusActive,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find hall time slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode hall time slots: %w", err)
	}

	return slots, nil
}

// Update persists the mutable definition of a slot. Identity and audit
// fields are never touched.
func (r *mongoTimeSlotRepository) Update(ctx context.Context, slot *model.TimeSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slot.ID)
	if err != nil {
		return fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, slot.ID)
	}

	update := bson.M{
		"$set": bson.M{
			"team_id":           slot.TeamID,
			"title":             slot.Title,
			"day_of_week":       slot.DayOfWeek,
			"start_time":        slot.StartTime,
			"end_time":          slot.EndTime,
			"uses_custom_times": slot.UsesCustomTimes,
			"custom_times":      slot.CustomTimes,
			"status":            slot.Status,
			"valid_until":       slot.ValidUntil,
			"excluded_dates":    slot.ExcludedDates,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update time slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return sloterrors.ErrNotFound
	}
	return nil
}

func (r *mongoTimeSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete time slot: %w", err)
	}
	if result.DeletedCount == 0 {
		return sloterrors.ErrNotFound
	}
	return nil
}

// CreateAssignment inserts a (slot, team) link. The collection carries a
// unique index on the pair, so a duplicate insert surfaces as
// ErrAssignmentExists.
func (r *mongoTimeSlotRepository) CreateAssignment(ctx context.Context, assignment *model.TimeSlotTeamAssignment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	assignment.AssignedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.assignments.InsertOne(ctx, assignment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return sloterrors.ErrAssignmentExists
		}
		return fmt.Errorf("failed to create slot assignment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		assignment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTimeSlotRepository) DeleteAssignment(ctx context.Context, slotID, teamID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"time_slot_id": slotID,
		"team_id":      teamID,
	}
	result, err := r.assignments.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete slot assignment: %w", err)
	}
	if result.DeletedCount == 0 {
		return sloterrors.ErrAssignmentMissing
	}
	return nil
}

func (r *mongoTimeSlotRepository) FindAssignments(ctx context.Context, slotID string) ([]*model.TimeSlotTeamAssignment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}})
	cursor, err := r.assignments.Find(ctx, bson.M{"time_slot_id": slotID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slot assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var assignments []*model.TimeSlotTeamAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, fmt.Errorf("failed to decode slot assignments: %w", err)
	}

	return assignments, nil
}

func buildSearchFilter(f SearchFilter) bson.M {
	filter := bson.M{}
	if f.HallID != "" {
		filter["hall_id"] = f.HallID
	}
	if f.TeamID != "" {
		filter["team_id"] = f.TeamID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.SlotType != "" {
		filter["slot_type"] = f.SlotType
	}
	return filter
}

func (r *mongoTimeSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
