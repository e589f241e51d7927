package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusrooms/roomwatch/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a requested document does not exist
var ErrNotFound = errors.New("not found")

// MonitorRepository handles monitoring request operations
type MonitorRepository struct {
	collection *mongo.Collection
}

// NewMonitorRepository creates a new monitor repository
func NewMonitorRepository(db *MongoDB) *MonitorRepository {
	return &MonitorRepository{
		collection: db.GetCollection(CollectionMonitoringRequests),
	}
}

// Create inserts a new monitoring request
func (r *MonitorRepository) Create(ctx context.Context, req *model.MonitoringRequest) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ensure ID is generated if not set
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, req)
	if err != nil {
		return fmt.Errorf("failed to create monitoring request: %w", err)
	}

	return nil
}

// GetByRequestID retrieves a monitoring request by its request id
func (r *MonitorRepository) GetByRequestID(ctx context.Context, requestID string) (*model.MonitoringRequest, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var req model.MonitoringRequest
	err := r.collection.FindOne(ctxTimeout, bson.M{"request_id": requestID}).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get monitoring request: %w", err)
	}

	return &req, nil
}

// FindActive retrieves all monitoring requests still in the active state,
// oldest first so long-waiting requests are evaluated first.
func (r *MonitorRepository) FindActive(ctx context.Context) ([]model.MonitoringRequest, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctxTimeout, bson.M{"status": model.StatusActive}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find active monitoring requests: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var requests []model.MonitoringRequest
	if err := cursor.All(ctxTimeout, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode monitoring requests: %w", err)
	}

	return requests, nil
}

// FindByUser retrieves all monitoring requests created by a user, newest first
func (r *MonitorRepository) FindByUser(ctx context.Context, userID string) ([]model.MonitoringRequest, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find monitoring requests: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var requests []model.MonitoringRequest
	if err := cursor.All(ctxTimeout, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode monitoring requests: %w", err)
	}

	return requests, nil
}

// List retrieves monitoring requests with filtering and pagination
func (r *MonitorRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.MonitoringRequest, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Count total documents
	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count monitoring requests: %w", err)
	}

	// Calculate pagination
	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list monitoring requests: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var requests []model.MonitoringRequest
	if err := cursor.All(ctxTimeout, &requests); err != nil {
		return nil, 0, fmt.Errorf("failed to decode monitoring requests: %w", err)
	}

	return requests, total, nil
}

// RecordCheck bumps the check counter and last-check timestamp of an active
// request. Terminal requests are left untouched.
func (r *MonitorRepository) RecordCheck(ctx context.Context, requestID string, checkedAt time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"request_id": requestID,
		"status":     model.StatusActive,
	}
	update := bson.M{
		"$set": bson.M{"last_check": checkedAt},
		"$inc": bson.M{"check_count": 1},
	}

	_, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("failed to record check: %w", err)
	}

	return nil
}

// transition atomically moves an active request into a terminal state. The
// filter on the active status is the mutual exclusion primitive: of two
// concurrent checkers only one observes ModifiedCount > 0 and wins.
func (r *MonitorRepository) transition(ctx context.Context, filter bson.M, set bson.M) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter["status"] = model.StatusActive

	result, err := r.collection.UpdateOne(ctxTimeout, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update monitoring request status: %w", err)
	}

	return result.ModifiedCount > 0, nil
}

// Complete marks an active request as completed with its booking details.
// Returns false if the request was no longer active.
func (r *MonitorRepository) Complete(ctx context.Context, requestID string, details *model.SuccessDetails) (bool, error) {
	return r.transition(ctx, bson.M{"request_id": requestID}, bson.M{
		"status":          model.StatusCompleted,
		"success_details": details,
	})
}

// Fail marks an active request as errored with a message.
// Returns false if the request was no longer active.
func (r *MonitorRepository) Fail(ctx context.Context, requestID, message string) (bool, error) {
	return r.transition(ctx, bson.M{"request_id": requestID}, bson.M{
		"status":        model.StatusError,
		"error_message": message,
	})
}

// Stop marks an active request as stopped. Owned requests can only be stopped
// by their owner; anonymous requests can be stopped by anyone.
// Returns false if no matching active request existed.
func (r *MonitorRepository) Stop(ctx context.Context, requestID, ownerID string) (bool, error) {
	return r.transition(ctx, stopFilter(requestID, ownerID), bson.M{
		"status": model.StatusStopped,
	})
}

// stopFilter scopes a stop to requests the caller may settle. user_id is
// written with omitempty, so anonymous requests carry no user_id field.
func stopFilter(requestID, ownerID string) bson.M {
	filter := bson.M{"request_id": requestID}

	if ownerID == "" {
		filter["user_id"] = bson.M{"$exists": false}
		return filter
	}

	filter["$or"] = bson.A{
		bson.M{"user_id": ownerID},
		bson.M{"user_id": bson.M{"$exists": false}},
	}
	return filter
}
