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

// NotificationRepository handles notification log operations
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *MongoDB) *NotificationRepository {
	return &NotificationRepository{
		collection: db.GetCollection(CollectionNotificationLogs),
	}
}

// Create inserts a new notification log
func (r *NotificationRepository) Create(ctx context.Context, log *model.NotificationLog) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ensure ID is generated if not set
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, log)
	if err != nil {
		return fmt.Errorf("failed to create notification log: %w", err)
	}

	return nil
}

// GetByID retrieves a notification log by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.NotificationLog, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var log model.NotificationLog
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification log: %w", err)
	}

	return &log, nil
}

// List retrieves notification logs with filtering and pagination
func (r *NotificationRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.NotificationLog, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Count total documents
	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notification logs: %w", err)
	}

	// Calculate pagination
	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	// Find documents
	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notification logs: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var logs []model.NotificationLog
	if err := cursor.All(ctxTimeout, &logs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode notification logs: %w", err)
	}

	return logs, total, nil
}

// AddAttempt adds a new attempt to an existing notification log
func (r *NotificationRepository) AddAttempt(ctx context.Context, id primitive.ObjectID, attempt model.NotificationAttempt) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{
			"attempts": attempt,
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add attempt: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateStatus updates the final status and completion time of a notification log
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, completedAt time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"final_status": status,
			"completed_at": completedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}
