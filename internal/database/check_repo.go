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

// CheckRepository handles check history operations
type CheckRepository struct {
	collection *mongo.Collection
}

// NewCheckRepository creates a new check repository
func NewCheckRepository(db *MongoDB) *CheckRepository {
	return &CheckRepository{
		collection: db.GetCollection(CollectionCheckHistory),
	}
}

// Create inserts a new check record
func (r *CheckRepository) Create(ctx context.Context, record *model.CheckRecord) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ensure ID is generated if not set
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, record)
	if err != nil {
		return fmt.Errorf("failed to create check record: %w", err)
	}

	return nil
}

// GetByCorrelationID retrieves a check record by correlation ID
func (r *CheckRepository) GetByCorrelationID(ctx context.Context, correlationID string) (*model.CheckRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var record model.CheckRecord
	err := r.collection.FindOne(ctxTimeout, bson.M{"correlation_id": correlationID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get check record: %w", err)
	}

	return &record, nil
}

// List retrieves check history with filtering and pagination
func (r *CheckRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.CheckRecord, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Count total documents
	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count check records: %w", err)
	}

	// Calculate pagination
	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "checked_at", Value: -1}})

	// Find documents
	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list check records: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var records []model.CheckRecord
	if err := cursor.All(ctxTimeout, &records); err != nil {
		return nil, 0, fmt.Errorf("failed to decode check records: %w", err)
	}

	return records, total, nil
}
