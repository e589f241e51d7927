package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes creates all necessary indexes for the collections
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	slog.Info("Creating MongoDB indexes")

	// Monitoring Requests Indexes
	if err := createMonitoringRequestIndexes(ctx, db); err != nil {
		return err
	}

	// User and Session Indexes
	if err := createUserIndexes(ctx, db); err != nil {
		return err
	}
	if err := createSessionIndexes(ctx, db); err != nil {
		return err
	}

	// Check History Indexes
	if err := createCheckHistoryIndexes(ctx, db); err != nil {
		return err
	}

	// Notification Logs Indexes
	if err := createNotificationLogIndexes(ctx, db); err != nil {
		return err
	}

	// Check Locks Indexes
	if err := createCheckLockIndexes(ctx, db); err != nil {
		return err
	}

	slog.Info("Successfully created all MongoDB indexes")
	return nil
}

func createMonitoringRequestIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionMonitoringRequests)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_request_id_unique"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_status_created_at"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_id_created_at"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created monitoring_requests indexes")
	return nil
}

func createUserIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionUsers)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_email_unique"),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_username_unique"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created users indexes")
	return nil
}

func createSessionIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionSessions)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_token_unique"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created sessions indexes")
	return nil
}

func createCheckHistoryIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionCheckHistory)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "correlation_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_correlation_id_unique"),
		},
		{
			Keys: bson.D{
				{Key: "request_id", Value: 1},
				{Key: "checked_at", Value: -1},
			},
			Options: options.Index().SetName("idx_request_id_checked_at"),
		},
		{
			Keys:    bson.D{{Key: "checked_at", Value: -1}},
			Options: options.Index().SetName("idx_checked_at"),
		},
		{
			Keys: bson.D{
				{Key: "outcome", Value: 1},
				{Key: "checked_at", Value: -1},
			},
			Options: options.Index().SetName("idx_outcome_checked_at"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created check_history indexes")
	return nil
}

func createNotificationLogIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionNotificationLogs)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetName("idx_request_id"),
		},
		{
			Keys:    bson.D{{Key: "correlation_id", Value: 1}},
			Options: options.Index().SetName("idx_correlation_id"),
		},
		{
			Keys: bson.D{
				{Key: "final_status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_final_status_created_at"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created notification_logs indexes")
	return nil
}

func createCheckLockIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionCheckLocks)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_key_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
		{
			Keys:    bson.D{{Key: "locked_by", Value: 1}},
			Options: options.Index().SetName("idx_locked_by"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created check_locks indexes")
	return nil
}
