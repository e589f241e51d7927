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
)

// SessionRepository handles login session operations
type SessionRepository struct {
	collection *mongo.Collection
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *MongoDB) *SessionRepository {
	return &SessionRepository{
		collection: db.GetCollection(CollectionSessions),
	}
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ensure ID is generated if not set
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByToken retrieves an unexpired session by its token. The TTL index
// garbage collects expired documents eventually, so expiry is also checked
// here.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}

	var session model.Session
	err := r.collection.FindOne(ctxTimeout, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// Touch updates the last activity timestamp of a session
func (r *SessionRepository) Touch(ctx context.Context, token string, at time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_activity": at},
	}

	_, err := r.collection.UpdateOne(ctxTimeout, bson.M{"token": token}, update)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return nil
}

// Delete removes a session by token
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteOne(ctxTimeout, bson.M{"token": token})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

// DeleteForUser removes all sessions belonging to a user
func (r *SessionRepository) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.collection.DeleteMany(ctxTimeout, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	return nil
}
