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

// ErrDuplicate is returned when a unique index rejects an insert
var ErrDuplicate = errors.New("already exists")

// UserRepository handles user account operations
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *MongoDB) *UserRepository {
	return &UserRepository{
		collection: db.GetCollection(CollectionUsers),
	}
}

// Create inserts a new user account
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ensure ID is generated if not set
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, bson.M{"username": username})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, bson.M{"email": email})
}

// GetByID retrieves a user by object id
func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) getOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctxTimeout, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// RecordLogin updates the last login timestamp of a user
func (r *UserRepository) RecordLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_login": at},
	}

	_, err := r.collection.UpdateOne(ctxTimeout, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	return nil
}
